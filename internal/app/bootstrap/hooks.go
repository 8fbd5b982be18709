// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires ProjectHub into WAFFLE's lifecycle: config, Mongo connect,
// indexes, admin bootstrap, then the HTTP handler.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "projecthub",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
