package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx(t *testing.T) {
	validID := primitive.NewObjectID()

	tests := []struct {
		name     string
		user     *auth.SessionUser
		wantRole string
		wantOK   bool
	}{
		{name: "no user", user: nil, wantRole: "visitor", wantOK: false},
		{name: "malformed id", user: &auth.SessionUser{ID: "nope", Role: "admin"}, wantRole: "visitor", wantOK: false},
		{name: "admin", user: &auth.SessionUser{ID: validID.Hex(), Role: "admin"}, wantRole: "admin", wantOK: true},
		{name: "role is lowercased", user: &auth.SessionUser{ID: validID.Hex(), Role: " Project_Manager "}, wantRole: "project_manager", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			role, _, id, ok := authz.UserCtx(req)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if role != tt.wantRole {
				t.Errorf("role = %q, want %q", role, tt.wantRole)
			}
			if ok && id != validID {
				t.Errorf("id = %v, want %v", id, validID)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	admin := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: id, Role: "Admin"})
	if !authz.IsAdmin(admin) {
		t.Error("expected IsAdmin true for admin")
	}

	pm := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: id, Role: "project_manager"})
	if authz.IsAdmin(pm) {
		t.Error("expected IsAdmin false for project manager")
	}

	if authz.IsAdmin(httptest.NewRequest("GET", "/", nil)) {
		t.Error("expected IsAdmin false when signed out")
	}
}
