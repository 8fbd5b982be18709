// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment records a project handed to a team by a project manager.
// The tasks created for the assignment are listed in TaskIDs; tasks carry
// no back-reference, so they are only reachable through their assignment.
type Assignment struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProjectID  primitive.ObjectID   `bson:"project_id" json:"project_id"`
	TeamID     primitive.ObjectID   `bson:"team_id" json:"team_id"`
	AssignedBy primitive.ObjectID   `bson:"assigned_by" json:"assigned_by"`
	TaskIDs    []primitive.ObjectID `bson:"task_ids,omitempty" json:"task_ids,omitempty"`
	Deadline   *time.Time           `bson:"deadline,omitempty" json:"deadline,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
