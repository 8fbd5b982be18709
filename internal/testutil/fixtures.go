package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// inserter is what fixtures write through: a MemStore or a Mongo database.
type inserter interface {
	InsertOne(ctx context.Context, collection string, doc any) error
}

type mongoInserter struct{ db *mongo.Database }

func (m mongoInserter) InsertOne(ctx context.Context, collection string, doc any) error {
	_, err := m.db.Collection(collection).InsertOne(ctx, doc)
	return err
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	ins inserter
	db  *mongo.Database
	t   *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{ins: mongoInserter{db: db}, db: db, t: t}
}

// NewMemFixtures creates fixtures backed by an in-memory store.
func NewMemFixtures(t *testing.T, m *MemStore) *Fixtures {
	t.Helper()
	return &Fixtures{ins: m, t: t}
}

// DB returns the underlying database for direct access in tests.
// It is nil for in-memory fixtures.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, collection string, doc any) {
	f.t.Helper()
	if err := f.ins.InsertOne(ctx, collection, doc); err != nil {
		f.t.Fatalf("failed to create test %s: %v", collection, err)
	}
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", user)
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin)
}

// CreateProjectManager creates a test project manager.
func (f *Fixtures) CreateProjectManager(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleProjectManager)
}

// CreateMember creates a test team member.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleMember)
}

// CreateProject creates a project owned by createdBy.
func (f *Fixtures) CreateProject(ctx context.Context, name string, createdBy primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    "active",
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "projects", p)
	return p
}

// CreateTeam creates a team owned by createdBy.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, createdBy primitive.ObjectID, members ...primitive.ObjectID) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		MemberIDs: members,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "teams", team)
	return team
}

// CreateTask creates a standalone task. Link it through CreateAssignment.
func (f *Fixtures) CreateTask(ctx context.Context, title string) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "tasks", task)
	return task
}

// CreateAssignment creates an assignment by assignedBy listing tasks.
func (f *Fixtures) CreateAssignment(ctx context.Context, assignedBy, projectID, teamID primitive.ObjectID, tasks ...primitive.ObjectID) models.Assignment {
	f.t.Helper()

	a := models.Assignment{
		ID:         primitive.NewObjectID(),
		ProjectID:  projectID,
		TeamID:     teamID,
		AssignedBy: assignedBy,
		TaskIDs:    tasks,
		CreatedAt:  time.Now().UTC(),
	}
	f.insert(ctx, "assignments", a)
	return a
}
