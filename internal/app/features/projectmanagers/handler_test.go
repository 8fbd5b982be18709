package projectmanagers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/cascade"
	"github.com/dalemusser/projecthub/internal/app/features/projectmanagers"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.uber.org/zap"
)

type response struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Details *cascade.BatchResult `json:"details"`
}

type fixture struct {
	store  *testutil.MemStore
	fx     *testutil.Fixtures
	router http.Handler
	admin  testutil.TestUser
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ms := testutil.NewMemStore()
	fx := testutil.NewMemFixtures(t, ms)
	admin := fx.CreateAdmin(context.Background(), "Admin", "actor@x.com")

	wf := cascade.NewWorkflow(ms, ms, nil, 10, zap.NewNop())
	h := projectmanagers.NewHandler(wf, nil, zap.NewNop())
	return &fixture{store: ms, fx: fx, router: projectmanagers.Routes(h), admin: testutil.AsTestUser(admin)}
}

func (f *fixture) seedPM(t *testing.T, email string) models.User {
	t.Helper()
	ctx := context.Background()
	pm := f.fx.CreateProjectManager(ctx, "PM", email)
	p1 := f.fx.CreateProject(ctx, "One", pm.ID)
	f.fx.CreateProject(ctx, "Two", pm.ID)
	team := f.fx.CreateTeam(ctx, "Team", pm.ID)
	t1 := f.fx.CreateTask(ctx, "a")
	t2 := f.fx.CreateTask(ctx, "b")
	t3 := f.fx.CreateTask(ctx, "c")
	f.fx.CreateAssignment(ctx, pm.ID, p1.ID, team.ID, t1.ID, t2.ID, t3.ID)
	return pm
}

func (f *fixture) do(t *testing.T, method, target, body string, user *testutil.TestUser) (*testutil.ResponseRecorder, response) {
	t.Helper()
	req := testutil.NewJSONRequest(method, target, body)
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestBulkDelete_Success(t *testing.T) {
	f := newFixture(t)
	f.seedPM(t, "pm1@x.com")

	rec, resp := f.do(t, "DELETE", "/", `{"identifiers":["pm1@x.com"]}`, &f.admin)

	rec.AssertStatus(t, http.StatusOK)
	if !resp.Success {
		t.Error("success should be true on 200")
	}
	if resp.Details == nil {
		t.Fatal("missing details")
	}
	want := map[string]int64{"tasks": 3, "assignments": 1, "teams": 1, "projects": 2, "users": 1}
	for k, v := range want {
		if resp.Details.DeletedCountsByCategory[k] != v {
			t.Errorf("deleted %s = %d, want %d", k, resp.Details.DeletedCountsByCategory[k], v)
		}
	}
	if rec.Header().Get("X-Batch-ID") == "" || rec.Header().Get("X-Batch-ID") != resp.Details.BatchID {
		t.Errorf("X-Batch-ID = %q, batchId = %q", rec.Header().Get("X-Batch-ID"), resp.Details.BatchID)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestBulkDelete_MixedBatch(t *testing.T) {
	f := newFixture(t)
	f.seedPM(t, "pm1@x.com")

	rec, resp := f.do(t, "DELETE", "/",
		`{"identifiers":["pm1@x.com","PM1@x.com","bad-email","actor@x.com", 42]}`, &f.admin)

	rec.AssertStatus(t, http.StatusMultiStatus)
	if resp.Success {
		t.Error("success should be false on 207")
	}
	if len(resp.Details.ValidProcessed) != 1 || resp.Details.ValidProcessed[0] != "pm1@x.com" {
		t.Errorf("validProcessed = %v", resp.Details.ValidProcessed)
	}
	reasons := map[string]cascade.ReasonCode{}
	for _, r := range resp.Details.InvalidOrSkipped {
		reasons[r.Identifier] = r.Reason
	}
	want := map[string]cascade.ReasonCode{
		"bad-email":   cascade.ReasonInvalidFormat,
		"actor@x.com": cascade.ReasonIsSelf,
		"42":          cascade.ReasonInvalidFormat,
	}
	for id, reason := range want {
		if reasons[id] != reason {
			t.Errorf("%s: reason %q, want %q", id, reasons[id], reason)
		}
	}
	if len(reasons) != len(want) {
		t.Errorf("invalidOrSkipped = %v", resp.Details.InvalidOrSkipped)
	}
}

func TestBulkDelete_NotFound(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, "DELETE", "/", `{"identifiers":["ghost@x.com"]}`, &f.admin)

	rec.AssertStatus(t, http.StatusNotFound)
	if resp.Success || resp.Details == nil || len(resp.Details.InvalidOrSkipped) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestBulkDelete_LegacyEmailsKey(t *testing.T) {
	f := newFixture(t)
	f.seedPM(t, "pm1@x.com")

	rec, _ := f.do(t, "POST", "/delete", `{"emails":["pm1@x.com"]}`, &f.admin)

	rec.AssertStatus(t, http.StatusOK)
	if f.store.CountWhere("users", "email", "pm1@x.com") != 0 {
		t.Error("pm1 should be deleted")
	}
}

func TestBulkDelete_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{"identifiers":[`, "Bad Request: Invalid JSON payload."},
		{"missing", `{}`, "Bad Request: 'identifiers' array is required and cannot be empty."},
		{"null", `{"identifiers":null}`, "Bad Request: 'identifiers' array is required and cannot be empty."},
		{"empty", `{"identifiers":[]}`, "Bad Request: 'identifiers' array is required and cannot be empty."},
		{"not array", `{"identifiers":"pm1@x.com"}`, "Bad Request: 'identifiers' array is required and cannot be empty."},
		{"no survivors", `{"identifiers":["nope","actor@x.com"]}`, "No valid Project Manager identifiers provided for deletion."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec, resp := f.do(t, "DELETE", "/", tt.body, &f.admin)
			rec.AssertStatus(t, http.StatusBadRequest)
			if resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}
			if resp.Success {
				t.Error("success should be false")
			}
		})
	}
}

func TestBulkDelete_TooManyIdentifiers(t *testing.T) {
	f := newFixture(t)
	body := `{"identifiers":["a@x.com","b@x.com","c@x.com","d@x.com","e@x.com","f@x.com","g@x.com","h@x.com","i@x.com","j@x.com","k@x.com"]}`

	rec, _ := f.do(t, "DELETE", "/", body, &f.admin)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestBulkDelete_AuthChecksBeforeStore(t *testing.T) {
	f := newFixture(t)
	f.seedPM(t, "pm1@x.com")
	f.store.ResetCalls()

	rec, resp := f.do(t, "DELETE", "/", `{"identifiers":["pm1@x.com"]}`, nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
	if resp.Details != nil {
		t.Error("401 should not carry details")
	}

	pm := testutil.ProjectManagerUser()
	rec, _ = f.do(t, "DELETE", "/", `{"identifiers":["pm1@x.com"]}`, &pm)
	rec.AssertStatus(t, http.StatusForbidden)

	if calls := f.store.Calls(); len(calls) != 0 {
		t.Errorf("store was touched before authorization: %v", calls)
	}
}

func TestBulkDelete_AdminSessionWithoutRecord(t *testing.T) {
	f := newFixture(t)
	f.seedPM(t, "pm1@x.com")
	ghost := testutil.AdminUser()

	rec, resp := f.do(t, "DELETE", "/", `{"identifiers":["pm1@x.com"]}`, &ghost)

	rec.AssertStatus(t, http.StatusInternalServerError)
	if resp.Success {
		t.Error("success should be false")
	}
	if f.store.Count("projects") != 2 {
		t.Error("nothing should be deleted")
	}
}

func TestBulkDelete_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.seedPM(t, "pm1@x.com")
	f.store.FailDelete["projects"] = errors.New("disk full")

	rec, resp := f.do(t, "DELETE", "/", `{"identifiers":["pm1@x.com"]}`, &f.admin)

	rec.AssertStatus(t, http.StatusInternalServerError)
	if resp.Details == nil || !resp.Details.PartiallyApplied {
		t.Fatalf("details = %+v, want partiallyApplied", resp.Details)
	}
	if resp.Details.DeletedCountsByCategory["tasks"] != 3 {
		t.Errorf("partial counts = %v", resp.Details.DeletedCountsByCategory)
	}
	if len(resp.Details.ValidProcessed) != 0 {
		t.Errorf("validProcessed = %v", resp.Details.ValidProcessed)
	}
}

func TestBulkDelete_RateLimited(t *testing.T) {
	ms := testutil.NewMemStore()
	fx := testutil.NewMemFixtures(t, ms)
	admin := testutil.AsTestUser(fx.CreateAdmin(context.Background(), "Admin", "actor@x.com"))

	wf := cascade.NewWorkflow(ms, ms, nil, 10, zap.NewNop())
	h := projectmanagers.NewHandler(wf, nil, zap.NewNop())
	h.Limiter = ratelimit.New(1, time.Minute)
	f := &fixture{store: ms, fx: fx, router: projectmanagers.Routes(h), admin: admin}

	rec, _ := f.do(t, "DELETE", "/", `{"identifiers":["nobody@x.com"]}`, &f.admin)
	rec.AssertStatus(t, http.StatusNotFound)

	f.store.ResetCalls()
	rec, resp := f.do(t, "DELETE", "/", `{"identifiers":["nobody@x.com"]}`, &f.admin)
	rec.AssertStatus(t, http.StatusTooManyRequests)
	if resp.Success {
		t.Error("success should be false")
	}
	if calls := f.store.Calls(); len(calls) != 0 {
		t.Errorf("rate-limited request reached the store: %v", calls)
	}

	// Anonymous requests are not counted and still get 401.
	rec, _ = f.do(t, "DELETE", "/", `{"identifiers":["nobody@x.com"]}`, nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
}
