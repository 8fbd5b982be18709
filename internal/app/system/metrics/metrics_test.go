package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePhase_CountsMismatch(t *testing.T) {
	before := testutil.ToFloat64(mismatchTotal.WithLabelValues("tasks"))
	deletedBefore := testutil.ToFloat64(deletedTotal.WithLabelValues("tasks"))

	ObservePhase("tasks", 3, 3)
	ObservePhase("tasks", 3, 2)

	if got := testutil.ToFloat64(mismatchTotal.WithLabelValues("tasks")) - before; got != 1 {
		t.Errorf("mismatch delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(deletedTotal.WithLabelValues("tasks")) - deletedBefore; got != 5 {
		t.Errorf("deleted delta = %v, want 5", got)
	}
}

func TestHandler_ExposesBatchCounter(t *testing.T) {
	ObserveBatch(http.StatusMultiStatus, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `projecthub_cascade_batches_total{status="207"}`) {
		t.Error("expected batch counter in exposition output")
	}
}
