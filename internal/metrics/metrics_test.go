package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

func TestReturnSubmitted(t *testing.T) {
	m := New()
	m.ReturnSubmitted(model.ActionResell, 35)
	m.ReturnSubmitted(model.ActionResell, 10)
	m.ReturnSubmitted(model.ActionRRR, 0)

	if got := testutil.ToFloat64(m.returnsSubmitted.WithLabelValues("Resell")); got != 2 {
		t.Fatalf("expected 2 resell returns, got %v", got)
	}
	if got := testutil.ToFloat64(m.returnsSubmitted.WithLabelValues("Repair")); got != 0 {
		t.Fatalf("expected 0 repair returns, got %v", got)
	}
	if got := testutil.ToFloat64(m.creditAwarded); got != 45 {
		t.Fatalf("expected 45 credit, got %v", got)
	}
}

func TestFailuresAndMultiplier(t *testing.T) {
	m := New()
	m.SubmissionFailed("invalid_input")
	m.SubmissionFailed("invalid_input")
	m.SubmissionFailed("scoring")
	m.MultiplierChanged(0.75)

	if got := testutil.ToFloat64(m.submissionFailures.WithLabelValues("invalid_input")); got != 2 {
		t.Fatalf("expected 2 invalid input failures, got %v", got)
	}
	if got := testutil.ToFloat64(m.multiplier); got != 0.75 {
		t.Fatalf("expected multiplier gauge 0.75, got %v", got)
	}
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodPost, "/api/user/returns", http.StatusCreated, 20*time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/user/returns", "201")); got != 1 {
		t.Fatalf("expected one request, got %v", got)
	}
	if n := testutil.CollectAndCount(m.httpDuration); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ReturnSubmitted(model.ActionRepair, 12)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`returnearn_returns_submitted_total{action="Repair"} 1`,
		`returnearn_credit_awarded_total 12`,
		`go_goroutines`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ReturnSubmitted(model.ActionResell, 1)
	if got := testutil.ToFloat64(b.returnsSubmitted.WithLabelValues("Resell")); got != 0 {
		t.Fatalf("expected separate registries, got %v", got)
	}
	if a.Registry() == b.Registry() {
		t.Fatal("expected distinct registries")
	}
}
