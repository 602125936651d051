package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tnicklin/timebudget/models"
)

func openTestStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	st := NewSQLiteStore(Params{Path: path})
	if err := st.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleReport(scopeID string) models.Report {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Report{
		ScopeID:     scopeID,
		TotalBudget: 3 * time.Second,
		Spent:       2500 * time.Millisecond,
		StartedAt:   started,
		Calls: []models.CallResult{
			{
				ScopeID:         scopeID,
				Seq:             0,
				URL:             "https://example.com/a",
				Outcome:         models.OutcomeOK,
				StatusCode:      200,
				AssignedTimeout: 3 * time.Second,
				Elapsed:         time.Second,
				StartedAt:       started,
			},
			{
				ScopeID:         scopeID,
				Seq:             1,
				URL:             "https://example.com/b",
				Outcome:         models.OutcomeTransportError,
				AssignedTimeout: 2 * time.Second,
				Elapsed:         1500 * time.Millisecond,
				Err:             "context deadline exceeded",
				StartedAt:       started.Add(time.Second),
			},
			{
				ScopeID: scopeID,
				Seq:     2,
				URL:     "https://example.com/c",
				Outcome: models.OutcomeBudgetExhausted,
			},
		},
	}
}

func TestSaveAndGetReport(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, ":memory:")

	rep := sampleReport("scope-1")
	if err := st.SaveReport(ctx, rep); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := st.GetReport(ctx, "scope-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalBudget != 3*time.Second {
		t.Fatalf("TotalBudget = %v, want 3s", got.TotalBudget)
	}
	if len(got.Calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(got.Calls))
	}
	if got.Calls[1].Outcome != models.OutcomeTransportError {
		t.Fatalf("call 1 outcome = %q, want transport_error", got.Calls[1].Outcome)
	}
	if got.Calls[1].Err != "context deadline exceeded" {
		t.Fatalf("call 1 error = %q", got.Calls[1].Err)
	}
	if got.Calls[2].Realized() {
		t.Fatal("refused call reported as realized after round trip")
	}
	if !got.StartedAt.Equal(rep.StartedAt) {
		t.Fatalf("StartedAt = %v, want %v", got.StartedAt, rep.StartedAt)
	}
}

func TestSaveReportIsIdempotentPerScope(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, ":memory:")

	rep := sampleReport("scope-1")
	if err := st.SaveReport(ctx, rep); err != nil {
		t.Fatalf("save: %v", err)
	}

	rep.Calls = rep.Calls[:2]
	if err := st.SaveReport(ctx, rep); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	calls, err := st.ListCallsByScope(ctx, "scope-1")
	if err != nil {
		t.Fatalf("list calls: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("calls after re-save = %d, want 2 (old rows replaced)", len(calls))
	}
}

func TestListScopes(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, ":memory:")

	for i, id := range []string{"scope-a", "scope-b", "scope-c"} {
		rep := sampleReport(id)
		rep.StartedAt = rep.StartedAt.Add(time.Duration(i) * time.Hour)
		if err := st.SaveReport(ctx, rep); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	scopes, err := st.ListScopes(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scopes) != 2 {
		t.Fatalf("scopes = %d, want limit of 2", len(scopes))
	}
	if scopes[0].ScopeID != "scope-c" {
		t.Fatalf("first scope = %s, want newest scope-c", scopes[0].ScopeID)
	}
	if scopes[0].CallCount != 3 || scopes[0].Completed != 1 {
		t.Fatalf("summary = %+v, want 3 calls / 1 completed", scopes[0])
	}
}

func TestFileBackedStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "audit.db")

	st := NewSQLiteStore(Params{Path: path})
	if err := st.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.SaveReport(ctx, sampleReport("scope-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	got, err := reopened.GetReport(ctx, "scope-1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if len(got.Calls) != 3 {
		t.Fatalf("calls after reopen = %d, want 3", len(got.Calls))
	}
}

func TestDurationsRoundTripLosslessly(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, ":memory:")

	// Sub-millisecond values appear whenever a budget is nearly spent
	// when a call starts; they must survive persistence exactly.
	rep := sampleReport("scope-sub-ms")
	rep.Spent = 2*time.Second + 123*time.Microsecond
	rep.Calls = rep.Calls[:1]
	rep.Calls[0].AssignedTimeout = 750 * time.Microsecond
	rep.Calls[0].Elapsed = 499 * time.Nanosecond

	if err := st.SaveReport(ctx, rep); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := st.GetReport(ctx, "scope-sub-ms")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Spent != rep.Spent {
		t.Fatalf("Spent = %v, want %v", got.Spent, rep.Spent)
	}
	if got.Calls[0].AssignedTimeout != 750*time.Microsecond {
		t.Fatalf("AssignedTimeout = %v, want 750µs", got.Calls[0].AssignedTimeout)
	}
	if got.Calls[0].Elapsed != 499*time.Nanosecond {
		t.Fatalf("Elapsed = %v, want 499ns", got.Calls[0].Elapsed)
	}
}

func TestGetReportUnknownScope(t *testing.T) {
	st := openTestStore(t, ":memory:")
	if _, err := st.GetReport(context.Background(), "nope"); err == nil {
		t.Fatal("expected an error for an unknown scope")
	}
}
