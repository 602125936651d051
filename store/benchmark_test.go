package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tnicklin/timebudget/models"
)

func BenchmarkSaveReport(b *testing.B) {
	ctx := context.Background()
	st := NewSQLiteStore(Params{Path: ":memory:"})
	if err := st.Open(ctx); err != nil {
		b.Fatalf("open: %v", err)
	}
	defer st.Close()

	rep := sampleBenchReport("scope-bench", 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rep.ScopeID = fmt.Sprintf("scope-%d", i)
		if err := st.SaveReport(ctx, rep); err != nil {
			b.Fatalf("save: %v", err)
		}
	}
}

func BenchmarkListScopes(b *testing.B) {
	ctx := context.Background()
	st := NewSQLiteStore(Params{Path: ":memory:"})
	if err := st.Open(ctx); err != nil {
		b.Fatalf("open: %v", err)
	}
	defer st.Close()

	for i := 0; i < 100; i++ {
		rep := sampleBenchReport(fmt.Sprintf("scope-%d", i), 5)
		if err := st.SaveReport(ctx, rep); err != nil {
			b.Fatalf("save: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := st.ListScopes(ctx, 50); err != nil {
			b.Fatalf("list: %v", err)
		}
	}
}

func sampleBenchReport(scopeID string, calls int) models.Report {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rep := models.Report{
		ScopeID:     scopeID,
		TotalBudget: 3 * time.Second,
		Spent:       time.Second,
		StartedAt:   started,
	}
	for i := 0; i < calls; i++ {
		rep.Calls = append(rep.Calls, models.CallResult{
			ScopeID:         scopeID,
			Seq:             i,
			URL:             fmt.Sprintf("https://example.com/%d", i),
			Outcome:         models.OutcomeOK,
			StatusCode:      200,
			AssignedTimeout: 3 * time.Second,
			Elapsed:         100 * time.Millisecond,
			StartedAt:       started,
		})
	}
	return rep
}
