package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(mode string, outcome domain.Outcome) domain.RunResult {
	started := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return domain.RunResult{
		Identity: domain.RunIdentity{
			Mode:      mode,
			Branch:    "auto-" + mode + "/20260823-120000-abcd",
			StartedAt: started,
		},
		Outcome:    outcome,
		Iterations: 2,
		PRURL:      "https://github.com/acme/widgets/pull/1",
		FinishedAt: started.Add(30 * time.Minute),
	}
}

func TestSaveResultAndListRecent(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveResult(sampleResult("fix_bugs", domain.OutcomeMerged)); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	records, err := s.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.Mode != "fix_bugs" {
		t.Errorf("mode = %q", r.Mode)
	}
	if r.Outcome != string(domain.OutcomeMerged) {
		t.Errorf("outcome = %q", r.Outcome)
	}
	if r.Iterations != 2 {
		t.Errorf("iterations = %d", r.Iterations)
	}
	if r.PRURL != "https://github.com/acme/widgets/pull/1" {
		t.Errorf("pr url = %q", r.PRURL)
	}
	if r.ID == "" {
		t.Error("record has no id")
	}
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)

	older := sampleResult("fix_bugs", domain.OutcomeMerged)
	newer := sampleResult("cleanup", domain.OutcomeExhausted)
	newer.Identity.StartedAt = older.Identity.StartedAt.Add(time.Hour)

	if err := s.SaveResult(older); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(newer); err != nil {
		t.Fatal(err)
	}

	records, err := s.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Mode != "cleanup" {
		t.Errorf("first record mode = %q, want the newer run", records[0].Mode)
	}
}

func TestListRecentLimit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		res := sampleResult("fix_bugs", domain.OutcomeNoChanges)
		res.Identity.StartedAt = res.Identity.StartedAt.Add(time.Duration(i) * time.Minute)
		if err := s.SaveResult(res); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.ListRecent(3)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestSaveCycle(t *testing.T) {
	s := newTestStore(t)

	report := domain.CycleReport{
		StartedAt:  time.Now(),
		FinishedAt: time.Now().Add(time.Hour),
		Results: []domain.RunResult{
			sampleResult("fix_bugs", domain.OutcomeMerged),
			sampleResult("cleanup", domain.OutcomeFailed),
			sampleResult("security", domain.OutcomeNoChanges),
		},
	}
	if err := s.SaveCycle(report); err != nil {
		t.Fatalf("SaveCycle() error = %v", err)
	}

	var total, merged, failed int
	err := s.db.QueryRow("SELECT runs_total, runs_merged, runs_failed FROM cycles").Scan(&total, &merged, &failed)
	if err != nil {
		t.Fatalf("querying cycles: %v", err)
	}
	if total != 3 || merged != 1 || failed != 1 {
		t.Errorf("cycle counters = %d/%d/%d, want 3/1/1", total, merged, failed)
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Close()
}
