package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"yad2watch/app/engine"
	"yad2watch/app/search"
)

type cycleCall struct {
	searchName string
	silent     bool
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []cycleCall
	err   error
}

func (r *fakeRunner) RunCycle(ctx context.Context, profile *search.Config, silent bool) (engine.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cycleCall{searchName: profile.Name, silent: silent})
	return engine.Stats{}, r.err
}

func (r *fakeRunner) getCalls() []cycleCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cycleCall(nil), r.calls...)
}

func newTestConfigCache(t *testing.T, profiles map[string]string) *search.ConfigCache {
	t.Helper()

	dir := t.TempDir()
	for name, content := range profiles {
		if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write profile: %v", err)
		}
	}

	cc := search.NewConfigCache(dir, 120)
	if err := cc.Run(); err != nil {
		t.Fatalf("Failed to load profiles: %v", err)
	}
	return cc
}

const enabledProfile = "city: \"5000\"\nsettings:\n  enabled: true\n"
const disabledProfile = "city: \"5000\"\nsettings:\n  enabled: false\n"

func TestScheduler_RunOnce_SilentOnFirstRun(t *testing.T) {
	cc := newTestConfigCache(t, map[string]string{
		"beta":  enabledProfile,
		"alpha": enabledProfile,
	})
	runner := &fakeRunner{}

	s := NewScheduler(cc, runner, true)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	calls := runner.getCalls()
	if len(calls) != 2 {
		t.Fatalf("Expected 2 cycles, got %d", len(calls))
	}
	if calls[0].searchName != "alpha" || calls[1].searchName != "beta" {
		t.Errorf("Expected alphabetical order, got %v", calls)
	}
	for _, call := range calls {
		if !call.silent {
			t.Errorf("Expected silent cycle for %s on first run", call.searchName)
		}
	}
}

func TestScheduler_RunOnce_NotSilentAfterFirstRun(t *testing.T) {
	cc := newTestConfigCache(t, map[string]string{"alpha": enabledProfile})
	runner := &fakeRunner{}

	s := NewScheduler(cc, runner, false)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	calls := runner.getCalls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(calls))
	}
	if calls[0].silent {
		t.Error("Expected non-silent cycle when a baseline already exists")
	}
}

func TestScheduler_RunOnce_SkipsDisabledSearches(t *testing.T) {
	cc := newTestConfigCache(t, map[string]string{
		"on":  enabledProfile,
		"off": disabledProfile,
	})
	runner := &fakeRunner{}

	s := NewScheduler(cc, runner, false)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	calls := runner.getCalls()
	if len(calls) != 1 || calls[0].searchName != "on" {
		t.Errorf("Expected only the enabled search to run, got %v", calls)
	}
}

func TestScheduler_RunOnce_PropagatesCycleError(t *testing.T) {
	cc := newTestConfigCache(t, map[string]string{"alpha": enabledProfile})
	runner := &fakeRunner{err: errors.New("cycle failed")}

	s := NewScheduler(cc, runner, false)
	if err := s.RunOnce(context.Background()); err == nil {
		t.Error("Expected cycle error to propagate")
	}
}

func TestScheduler_TriggerSearch_UnknownSearch(t *testing.T) {
	cc := newTestConfigCache(t, map[string]string{"alpha": enabledProfile})
	runner := &fakeRunner{}

	s := NewScheduler(cc, runner, false)
	if err := s.TriggerSearch("nope"); err == nil {
		t.Error("Expected error for unknown search")
	}
}

func TestScheduler_TriggerSearch_Enqueues(t *testing.T) {
	cc := newTestConfigCache(t, map[string]string{"alpha": enabledProfile})
	runner := &fakeRunner{}

	s := NewScheduler(cc, runner, false)
	if err := s.TriggerSearch("alpha"); err != nil {
		t.Fatalf("TriggerSearch failed: %v", err)
	}

	select {
	case task := <-s.taskQueue:
		if task.GetSearchName() != "alpha" {
			t.Errorf("Expected task for alpha, got %s", task.GetSearchName())
		}
		if task.GetType() != TaskTypeCheckSearch {
			t.Errorf("Expected check_search task, got %s", task.GetType())
		}
	default:
		t.Error("Expected a task in the queue")
	}
}

func TestTask_RetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeCheckSearch, "alpha")

	if !task.CanRetry() {
		t.Error("Expected fresh task to be retryable")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Expected task exhausted after max retries")
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", DefaultMaxRetries, task.GetRetryCount())
	}
}
