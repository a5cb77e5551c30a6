package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"yad2watch/app/search"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const tickInterval = 30 * time.Second

// Scheduler runs search checks on their configured refresh intervals. A
// single worker drains the queue, so cycles never overlap and the seen store
// is reconciled strictly sequentially.
type Scheduler struct {
	configCache *search.ConfigCache
	runner      CycleRunner
	firstRun    bool
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	lastRunMu   sync.Mutex
	lastRun     map[string]time.Time
}

func NewScheduler(configCache *search.ConfigCache, runner CycleRunner, firstRun bool) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache: configCache,
		runner:      runner,
		firstRun:    firstRun,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
		lastRun:     make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// TriggerSearch enqueues an immediate check for one search, bypassing its
// refresh interval. Used by the API.
func (s *Scheduler) TriggerSearch(searchName string) error {
	config, err := s.configCache.GetConfig(searchName)
	if err != nil {
		return err
	}

	task := NewCheckSearchTask(searchName, config, s.runner, false)
	if err := s.EnqueueTask(task); err != nil {
		return err
	}

	s.recordRun(searchName)
	return nil
}

// RunOnce executes every enabled search once, synchronously, and returns.
// Suits cron-style invocation. The pass is silent on the very first run so
// the baseline does not flood the chat.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	configs := sortedEnabledConfigs(s.configCache.GetEnabledConfigs())
	if len(configs) == 0 {
		slog.Warn("No enabled search profiles found")
		return nil
	}

	for _, config := range configs {
		task := NewCheckSearchTask(config.Name, config, s.runner, s.firstRun)
		task.Start()
		if err := task.Execute(ctx); err != nil {
			return fmt.Errorf("search %s failed: %w", config.Name, err)
		}
	}

	return nil
}

// enqueueStartupTasks checks every enabled search right away instead of
// waiting for the first tick. On a first run the checks are silent, building
// the baseline.
func (s *Scheduler) enqueueStartupTasks() {
	configs := sortedEnabledConfigs(s.configCache.GetEnabledConfigs())
	if len(configs) == 0 {
		slog.Warn("No enabled search profiles found")
		return
	}

	slog.Debug("Scheduling startup checks", "count", len(configs), "silent", s.firstRun)

	for _, config := range configs {
		task := NewCheckSearchTask(config.Name, config, s.runner, s.firstRun)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue CheckSearchTask", "search", config.Name, "error", err)
			continue
		}
		s.recordRun(config.Name)
	}
}

func (s *Scheduler) enqueueDueTasks() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled search profiles found")
		return
	}

	now := time.Now()
	for _, config := range configs {
		if !s.isDue(config, now) {
			continue
		}

		task := NewCheckSearchTask(config.Name, config, s.runner, false)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue CheckSearchTask", "search", config.Name, "error", err)
			continue
		}
		s.recordRun(config.Name)
	}
}

func (s *Scheduler) isDue(config *search.Config, now time.Time) bool {
	s.lastRunMu.Lock()
	defer s.lastRunMu.Unlock()

	last, ok := s.lastRun[config.Name]
	if !ok {
		return true
	}
	return now.Sub(last) >= config.Settings.GetRefreshInterval()
}

// recordRun marks the search as checked at enqueue time, not at completion,
// so a slow cycle does not pile up duplicate tasks behind itself.
func (s *Scheduler) recordRun(searchName string) {
	s.lastRunMu.Lock()
	defer s.lastRunMu.Unlock()
	s.lastRun[searchName] = time.Now()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "search", task.GetSearchName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}

func sortedEnabledConfigs(configs map[string]*search.Config) []*search.Config {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	sorted := make([]*search.Config, 0, len(names))
	for _, name := range names {
		sorted = append(sorted, configs[name])
	}
	return sorted
}
