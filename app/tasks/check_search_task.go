package tasks

import (
	"context"
	"log/slog"

	"yad2watch/app/engine"
	"yad2watch/app/search"
)

type CycleRunner interface {
	RunCycle(ctx context.Context, profile *search.Config, silent bool) (engine.Stats, error)
}

type CheckSearchTask struct {
	Task
	SearchConfig *search.Config
	runner       CycleRunner
	silent       bool
}

func NewCheckSearchTask(searchName string, searchConfig *search.Config, runner CycleRunner, silent bool) *CheckSearchTask {
	return &CheckSearchTask{
		Task:         NewTask(TaskTypeCheckSearch, searchName),
		SearchConfig: searchConfig,
		runner:       runner,
		silent:       silent,
	}
}

func (t *CheckSearchTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SearchConfig.Settings.Enabled {
		slog.Debug("Search disabled, skipping", "search", t.SearchName)
		return nil
	}

	stats, err := t.runner.RunCycle(ctx, t.SearchConfig, t.silent)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "CheckSearch",
		"search", t.SearchName,
		"duration", t.GetDuration(),
		"fetched", stats.Fetched,
		"new", stats.New,
		"price_changed", stats.PriceChanged,
		"reposts", stats.Reposts,
		"unchanged", stats.Unchanged,
		"skipped", stats.Skipped)

	return nil
}
