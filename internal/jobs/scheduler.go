// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jobs runs the periodic maintenance tasks of the category service:
// pruning expired cache entries and reporting audio records whose legacy
// subject disagrees with their category fields.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"medaudio/internal/cache"
	"medaudio/internal/compat"
	"medaudio/internal/models"
)

// Job names.
const (
	CacheCleanupJob = "cache-cleanup"
	CompatReportJob = "compat-report"
)

// CacheMaintainer is the cache manager as seen by the cleanup job.
type CacheMaintainer interface {
	CleanupExpired() int
	Health() cache.Health
}

// AudioLister pages through audio records.
type AudioLister interface {
	List(ctx context.Context, limit, offset int) ([]models.Audio, error)
}

// CategorySource loads the full category set.
type CategorySource interface {
	All(ctx context.Context) ([]models.Category, error)
}

// InconsistencyRecorder receives the latest inconsistent-record count.
type InconsistencyRecorder interface {
	SetInconsistent(n int)
}

// Config sets the job intervals. A non-positive interval disables a job.
type Config struct {
	CacheCleanup     time.Duration
	CompatReport     time.Duration
	CompatReportSize int
}

// Deps are the services the jobs operate on. Audios and Categories may be
// nil, which disables the compatibility report.
type Deps struct {
	Cache      CacheMaintainer
	Audios     AudioLister
	Categories CategorySource
	Recorder   InconsistencyRecorder
	Compat     []compat.Option
}

// Scheduler owns the gocron scheduler and the registered jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	cfg       Config
	deps      Deps

	mu   sync.RWMutex
	jobs map[string]gocron.Job
}

// New creates a Scheduler and registers the enabled jobs. Call Start to
// begin running them.
func New(cfg Config, deps Deps) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if cfg.CompatReportSize <= 0 {
		cfg.CompatReportSize = 500
	}

	js := &Scheduler{scheduler: s, cfg: cfg, deps: deps, jobs: make(map[string]gocron.Job)}
	if err := js.registerJobs(); err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	return js, nil
}

func (s *Scheduler) registerJobs() error {
	if s.cfg.CacheCleanup > 0 && s.deps.Cache != nil {
		if err := s.add(CacheCleanupJob, s.cfg.CacheCleanup, func() { s.CleanupCache() }); err != nil {
			return err
		}
	}
	if s.cfg.CompatReport > 0 && s.deps.Audios != nil && s.deps.Categories != nil {
		report := func(ctx context.Context) {
			if _, err := s.CompatReport(ctx); err != nil {
				slog.Error("compat report failed", "error", err)
			}
		}
		if err := s.add(CompatReportJob, s.cfg.CompatReport, report); err != nil {
			return err
		}
	}
	slog.Info("background jobs registered", "jobs", s.Jobs())
	return nil
}

func (s *Scheduler) add(name string, every time.Duration, task any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	s.jobs[name] = job
	return nil
}

// Start starts the scheduler. Jobs first run after one interval.
func (s *Scheduler) Start() {
	slog.Info("starting background job scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop() error {
	slog.Info("stopping background job scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

// Jobs returns the names of the registered jobs in sorted order.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CleanupCache prunes expired cache entries and logs the cache health. It
// returns the number of entries removed.
func (s *Scheduler) CleanupCache() int {
	removed := s.deps.Cache.CleanupExpired()
	h := s.deps.Cache.Health()
	if h.IsHealthy {
		slog.Info("cache cleanup", "removed", removed)
	} else {
		slog.Warn("cache cleanup", "removed", removed, "issues", h.Issues)
	}
	return removed
}

// CompatReport checks the newest audio records against the current
// taxonomy and records how many are inconsistent.
func (s *Scheduler) CompatReport(ctx context.Context) (compat.Report, error) {
	cats, err := s.deps.Categories.All(ctx)
	if err != nil {
		return compat.Report{}, fmt.Errorf("load categories: %w", err)
	}
	audios, err := s.deps.Audios.List(ctx, s.cfg.CompatReportSize, 0)
	if err != nil {
		return compat.Report{}, fmt.Errorf("list audios: %w", err)
	}

	report := compat.NewAdapter(cats, s.deps.Compat...).Report(audios)
	if s.deps.Recorder != nil {
		s.deps.Recorder.SetInconsistent(report.Inconsistent)
	}
	slog.Info("compat report",
		"total", report.Total,
		"with_new_fields", report.WithNewFields,
		"legacy_only", report.WithLegacyOnly,
		"uncategorized", report.Uncategorized,
		"inconsistent", report.Inconsistent,
	)
	return report, nil
}
