package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// jobEntry tracks a registered job and its run state
type jobEntry struct {
	name      string
	schedule  string
	handler   func() error
	cronID    cron.EntryID
	isRunning bool
	lastRun   *time.Time
	lastError string
}

// Service schedules background maintenance work with cron expressions.
// Schedules use the six-field form with a leading seconds field.
type Service struct {
	cron    *cron.Cron
	jobs    map[string]*jobEntry
	jobMu   sync.RWMutex
	running bool
	mu      sync.Mutex
	logger  arbor.ILogger
}

// NewService creates a scheduler service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(cron.WithSeconds()),
		jobs:   make(map[string]*jobEntry),
		logger: logger,
	}
}

// Start begins executing registered jobs on their schedules
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	s.jobMu.RLock()
	jobCount := len(s.jobs)
	s.jobMu.RUnlock()

	s.logger.Info().Int("jobs", jobCount).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is active
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RegisterJob registers a handler to run on the given cron schedule
func (s *Service) RegisterJob(name string, schedule string, handler func() error) error {
	if name == "" || handler == nil {
		return fmt.Errorf("job requires a name and a handler")
	}
	if err := common.ValidateReindexSchedule(schedule); err != nil {
		return fmt.Errorf("job %s has an invalid schedule: %w", name, err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}

	entry := &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.executeJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job", name).
		Str("schedule", schedule).
		Msg("Registered scheduled job")

	return nil
}

// TriggerNow runs a registered job immediately, off the scheduler thread
func (s *Service) TriggerNow(name string) error {
	s.jobMu.RLock()
	_, exists := s.jobs[name]
	s.jobMu.RUnlock()

	if !exists {
		return fmt.Errorf("job not found: %s", name)
	}

	common.SafeGo(s.logger, "job-"+name, func() {
		s.executeJob(name)
	})
	return nil
}

// GetJobStatus returns the status of a specific job
func (s *Service) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	s.jobMu.RLock()
	defer s.jobMu.RUnlock()

	entry, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", name)
	}
	return s.statusLocked(entry), nil
}

// GetAllJobStatuses returns the status of every registered job
func (s *Service) GetAllJobStatuses() map[string]*interfaces.JobStatus {
	s.jobMu.RLock()
	defer s.jobMu.RUnlock()

	statuses := make(map[string]*interfaces.JobStatus, len(s.jobs))
	for name, entry := range s.jobs {
		statuses[name] = s.statusLocked(entry)
	}
	return statuses
}

func (s *Service) statusLocked(entry *jobEntry) *interfaces.JobStatus {
	status := &interfaces.JobStatus{
		Name:      entry.name,
		Enabled:   true,
		Schedule:  entry.schedule,
		LastRun:   entry.lastRun,
		IsRunning: entry.isRunning,
		LastError: entry.lastError,
	}
	cronEntry := s.cron.Entry(entry.cronID)
	if !cronEntry.Next.IsZero() {
		next := cronEntry.Next
		status.NextRun = &next
	}
	return status
}

// executeJob runs a job, guarding against overlapping runs of the same job
func (s *Service) executeJob(name string) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		return
	}
	if entry.isRunning {
		s.jobMu.Unlock()
		s.logger.Warn().Str("job", name).Msg("Skipping job run, previous run still in progress")
		return
	}
	entry.isRunning = true
	handler := entry.handler
	s.jobMu.Unlock()

	start := time.Now()
	s.logger.Info().Str("job", name).Msg("Running scheduled job")

	err := handler()

	s.jobMu.Lock()
	entry.isRunning = false
	now := time.Now()
	entry.lastRun = &now
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).
			Str("job", name).
			Dur("duration", time.Since(start)).
			Msg("Scheduled job failed")
		return
	}

	s.logger.Info().
		Str("job", name).
		Dur("duration", time.Since(start)).
		Msg("Scheduled job completed")
}
