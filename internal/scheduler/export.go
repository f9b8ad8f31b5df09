// Package scheduler runs periodic journal exports and audit retention sweeps.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/tasks"
)

// CleanupSchedule runs the audit retention sweep daily at 04:30.
const CleanupSchedule = "30 4 * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ErrNoExportDir is returned when an export is due but no directory is configured.
var ErrNoExportDir = errors.New("export directory not configured")

// TaskEnqueuer hands work to the background queue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Options wires the scheduler. Queue may be nil, in which case jobs run inline.
type Options struct {
	Exporter           tasks.JournalExporter
	Events             tasks.ExportEventLogger
	Cleaner            tasks.AuditEventCleaner
	Queue              TaskEnqueuer
	Export             config.Export
	AuditRetentionDays int
}

// ExportScheduler manages periodic exports of the journal to dated markdown files.
type ExportScheduler struct {
	opts Options
	now  func() time.Time

	cron      *cron.Cron
	exportID  cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewExportScheduler creates a new scheduler instance.
func NewExportScheduler(opts Options) *ExportScheduler {
	return &ExportScheduler{
		opts: opts,
		now:  time.Now,
		cron: cron.New(cron.WithParser(cronParser)),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Start registers the jobs and starts the cron loop. The scheduler stops when ctx is done.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	jobs := 0
	if s.opts.Export.ScheduleEnabled {
		if s.opts.Export.Dir == "" {
			log.Printf("Export scheduler: export directory not configured, skipping exports")
		} else {
			if err := ValidateSchedule(s.opts.Export.Schedule); err != nil {
				return fmt.Errorf("invalid cron schedule '%s': %w", s.opts.Export.Schedule, err)
			}
			id, err := s.cron.AddFunc(s.opts.Export.Schedule, func() {
				if err := s.RunNow(context.Background()); err != nil {
					log.Printf("Export scheduler: %v", err)
				}
			})
			if err != nil {
				return fmt.Errorf("failed to schedule export job: %w", err)
			}
			s.exportID = id
			jobs++
		}
	}

	if s.opts.Queue != nil || s.opts.Cleaner != nil {
		if _, err := s.cron.AddFunc(CleanupSchedule, func() {
			if err := s.RunCleanup(context.Background()); err != nil {
				log.Printf("Export scheduler: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule cleanup job: %w", err)
		}
		jobs++
	}

	if jobs == 0 {
		log.Printf("Export scheduler: disabled")
		return nil
	}

	s.cron.Start()
	s.isRunning = true

	if next := s.nextExportLocked(); next != nil {
		log.Printf("Export scheduler: started with schedule '%s'. Next export: %v", s.opts.Export.Schedule, *next)
	} else {
		log.Printf("Export scheduler: started")
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for running jobs to finish and stops the scheduler.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	log.Printf("Export scheduler: stopped")
}

// RunNow exports immediately, through the queue when one is configured.
func (s *ExportScheduler) RunNow(ctx context.Context) error {
	if s.opts.Export.Dir == "" {
		return ErrNoExportDir
	}
	path := tasks.DatedExportPath(s.opts.Export.Dir, s.now())

	if s.opts.Queue != nil {
		id, err := s.opts.Queue.Enqueue(ctx, tasks.ExportJournalTask{Path: path})
		if err != nil {
			return fmt.Errorf("failed to enqueue export: %w", err)
		}
		log.Printf("Export scheduler: queued export %s to %s", id, path)
		return nil
	}

	if s.opts.Exporter == nil {
		return errors.New("journal exporter not configured")
	}
	result, err := s.opts.Exporter.ExportAll(path)
	if s.opts.Events != nil {
		s.opts.Events.LogExport(0, path, result.EntriesProcessed, err)
	}
	if err != nil {
		return fmt.Errorf("scheduled export failed: %w", err)
	}
	log.Printf("Export scheduler: exported %d entries to %s", result.EntriesProcessed, path)
	return nil
}

// RunCleanup removes expired audit events, through the queue when one is configured.
func (s *ExportScheduler) RunCleanup(ctx context.Context) error {
	task := tasks.CleanupAuditEventsTask{RetentionDays: s.opts.AuditRetentionDays}

	if s.opts.Queue != nil {
		if _, err := s.opts.Queue.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("failed to enqueue audit cleanup: %w", err)
		}
		return nil
	}
	return tasks.CleanupAuditEventsProcessor(s.opts.Cleaner)(ctx, task)
}

// IsRunning returns whether the scheduler is active.
func (s *ExportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next export will occur, or nil when exports are not scheduled.
func (s *ExportScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	return s.nextExportLocked()
}

func (s *ExportScheduler) nextExportLocked() *time.Time {
	if s.exportID == 0 {
		return nil
	}
	entry := s.cron.Entry(s.exportID)
	if !entry.Valid() || entry.Next.IsZero() {
		return nil
	}
	next := entry.Next
	return &next
}
