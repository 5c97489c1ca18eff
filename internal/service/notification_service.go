package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/pkg/jobs"
)

const (
	defaultLogCap    = 20
	reminderJobType  = "task_reminder"
	reminderQueueKey = "reminders"
)

// Reminder is a platform notification for a task due today.
type Reminder struct {
	TaskID int64     `json:"taskId"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
}

// Notifier delivers reminders to the user.
type Notifier interface {
	Notify(ctx context.Context, reminder Reminder) error
}

// NotificationRecorder counts reminder outcomes.
type NotificationRecorder interface {
	RecordNotification(outcome string)
}

type notificationLog interface {
	Read(ctx context.Context) []models.NotificationLogEntry
	Write(ctx context.Context, entries []models.NotificationLogEntry) error
}

// NotificationConfig tunes the reminder scan.
type NotificationConfig struct {
	Interval   time.Duration
	LogCap     int
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// NotificationService sends one reminder per task due today and keeps the
// in-app log of what was sent.
type NotificationService struct {
	tasks    taskReader
	settings settingsReader
	log      notificationLog
	notifier Notifier
	recorder NotificationRecorder
	queue    *jobs.Queue
	clock    Clock
	cfg      NotificationConfig
	logger   *zap.Logger
}

// NewNotificationService creates the scheduler. A nil notifier only records the log.
func NewNotificationService(tasks taskReader, settings settingsReader, log notificationLog, notifier Notifier, recorder NotificationRecorder, clock Clock, cfg NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.LogCap <= 0 {
		cfg.LogCap = defaultLogCap
	}
	s := &NotificationService{
		tasks:    tasks,
		settings: settings,
		log:      log,
		notifier: notifier,
		recorder: recorder,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
	s.queue = jobs.NewQueue(reminderQueueKey, s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnResult: func(_ jobs.Job, err error) {
			if err != nil {
				s.record("failed")
				return
			}
			s.record("delivered")
		},
	})
	return s
}

// Start launches reminder delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Scan notifies about incomplete tasks due today that have not been notified
// yet and returns how many were added to the log.
func (s *NotificationService) Scan(ctx context.Context) (int, error) {
	if !readSettings(ctx, s.settings).Notifications {
		return 0, nil
	}
	now := s.clock.now()
	today := now.Format(dateLayout)

	entries := s.log.Read(ctx)
	notified := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		notified[e.ID] = struct{}{}
	}

	var due []Reminder
	for _, t := range s.tasks.Read(ctx) {
		if t.Date != today || t.Completed {
			continue
		}
		if _, seen := notified[t.ID]; seen {
			continue
		}
		due = append(due, Reminder{
			TaskID: t.ID,
			Title:  "Task Reminder",
			Body:   `Your task "` + t.Title + `" is due today!`,
			At:     now,
		})
		entries = append(entries, models.NotificationLogEntry{ID: t.ID, Title: t.Title, Timestamp: now})
		notified[t.ID] = struct{}{}
	}
	if len(due) == 0 {
		return 0, nil
	}
	if len(entries) > s.cfg.LogCap {
		entries = entries[len(entries)-s.cfg.LogCap:]
	}
	// the log is the dedupe record, so it is saved before anything is sent
	if err := s.log.Write(ctx, entries); err != nil {
		return 0, storeFailure(err, "save notifications")
	}
	for _, r := range due {
		s.dispatch(r)
	}
	s.logger.Info("reminders scheduled", zap.Int("count", len(due)), zap.String("date", today))
	return len(due), nil
}

// Run scans immediately and then on every interval until ctx is cancelled.
func (s *NotificationService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		if _, err := s.Scan(ctx); err != nil {
			s.logger.Warn("notification scan failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Log returns the notification log, newest first.
func (s *NotificationService) Log(ctx context.Context) []models.NotificationLogEntry {
	entries := s.log.Read(ctx)
	out := make([]models.NotificationLogEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

// Clear empties the notification log.
func (s *NotificationService) Clear(ctx context.Context) error {
	if err := s.log.Write(ctx, nil); err != nil {
		return storeFailure(err, "clear notifications")
	}
	return nil
}

func (s *NotificationService) dispatch(r Reminder) {
	if s.notifier == nil {
		return
	}
	job := jobs.Job{ID: strconv.FormatInt(r.TaskID, 10), Type: reminderJobType, Payload: r}
	if err := s.queue.Enqueue(job); err != nil {
		// scans from the CLI run without workers; deliver inline
		if derr := s.deliver(context.Background(), job); derr != nil {
			s.record("failed")
			s.logger.Warn("reminder delivery failed", zap.Int64("task_id", r.TaskID), zap.Error(derr))
			return
		}
		s.record("delivered")
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	r, ok := job.Payload.(Reminder)
	if !ok {
		return nil
	}
	return s.notifier.Notify(ctx, r)
}

func (s *NotificationService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordNotification(outcome)
	}
}
