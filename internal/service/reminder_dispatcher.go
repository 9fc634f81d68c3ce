package service

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/jobs"
)

const reminderBatchSize = 100

type dueReminderRepository interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.DueReminder, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, failedAt time.Time, reason string) error
}

type emailSender interface {
	Configured() bool
	Send(ctx context.Context, to, subject, html string) error
}

// ReminderDispatcherConfig tunes polling and delivery.
type ReminderDispatcherConfig struct {
	PollInterval time.Duration
	Workers      int
	Retries      int
	Location     *time.Location
}

// ReminderDispatcher polls for due reminders and delivers them on a worker
// pool. Each reminder is marked sent once delivered.
type ReminderDispatcher struct {
	repo     dueReminderRepository
	email    emailSender
	metrics  *MetricsService
	queue    *jobs.Queue[models.DueReminder]
	interval time.Duration
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time

	inflight sync.Map
	stop     context.CancelFunc
	done     chan struct{}
}

// NewReminderDispatcher constructs a ReminderDispatcher. email may be nil, in
// which case email reminders are only logged.
func NewReminderDispatcher(repo dueReminderRepository, email emailSender, metrics *MetricsService, cfg ReminderDispatcherConfig, logger *zap.Logger) *ReminderDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	d := &ReminderDispatcher{
		repo:     repo,
		email:    email,
		metrics:  metrics,
		interval: cfg.PollInterval,
		loc:      cfg.Location,
		logger:   logger,
		now:      time.Now,
	}
	d.queue = jobs.NewQueue[models.DueReminder]("reminders", d.Deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	d.queue.OnExhausted = d.giveUp
	return d
}

// Start launches the workers and the polling loop.
func (d *ReminderDispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.stop = cancel
	d.done = make(chan struct{})
	d.queue.Start(ctx)

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			if _, err := d.Poll(ctx); err != nil {
				d.logger.Warn("reminder poll failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	d.logger.Info("reminder dispatcher started", zap.Duration("interval", d.interval))
}

// Stop halts polling and waits for the workers to exit.
func (d *ReminderDispatcher) Stop() {
	if d.stop == nil {
		return
	}
	d.stop()
	<-d.done
	d.queue.Stop()
}

// Poll enqueues every due reminder that is not already being delivered.
func (d *ReminderDispatcher) Poll(ctx context.Context) (int, error) {
	due, err := d.repo.ListDue(ctx, d.now().UTC(), reminderBatchSize)
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, reminder := range due {
		if _, busy := d.inflight.LoadOrStore(reminder.ID, struct{}{}); busy {
			continue
		}
		if err := d.queue.Enqueue(jobs.Job[models.DueReminder]{ID: reminder.ID, Payload: reminder}); err != nil {
			d.inflight.Delete(reminder.ID)
			return enqueued, err
		}
		enqueued++
	}
	return enqueued, nil
}

// Deliver sends one reminder and marks it sent.
func (d *ReminderDispatcher) Deliver(ctx context.Context, job jobs.Job[models.DueReminder]) error {
	reminder := job.Payload
	logger := d.logger.With(zap.String("reminder_id", reminder.ID), zap.String("method", reminder.Method))

	switch {
	case reminder.Method == models.ReminderMethodEmail && d.email != nil && d.email.Configured():
		subject := fmt.Sprintf("Reminder: %s", reminder.EventTitle)
		if err := d.email.Send(ctx, reminder.UserEmail, subject, d.reminderHTML(reminder)); err != nil {
			return err
		}
	default:
		logger.Info("reminder due", zap.String("user_id", reminder.UserID), zap.String("event", reminder.EventTitle), zap.Time("starts_at", reminder.EventStart))
	}

	if err := d.repo.MarkSent(ctx, reminder.ID, d.now().UTC()); err != nil {
		return err
	}
	d.inflight.Delete(reminder.ID)
	d.metrics.RecordReminder(reminder.Method, nil)
	return nil
}

// giveUp marks a reminder failed once its retries are spent so later polls
// skip it.
func (d *ReminderDispatcher) giveUp(job jobs.Job[models.DueReminder], cause error) {
	defer d.inflight.Delete(job.Payload.ID)
	d.metrics.RecordReminder(job.Payload.Method, cause)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	if err := d.repo.MarkFailed(ctx, job.Payload.ID, d.now().UTC(), reason); err != nil {
		d.logger.Error("mark reminder failed", zap.String("reminder_id", job.Payload.ID), zap.Error(err))
	}
}

func (d *ReminderDispatcher) reminderHTML(r models.DueReminder) string {
	name := r.UserName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`<p>Hi %s,</p><p><strong>%s</strong> starts %s.</p>`,
		html.EscapeString(name),
		html.EscapeString(r.EventTitle),
		r.EventStart.In(d.loc).Format("Monday, January 2, 2006 at 3:04 PM"),
	)
}
