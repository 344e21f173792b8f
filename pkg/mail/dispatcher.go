package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/pkg/jobs"
)

// Email delivery outcomes reported to the observer.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

const jobType = "email"

// DispatcherConfig sizes the background send queue.
type DispatcherConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
	// QueueSize bounds buffered emails; overflow waits in the background.
	QueueSize int
	// Observer receives one outcome per delivered or abandoned email.
	Observer func(outcome string)
}

// Dispatcher sends emails through a worker queue with retries. While the
// queue is stopped every email is sent inline.
type Dispatcher struct {
	sender  Sender
	queue   *jobs.Queue
	logger  *zap.Logger
	observe func(string)

	mu      sync.Mutex
	closing bool
	tasks   sync.WaitGroup
}

// NewDispatcher wires a sender to a job queue.
func NewDispatcher(sender Sender, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	observe := cfg.Observer
	if observe == nil {
		observe = func(string) {}
	}
	d := &Dispatcher{sender: sender, logger: logger, observe: observe}
	d.queue = jobs.NewQueue("email", d.handle, jobs.QueueConfig{
		Workers:     cfg.Workers,
		BufferSize:  cfg.QueueSize,
		MaxRetries:  cfg.Retries,
		RetryDelay:  cfg.RetryDelay,
		Logger:      logger,
		OnExhausted: d.exhausted,
	})
	return d
}

// Start launches the send workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop waits for background tasks, then drains pending emails and stops the
// workers. Work handed over after Stop begins runs inline.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()
	d.tasks.Wait()
	d.queue.Stop()
}

// Go runs fn on a goroutine that Stop waits for. Once Stop has begun fn runs
// on the caller's goroutine.
func (d *Dispatcher) Go(fn func(ctx context.Context)) {
	if !d.track() {
		fn(context.Background())
		return
	}
	go func() {
		defer d.tasks.Done()
		fn(context.Background())
	}()
}

func (d *Dispatcher) track() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closing {
		return false
	}
	d.tasks.Add(1)
	return true
}

// Dispatch hands msg to the queue without blocking. When the queue is full
// the email waits for room on a background goroutine. When the queue is not
// running it is sent inline and only then is a send failure returned.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if d.queue.Running() {
		job := jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: msg}
		err := d.queue.Enqueue(job)
		if err == nil {
			return nil
		}
		if errors.Is(err, jobs.ErrQueueFull) && d.track() {
			go d.overflow(job)
			return nil
		}
		d.logger.Warn("email queue unavailable, sending inline", zap.String("to", msg.To), zap.Error(err))
	}
	return d.deliver(ctx, msg)
}

func (d *Dispatcher) overflow(job jobs.Job) {
	defer d.tasks.Done()
	if err := d.queue.EnqueueWait(context.Background(), job); err != nil {
		msg, _ := job.Payload.(Message)
		d.logger.Warn("email queue stopped, sending inline", zap.String("to", msg.To), zap.Error(err))
		if err := d.deliver(context.Background(), msg); err != nil {
			d.logger.Error("email delivery failed", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	if err := d.sender.Send(ctx, msg); err != nil {
		d.observe(OutcomeFailed)
		return err
	}
	d.observe(OutcomeSent)
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(Message)
	if !ok {
		return fmt.Errorf("unexpected email payload %T", job.Payload)
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return err
	}
	d.observe(OutcomeSent)
	return nil
}

func (d *Dispatcher) exhausted(job jobs.Job, err error) {
	d.observe(OutcomeFailed)
	msg, _ := job.Payload.(Message)
	d.logger.Error("email delivery abandoned",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attempts", job.Attempt),
		zap.Error(err),
	)
}
