package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trackboard/internal/core"
	"trackboard/internal/log"
)

// AlertChecker is the part of Dashboard the reminder loop drives.
type AlertChecker interface {
	CheckAlerts(ctx context.Context) ([]core.Notification, error)
}

// ReminderProcessorConfig holds configuration for the reminder processor
type ReminderProcessorConfig struct {
	// Interval is how often alerts are evaluated (default: 15m)
	Interval time.Duration

	// Timeout bounds a single evaluation (default: 30s)
	Timeout time.Duration
}

func DefaultReminderProcessorConfig() ReminderProcessorConfig {
	return ReminderProcessorConfig{
		Interval: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// ReminderProcessor periodically evaluates budget and habit alerts. The
// persisted suppression state keeps each alert to once per day however
// often it runs.
type ReminderProcessor struct {
	checker AlertChecker
	config  ReminderProcessorConfig
	logger  *log.Logger

	mu      sync.Mutex
	running bool
	runs    int
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReminderProcessor(checker AlertChecker, config ReminderProcessorConfig, logger *log.Logger) *ReminderProcessor {
	def := DefaultReminderProcessorConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReminderProcessor{
		checker: checker,
		config:  config,
		logger:  logger.WithComponent(log.ComponentReminder),
	}
}

// Start begins the evaluation loop. Returns an error if already running.
func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("reminder processor is already running")
	}
	p.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	p.stopCh, p.doneCh = stopCh, doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	p.logger.InfoContext(ctx, "Reminder processor started", "interval", p.config.Interval)
	return nil
}

// Stop signals the loop and waits for the current evaluation to finish.
func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.stopCh = nil
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Reminder processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Reminder processor stop timed out")
		return ctx.Err()
	}
	return nil
}

func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Runs is the number of completed evaluations.
func (p *ReminderProcessor) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

// runLoop clears running on exit, whether Stop or ctx ended it, so the
// processor can be started again.
func (p *ReminderProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer func() {
		p.mu.Lock()
		if p.doneCh == doneCh {
			p.running = false
		}
		p.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Evaluate immediately on startup
	p.RunOnce(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single evaluation and returns how many alerts fired.
func (p *ReminderProcessor) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	fired, err := p.checker.CheckAlerts(ctx)

	p.mu.Lock()
	p.runs++
	p.mu.Unlock()

	if err != nil {
		p.logger.ErrorContext(ctx, "Alert evaluation failed", log.FieldError, err, log.FieldOperation, log.OpEvaluate)
		return 0
	}
	p.logger.DebugContext(ctx, "Alert evaluation complete", log.FieldCount, len(fired))
	return len(fired)
}
