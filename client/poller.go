package client

import (
	"context"
	"log"
	"sync"
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

// PollerConfig configures the async task poller.
type PollerConfig struct {
	// PollInterval is how often to poll for pending tasks.
	PollInterval time.Duration

	// BatchSize is the maximum number of tasks to poll per checker per cycle.
	BatchSize int

	// Workers is the number of concurrent workers per checker.
	Workers int

	// Checkers is the list of checker names to poll.
	Checkers []string
}

// DefaultPollerConfig returns the default poller configuration.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    50,
		Workers:      3,
	}
}

// Poller polls for pending async checker tasks and folds completed results
// into their check outcomes.
type Poller struct {
	client *Client
	config PollerConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// logger can be customized
	logger Logger
}

// Logger interface for logging.
type Logger interface {
	Printf(format string, v ...any)
}

// defaultLogger wraps standard log.
type defaultLogger struct{}

func (defaultLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// NewPoller creates a new async task poller.
func NewPoller(client *Client, config PollerConfig) *Poller {
	if config.PollInterval == 0 {
		config.PollInterval = 30 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 50
	}
	if config.Workers == 0 {
		config.Workers = 3
	}

	// Default to all configured checkers if not specified
	if len(config.Checkers) == 0 {
		for name := range client.pipeline.checkers {
			config.Checkers = append(config.Checkers, name)
		}
	}

	return &Poller{
		client: client,
		config: config,
		logger: defaultLogger{},
	}
}

// SetLogger sets a custom logger.
func (p *Poller) SetLogger(logger Logger) {
	p.logger = logger
}

// Start starts the poller.
func (p *Poller) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	started := 0
	for _, checkerName := range p.config.Checkers {
		checker, ok := p.client.pipeline.checkers[checkerName]
		if !ok {
			continue
		}

		supportsAsync := false
		for _, cap := range checker.Capabilities() {
			for _, mode := range cap.Modes {
				if mode == checkers.ModeAsync {
					supportsAsync = true
					break
				}
			}
			if supportsAsync {
				break
			}
		}

		if !supportsAsync {
			continue
		}

		p.wg.Add(1)
		go p.pollChecker(checkerName)
		started++
	}

	p.logger.Printf("[Poller] Started polling for %d checkers", started)
}

// Stop stops the poller and waits for all workers to finish.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Printf("[Poller] Stopped")
}

// pollChecker polls a single checker for pending tasks.
func (p *Poller) pollChecker(checkerName string) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Initial poll
	p.pollOnce(checkerName)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(checkerName)
		}
	}
}

// pollOnce performs a single poll cycle for a checker.
func (p *Poller) pollOnce(checkerName string) {
	tasks, err := p.client.store.ListPendingAsyncTasks(p.ctx, checkerName, p.config.BatchSize)
	if err != nil {
		p.logger.Printf("[Poller] Error listing pending tasks for %s: %v", checkerName, err)
		return
	}

	if len(tasks) == 0 {
		return
	}

	p.logger.Printf("[Poller] Found %d pending tasks for %s", len(tasks), checkerName)

	// Process tasks with worker pool
	taskChan := make(chan waguard.PendingTask, len(tasks))
	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	var wg sync.WaitGroup
	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				p.processTask(task)
			}
		}()
	}
	wg.Wait()
}

// processTask processes a single pending task.
func (p *Poller) processTask(task waguard.PendingTask) {
	checker, ok := p.client.pipeline.checkers[task.Checker]
	if !ok {
		p.logger.Printf("[Poller] Checker %s not found for task %s", task.Checker, task.CheckerTaskID)
		return
	}

	// Query checker for task status
	resp, err := checker.Query(p.ctx, task.RemoteTaskID)
	if err != nil {
		p.logger.Printf("[Poller] Error querying task %s from %s: %v", task.RemoteTaskID, task.Checker, err)
		return
	}

	if !resp.Done {
		// Task still pending, skip
		return
	}

	// Task is done, process the result
	checkerTask, err := p.client.store.GetCheckerTask(p.ctx, task.CheckerTaskID)
	if err != nil {
		p.logger.Printf("[Poller] Error getting checker task %s: %v", task.CheckerTaskID, err)
		return
	}

	// Update checker task result
	if err := p.client.store.UpdateCheckerTaskResult(p.ctx, task.CheckerTaskID, true, resp.Result, resp.Raw); err != nil {
		p.logger.Printf("[Poller] Error updating task result %s: %v", task.CheckerTaskID, err)
		return
	}

	// Process completion
	if err := p.client.processAsyncCompletion(p.ctx, checkerTask, resp.Result); err != nil {
		p.logger.Printf("[Poller] Error processing completion for task %s: %v", task.CheckerTaskID, err)
		return
	}

	p.logger.Printf("[Poller] Successfully processed task %s from %s", task.RemoteTaskID, task.Checker)
}

// PollNow triggers an immediate poll for all checkers.
// This can be called externally to force a poll cycle.
func (p *Poller) PollNow() {
	for _, checkerName := range p.config.Checkers {
		go p.pollOnce(checkerName)
	}
}
