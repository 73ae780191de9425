// Package review provides a human review checker backed by a task queue.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

const checkerName = "review"

// Config holds the configuration for the human review checker.
type Config struct {
	// QueueName is the name of the review queue.
	QueueName string

	// WebhookURL is the URL to notify when a task is created.
	WebhookURL string

	// WebhookSecret is the secret for webhook signatures.
	WebhookSecret string

	// DefaultTimeout is how long to wait for a reviewer.
	DefaultTimeout time.Duration

	// Store is an optional external storage for tasks.
	// If nil, uses in-memory storage (not recommended for production).
	Store TaskStore
}

// TaskStore is the interface for storing review tasks.
type TaskStore interface {
	SaveTask(ctx context.Context, task ReviewTask) error
	GetTask(ctx context.Context, taskID string) (*ReviewTask, error)
	UpdateTask(ctx context.Context, taskID string, outcome ReviewOutcome) error
	ListPendingTasks(ctx context.Context, queueName string, limit int) ([]ReviewTask, error)
}

// DefaultConfig returns the default review configuration.
func DefaultConfig() Config {
	return Config{
		QueueName:      "default",
		DefaultTimeout: 24 * time.Hour,
	}
}

// TaskHandler is called when a review task is created.
type TaskHandler func(ctx context.Context, task ReviewTask) error

// ReviewTask represents a template waiting for human review.
type ReviewTask struct {
	TaskID     string                  `json:"task_id"`
	QueueName  string                  `json:"queue_name"`
	Content    waguard.Content         `json:"content"`
	Tpl        waguard.TemplateContext `json:"tpl"`
	AutoResult *waguard.SafetyResult   `json:"auto_result,omitempty"` // Result from automated checks
	Priority   int                     `json:"priority"`              // Higher = more urgent
	CreatedAt  time.Time               `json:"created_at"`
	ExpiresAt  time.Time               `json:"expires_at"`
	Outcome    *ReviewOutcome          `json:"outcome,omitempty"` // Reviewer verdict if done
	Done       bool                    `json:"done"`
}

// ReviewOutcome is the verdict of a human reviewer.
type ReviewOutcome struct {
	TaskID     string            `json:"task_id"`
	Decision   waguard.Decision  `json:"decision"`
	Findings   []waguard.Finding `json:"findings"`
	ReviewerID string            `json:"reviewer_id"`
	Comment    string            `json:"comment"`
	ReviewedAt time.Time         `json:"reviewed_at"`
}

// Checker implements the human review checker.
type Checker struct {
	config     Config
	handler    TaskHandler
	store      TaskStore
	translator checkers.Translator
}

// New creates a new review checker.
func New(cfg Config) *Checker {
	c := &Checker{
		config:     cfg,
		translator: newTranslator(),
	}

	if cfg.Store != nil {
		c.store = cfg.Store
	} else {
		c.store = newMemoryStore()
	}

	return c
}

// WithHandler sets the task handler.
func (c *Checker) WithHandler(h TaskHandler) *Checker {
	c.handler = h
	return c
}

// Name returns the checker name.
func (c *Checker) Name() string {
	return checkerName
}

// Capabilities returns the supported capabilities.
// Human review supports every kind but only async mode.
func (c *Checker) Capabilities() []checkers.Capability {
	return []checkers.Capability{
		{
			Kind:  waguard.KindText,
			Modes: []checkers.Mode{checkers.ModeAsync},
		},
		{
			Kind:  waguard.KindImage,
			Modes: []checkers.Mode{checkers.ModeAsync},
		},
		{
			Kind:  waguard.KindVideo,
			Modes: []checkers.Mode{checkers.ModeAsync},
		},
	}
}

// Check creates a review task and queues it for a reviewer.
func (c *Checker) Check(ctx context.Context, req checkers.CheckRequest) (checkers.CheckResponse, error) {
	taskID := fmt.Sprintf("review_%s_%d", req.Content.ContentID, time.Now().UnixNano())

	task := ReviewTask{
		TaskID:    taskID,
		QueueName: c.config.QueueName,
		Content:   req.Content,
		Tpl:       req.Tpl,
		Priority:  calculatePriority(req.Tpl),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(c.config.DefaultTimeout),
		Done:      false,
	}

	if err := c.store.SaveTask(ctx, task); err != nil {
		return checkers.CheckResponse{}, fmt.Errorf("failed to save review task: %w", err)
	}

	// Push to review queue, send notification, etc.
	if c.handler != nil {
		if err := c.handler(ctx, task); err != nil {
			return checkers.CheckResponse{}, fmt.Errorf("failed to create review task: %w", err)
		}
	}

	return checkers.CheckResponse{
		Mode:   checkers.ModeAsync,
		TaskID: taskID,
		Raw: map[string]any{
			"task_id":    taskID,
			"queue":      c.config.QueueName,
			"status":     "pending",
			"expires_at": task.ExpiresAt.Unix(),
		},
	}, nil
}

// Query queries the status of a review task.
func (c *Checker) Query(ctx context.Context, taskID string) (checkers.QueryResponse, error) {
	task, err := c.store.GetTask(ctx, taskID)
	if err != nil {
		return checkers.QueryResponse{}, fmt.Errorf("failed to get task: %w", err)
	}

	if task == nil {
		return checkers.QueryResponse{
			Done: false,
			Raw: map[string]any{
				"task_id": taskID,
				"status":  "not_found",
			},
		}, nil
	}

	if !task.Done {
		if time.Now().After(task.ExpiresAt) {
			return checkers.QueryResponse{
				Done: true,
				Result: &waguard.SafetyResult{
					Decision:   waguard.DecisionReview, // Still needs review - escalate
					Confidence: 0,
					Checker:    checkerName,
					CheckedAt:  time.Now(),
					Findings: []waguard.Finding{{
						Code:    "timeout",
						Message: "Human review timed out",
						Checker: checkerName,
					}},
				},
				Raw: map[string]any{
					"task_id": taskID,
					"status":  "timeout",
				},
			}, nil
		}

		return checkers.QueryResponse{
			Done: false,
			Raw: map[string]any{
				"task_id": taskID,
				"status":  "pending",
			},
		}, nil
	}

	result := &waguard.SafetyResult{
		Decision:   task.Outcome.Decision,
		Confidence: 1.0, // Human review is authoritative
		Checker:    checkerName,
		CheckedAt:  task.Outcome.ReviewedAt,
		Findings:   task.Outcome.Findings,
	}

	return checkers.QueryResponse{
		Done:   true,
		Result: result,
		Raw: map[string]any{
			"task_id":     taskID,
			"status":      "completed",
			"reviewer_id": task.Outcome.ReviewerID,
			"comment":     task.Outcome.Comment,
		},
	}, nil
}

// SubmitOutcome records the verdict of a human reviewer.
func (c *Checker) SubmitOutcome(ctx context.Context, taskID string, outcome ReviewOutcome) error {
	outcome.ReviewedAt = time.Now()
	return c.store.UpdateTask(ctx, taskID, outcome)
}

// GetPendingTasks returns pending tasks for the queue.
func (c *Checker) GetPendingTasks(ctx context.Context, limit int) ([]ReviewTask, error) {
	return c.store.ListPendingTasks(ctx, c.config.QueueName, limit)
}

// VerifyCallback verifies callback signatures (not typically used here).
func (c *Checker) VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error {
	return nil
}

// ParseCallback parses callback data from the review frontend.
func (c *Checker) ParseCallback(ctx context.Context, body []byte) (checkers.CallbackData, error) {
	var callback struct {
		TaskID     string            `json:"task_id"`
		Decision   string            `json:"decision"`
		ReviewerID string            `json:"reviewer_id"`
		Comment    string            `json:"comment"`
		Findings   []waguard.Finding `json:"findings"`
	}

	if err := json.Unmarshal(body, &callback); err != nil {
		return checkers.CallbackData{}, fmt.Errorf("failed to parse callback: %w", err)
	}

	decision := waguard.Decision(callback.Decision)

	return checkers.CallbackData{
		TaskID: callback.TaskID,
		Done:   true,
		Result: &waguard.SafetyResult{
			Decision:   decision,
			Confidence: 1.0,
			Findings:   callback.Findings,
			Checker:    checkerName,
			CheckedAt:  time.Now(),
		},
		Raw: map[string]any{
			"reviewer_id": callback.ReviewerID,
			"comment":     callback.Comment,
		},
	}, nil
}

// Translator returns the finding translator for human review.
func (c *Checker) Translator() checkers.Translator {
	return c.translator
}

// calculatePriority determines task priority from the template context.
// Authentication templates carry OTP flows and jump the queue.
func calculatePriority(tpl waguard.TemplateContext) int {
	switch tpl.Category {
	case waguard.CategoryAuthentication:
		return 10
	case waguard.CategoryUtility:
		return 8
	case waguard.CategoryMarketing:
		return 6
	default:
		return 5
	}
}

// ============================================================
// In-memory store implementation (for testing/development)
// ============================================================

type memoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*ReviewTask
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tasks: make(map[string]*ReviewTask),
	}
}

func (s *memoryStore) SaveTask(ctx context.Context, task ReviewTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.TaskID] = &task
	return nil
}

func (s *memoryStore) GetTask(ctx context.Context, taskID string) (*ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return task, nil
}

func (s *memoryStore) UpdateTask(ctx context.Context, taskID string, outcome ReviewOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("task not found: %s", taskID)
	}
	task.Outcome = &outcome
	task.Done = true
	return nil
}

func (s *memoryStore) ListPendingTasks(ctx context.Context, queueName string, limit int) ([]ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ReviewTask
	for _, task := range s.tasks {
		if !task.Done && task.QueueName == queueName {
			result = append(result, *task)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// ============================================================
// Translator implementation
// ============================================================

// Labels a reviewer can attach to a verdict.
var labelMappings = map[string]checkers.LabelMapping{
	"adult":      {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 1.0},
	"prohibited": {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 1.0},
	"illegal":    {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 1.0},
	"fraud":      {Type: waguard.ViolationFraudContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 1.0},
	"abuse":      {Type: waguard.ViolationAbusiveContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionBlock, Confidence: 1.0},
	"spam":       {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 1.0},
	"privacy":    {Type: waguard.ViolationPrivacyContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 1.0},
	"timeout":    {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityInfo, Decision: waguard.DecisionReview, Confidence: 0},
}

func newTranslator() checkers.Translator {
	return checkers.NewBaseTranslator(checkerName, labelMappings)
}
