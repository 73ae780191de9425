package checkers

import (
	"context"
	"time"

	"github.com/sociovia/waguard/utils"
)

// ResilientConfig configures the resilient checker wrapper.
type ResilientConfig struct {
	// Retry configuration
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Logger for API calls
	Logger APILogger

	// EnableRetry controls whether retry is enabled.
	EnableRetry bool

	// EnableLogging controls whether logging is enabled.
	EnableLogging bool
}

// DefaultResilientConfig returns sensible defaults.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxRetries:    3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      30 * time.Second,
		EnableRetry:   true,
		EnableLogging: true,
	}
}

// ResilientChecker wraps a checker with retry and logging capabilities.
type ResilientChecker struct {
	checker Checker
	config  ResilientConfig
	retryer *utils.Retryer
	logger  APILogger
}

// NewResilientChecker creates a new resilient checker wrapper.
func NewResilientChecker(checker Checker, config ResilientConfig) *ResilientChecker {
	rc := &ResilientChecker{
		checker: checker,
		config:  config,
	}

	if config.EnableRetry {
		rc.retryer = utils.NewRetryer(utils.RetryConfig{
			MaxRetries:   config.MaxRetries,
			InitialDelay: config.InitialDelay,
			MaxDelay:     config.MaxDelay,
			Multiplier:   2.0,
			Jitter:       0.1,
		})
	}

	if config.EnableLogging {
		if config.Logger != nil {
			rc.logger = config.Logger
		} else {
			rc.logger = GlobalLogger
		}
	} else {
		rc.logger = NopLogger{}
	}

	return rc
}

// Name returns the checker name.
func (rc *ResilientChecker) Name() string {
	return rc.checker.Name()
}

// Capabilities returns the supported capabilities.
func (rc *ResilientChecker) Capabilities() []Capability {
	return rc.checker.Capabilities()
}

// Check submits content for screening with retry and logging.
func (rc *ResilientChecker) Check(ctx context.Context, req CheckRequest) (CheckResponse, error) {
	timer := StartLog(rc.logger, rc.checker.Name(), "check").
		WithContent(req.Content.Kind, req.Content.ContentID).
		WithRequest(sanitizeRequest(req))

	var resp CheckResponse
	var retryCount int

	executeCheck := func() error {
		var err error
		resp, err = rc.checker.Check(ctx, req)
		if err != nil {
			retryCount++
			return err
		}
		return nil
	}

	if rc.retryer != nil {
		err := rc.retryer.Do(ctx, executeCheck)
		if err != nil {
			timer.WithRetryCount(retryCount).Error(ctx, err, nil)
			return CheckResponse{}, err
		}
	} else {
		if err := executeCheck(); err != nil {
			timer.Error(ctx, err, nil)
			return CheckResponse{}, err
		}
	}

	timer.WithTaskID(resp.TaskID).WithRetryCount(retryCount).Success(ctx, sanitizeResponse(resp))
	return resp, nil
}

// Query queries the status of an async task with retry and logging.
func (rc *ResilientChecker) Query(ctx context.Context, taskID string) (QueryResponse, error) {
	timer := StartLog(rc.logger, rc.checker.Name(), "query").
		WithTaskID(taskID)

	var resp QueryResponse
	var retryCount int

	executeQuery := func() error {
		var err error
		resp, err = rc.checker.Query(ctx, taskID)
		if err != nil {
			retryCount++
			return err
		}
		return nil
	}

	if rc.retryer != nil {
		err := rc.retryer.Do(ctx, executeQuery)
		if err != nil {
			timer.WithRetryCount(retryCount).Error(ctx, err, nil)
			return QueryResponse{}, err
		}
	} else {
		if err := executeQuery(); err != nil {
			timer.Error(ctx, err, nil)
			return QueryResponse{}, err
		}
	}

	timer.WithRetryCount(retryCount).
		WithExtra("done", resp.Done).
		Success(ctx, nil)
	return resp, nil
}

// VerifyCallback verifies the signature of a callback request.
func (rc *ResilientChecker) VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error {
	return rc.checker.VerifyCallback(ctx, headers, body)
}

// ParseCallback parses a callback request body with logging.
func (rc *ResilientChecker) ParseCallback(ctx context.Context, body []byte) (CallbackData, error) {
	timer := StartLog(rc.logger, rc.checker.Name(), "callback")

	data, err := rc.checker.ParseCallback(ctx, body)
	if err != nil {
		timer.Error(ctx, err, nil)
		return CallbackData{}, err
	}

	timer.WithTaskID(data.TaskID).
		WithExtra("done", data.Done).
		Success(ctx, nil)
	return data, nil
}

// Translator returns the finding translator.
func (rc *ResilientChecker) Translator() Translator {
	return rc.checker.Translator()
}

// Unwrap returns the underlying checker.
func (rc *ResilientChecker) Unwrap() Checker {
	return rc.checker
}

// sanitizeRequest keeps template text and media URLs out of the logs.
func sanitizeRequest(req CheckRequest) map[string]any {
	return map[string]any{
		"content_id":    req.Content.ContentID,
		"content_kind":  req.Content.Kind,
		"template_name": req.Tpl.TemplateName,
		"language":      req.Tpl.Language,
		"has_text":      req.Content.Text != "",
		"has_url":       req.Content.URL != "",
	}
}

// sanitizeResponse removes sensitive data from response for logging.
func sanitizeResponse(resp CheckResponse) map[string]any {
	result := map[string]any{
		"mode":    resp.Mode,
		"task_id": resp.TaskID,
	}
	if resp.Immediate != nil {
		result["decision"] = resp.Immediate.Decision
		result["confidence"] = resp.Immediate.Confidence
	}
	return result
}

// WrapWithResilience wraps a checker with default resilience configuration.
func WrapWithResilience(checker Checker) *ResilientChecker {
	return NewResilientChecker(checker, DefaultResilientConfig())
}

// WrapWithRetry wraps a checker with retry only.
func WrapWithRetry(checker Checker, maxRetries int) *ResilientChecker {
	return NewResilientChecker(checker, ResilientConfig{
		MaxRetries:    maxRetries,
		InitialDelay:  1 * time.Second,
		MaxDelay:      30 * time.Second,
		EnableRetry:   true,
		EnableLogging: false,
	})
}

// WrapWithLogging wraps a checker with logging only.
func WrapWithLogging(checker Checker, logger APILogger) *ResilientChecker {
	return NewResilientChecker(checker, ResilientConfig{
		Logger:        logger,
		EnableRetry:   false,
		EnableLogging: true,
	})
}
