// Package checkers defines the checker interface and common types for the
// content-safety services that screen template content before submission.
package checkers

import (
	"context"
	"time"

	waguard "github.com/sociovia/waguard"
)

// Mode represents how a checker returns its verdict.
type Mode string

const (
	ModeSync  Mode = "sync"  // Verdict returned in the response
	ModeAsync Mode = "async" // Verdict arrives later via query or callback
)

// Capability declares what a checker can handle.
type Capability struct {
	Kind  waguard.ContentKind
	Modes []Mode
}

// CheckRequest is a request to screen one piece of template content.
type CheckRequest struct {
	Content waguard.Content
	Tpl     waguard.TemplateContext
	Timeout time.Duration
}

// CheckResponse is the response from submitting content to a checker.
type CheckResponse struct {
	Mode      Mode                  // sync or async
	TaskID    string                // Checker-side task ID
	Immediate *waguard.SafetyResult // Immediate result for sync mode
	Raw       map[string]any        // Raw checker response
}

// QueryResponse is the response from querying an async task.
type QueryResponse struct {
	Done   bool                  // Whether the task is complete
	Result *waguard.SafetyResult // Safety result if done
	Raw    map[string]any        // Raw checker response
}

// CallbackData is data received from a checker callback.
type CallbackData struct {
	TaskID string
	Done   bool
	Result *waguard.SafetyResult
	Raw    map[string]any
}

// Checker screens template content for policy-violating material.
type Checker interface {
	// Name returns the checker name (e.g., "rules", "aliyun", "tencent").
	Name() string

	// Capabilities returns the supported content kinds and modes.
	Capabilities() []Capability

	// Check submits content for screening.
	Check(ctx context.Context, req CheckRequest) (CheckResponse, error)

	// Query queries the status of an async task.
	Query(ctx context.Context, taskID string) (QueryResponse, error)

	// VerifyCallback verifies the signature of a callback request.
	VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error

	// ParseCallback parses a callback request body.
	ParseCallback(ctx context.Context, body []byte) (CallbackData, error)

	// Translator returns the finding translator for this checker.
	Translator() Translator
}

// CheckerConfig is the base configuration for cloud checkers.
type CheckerConfig struct {
	AccessKeyID     string
	AccessKeySecret string
	Region          string
	Endpoint        string
	Timeout         time.Duration
}

// SupportsSync checks if a checker supports sync mode for a content kind.
func SupportsSync(c Checker, kind waguard.ContentKind) bool {
	for _, cap := range c.Capabilities() {
		if cap.Kind == kind {
			for _, mode := range cap.Modes {
				if mode == ModeSync {
					return true
				}
			}
		}
	}
	return false
}

// SupportsAsync checks if a checker supports async mode for a content kind.
func SupportsAsync(c Checker, kind waguard.ContentKind) bool {
	for _, cap := range c.Capabilities() {
		if cap.Kind == kind {
			for _, mode := range cap.Modes {
				if mode == ModeAsync {
					return true
				}
			}
		}
	}
	return false
}

// SupportsKind checks if a checker supports a content kind.
func SupportsKind(c Checker, kind waguard.ContentKind) bool {
	for _, cap := range c.Capabilities() {
		if cap.Kind == kind {
			return true
		}
	}
	return false
}
