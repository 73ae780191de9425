package checkers

import (
	"context"
	"errors"
	"testing"
	"time"

	waguard "github.com/sociovia/waguard"
)

// ============================================================
// Mock Checker Implementation
// ============================================================

type mockChecker struct {
	name         string
	capabilities []Capability
	checkResp    CheckResponse
	checkErr     error
	queryResp    QueryResponse
	queryErr     error
	callbackErr  error
	callbackData CallbackData
}

func newMockChecker(name string) *mockChecker {
	return &mockChecker{
		name: name,
		capabilities: []Capability{
			{Kind: waguard.KindText, Modes: []Mode{ModeSync, ModeAsync}},
			{Kind: waguard.KindImage, Modes: []Mode{ModeAsync}},
		},
		checkResp: CheckResponse{
			Mode:   ModeSync,
			TaskID: "task_123",
			Immediate: &waguard.SafetyResult{
				Decision:   waguard.DecisionPass,
				Confidence: 1.0,
				Checker:    name,
				CheckedAt:  time.Now(),
			},
		},
		queryResp: QueryResponse{
			Done: true,
			Result: &waguard.SafetyResult{
				Decision:   waguard.DecisionPass,
				Confidence: 1.0,
				Checker:    name,
			},
		},
		callbackData: CallbackData{
			TaskID: "callback_task",
			Done:   true,
			Result: &waguard.SafetyResult{
				Decision: waguard.DecisionPass,
				Checker:  name,
			},
		},
	}
}

func (c *mockChecker) Name() string {
	return c.name
}

func (c *mockChecker) Capabilities() []Capability {
	return c.capabilities
}

func (c *mockChecker) Check(ctx context.Context, req CheckRequest) (CheckResponse, error) {
	if c.checkErr != nil {
		return CheckResponse{}, c.checkErr
	}
	return c.checkResp, nil
}

func (c *mockChecker) Query(ctx context.Context, taskID string) (QueryResponse, error) {
	if c.queryErr != nil {
		return QueryResponse{}, c.queryErr
	}
	return c.queryResp, nil
}

func (c *mockChecker) VerifyCallback(ctx context.Context, headers map[string]string, body []byte) error {
	return c.callbackErr
}

func (c *mockChecker) ParseCallback(ctx context.Context, body []byte) (CallbackData, error) {
	return c.callbackData, nil
}

func (c *mockChecker) Translator() Translator {
	return nil
}

// ============================================================
// Checker Helper Function Tests
// ============================================================

func TestSupportsSync(t *testing.T) {
	c := newMockChecker("test")

	tests := []struct {
		name string
		kind waguard.ContentKind
		want bool
	}{
		{
			name: "text supports sync",
			kind: waguard.KindText,
			want: true,
		},
		{
			name: "image does not support sync",
			kind: waguard.KindImage,
			want: false,
		},
		{
			name: "unsupported kind",
			kind: waguard.KindVideo,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SupportsSync(c, tt.kind)
			if got != tt.want {
				t.Errorf("SupportsSync() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupportsAsync(t *testing.T) {
	c := newMockChecker("test")

	tests := []struct {
		name string
		kind waguard.ContentKind
		want bool
	}{
		{
			name: "text supports async",
			kind: waguard.KindText,
			want: true,
		},
		{
			name: "image supports async",
			kind: waguard.KindImage,
			want: true,
		},
		{
			name: "unsupported kind",
			kind: waguard.KindVideo,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SupportsAsync(c, tt.kind)
			if got != tt.want {
				t.Errorf("SupportsAsync() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupportsKind(t *testing.T) {
	c := newMockChecker("test")

	tests := []struct {
		name string
		kind waguard.ContentKind
		want bool
	}{
		{
			name: "text supported",
			kind: waguard.KindText,
			want: true,
		},
		{
			name: "image supported",
			kind: waguard.KindImage,
			want: true,
		},
		{
			name: "video not supported",
			kind: waguard.KindVideo,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SupportsKind(c, tt.kind)
			if got != tt.want {
				t.Errorf("SupportsKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================
// ResilientChecker Tests
// ============================================================

func TestResilientChecker_Check(t *testing.T) {
	t.Run("success without retry", func(t *testing.T) {
		mc := newMockChecker("test")
		rc := WrapWithResilience(mc)

		resp, err := rc.Check(context.Background(), CheckRequest{
			Content: waguard.Content{
				ContentID: "c_1",
				Kind:      waguard.KindText,
				Text:      "Hello world",
			},
		})

		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if resp.TaskID == "" {
			t.Error("Check() TaskID is empty")
		}
	})

	t.Run("retry on retryable error", func(t *testing.T) {
		mc := newMockChecker("test")
		callCount := 0

		retryErr := waguard.NewCheckerError("test", "rate_limit", "too many requests").
			WithStatusCode(429)

		// Fails first, succeeds on retry
		testChecker := &retryTestChecker{
			Checker:     mc,
			callCount:   &callCount,
			failUntil:   2,
			successResp: mc.checkResp,
			failErr:     retryErr,
		}

		rc := NewResilientChecker(testChecker, ResilientConfig{
			MaxRetries:    3,
			InitialDelay:  10 * time.Millisecond,
			MaxDelay:      100 * time.Millisecond,
			EnableRetry:   true,
			EnableLogging: false,
		})

		resp, err := rc.Check(context.Background(), CheckRequest{
			Content: waguard.Content{
				ContentID: "c_1",
				Kind:      waguard.KindText,
				Text:      "Hello world",
			},
		})

		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if resp.TaskID == "" {
			t.Error("Check() TaskID is empty")
		}
		if callCount < 2 {
			t.Errorf("Expected at least 2 calls, got %d", callCount)
		}
	})

	t.Run("non-retryable error fails immediately", func(t *testing.T) {
		mc := newMockChecker("test")
		mc.checkErr = waguard.NewCheckerError("test", "invalid_param", "bad request").
			WithStatusCode(400)

		rc := NewResilientChecker(mc, ResilientConfig{
			MaxRetries:    3,
			InitialDelay:  10 * time.Millisecond,
			MaxDelay:      100 * time.Millisecond,
			EnableRetry:   true,
			EnableLogging: false,
		})

		_, err := rc.Check(context.Background(), CheckRequest{
			Content: waguard.Content{
				ContentID: "c_1",
				Kind:      waguard.KindText,
				Text:      "Hello world",
			},
		})

		if err == nil {
			t.Error("Check() should return error")
		}
	})
}

func TestResilientChecker_Query(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mc := newMockChecker("test")
		rc := WrapWithResilience(mc)

		resp, err := rc.Query(context.Background(), "task_123")

		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if !resp.Done {
			t.Error("Query() Done should be true")
		}
	})

	t.Run("with error", func(t *testing.T) {
		mc := newMockChecker("test")
		mc.queryErr = errors.New("query failed")
		rc := WrapWithLogging(mc, NopLogger{})

		_, err := rc.Query(context.Background(), "task_123")

		if err == nil {
			t.Error("Query() should return error")
		}
	})
}

func TestResilientChecker_Callback(t *testing.T) {
	t.Run("verify and parse success", func(t *testing.T) {
		mc := newMockChecker("test")
		rc := WrapWithResilience(mc)

		err := rc.VerifyCallback(context.Background(), nil, nil)
		if err != nil {
			t.Fatalf("VerifyCallback() error = %v", err)
		}

		data, err := rc.ParseCallback(context.Background(), nil)
		if err != nil {
			t.Fatalf("ParseCallback() error = %v", err)
		}
		if data.TaskID == "" {
			t.Error("ParseCallback() TaskID is empty")
		}
	})
}

func TestResilientChecker_Unwrap(t *testing.T) {
	mc := newMockChecker("test")
	rc := WrapWithResilience(mc)

	unwrapped := rc.Unwrap()
	if unwrapped != mc {
		t.Error("Unwrap() should return original checker")
	}
}

// Helper checker for retry testing
type retryTestChecker struct {
	Checker
	callCount   *int
	failUntil   int
	successResp CheckResponse
	failErr     error
}

func (c *retryTestChecker) Check(ctx context.Context, req CheckRequest) (CheckResponse, error) {
	*c.callCount++
	if *c.callCount < c.failUntil {
		return CheckResponse{}, c.failErr
	}
	return c.successResp, nil
}

// ============================================================
// Logger Tests
// ============================================================

func TestStandardLogger(t *testing.T) {
	t.Run("log entry sync", func(t *testing.T) {
		config := DefaultLoggerConfig()
		config.StdoutEnabled = false // Disable stdout for tests
		logger := NewStandardLogger(config)
		defer logger.Close()

		entry := APILogEntry{
			Checker:   "test",
			Operation: "check",
			Success:   true,
			Duration:  100 * time.Millisecond,
		}

		// Should not panic
		logger.Log(context.Background(), entry)
	})

	t.Run("log entry async", func(t *testing.T) {
		config := DefaultLoggerConfig()
		config.StdoutEnabled = false
		logger := NewStandardLogger(config)

		entry := APILogEntry{
			Checker:   "test",
			Operation: "check",
			Success:   true,
			Duration:  100 * time.Millisecond,
		}

		// Should not panic
		logger.LogAsync(context.Background(), entry)

		// Close waits for async logs to be processed
		logger.Close()
	})

	t.Run("nop logger", func(t *testing.T) {
		logger := NopLogger{}

		entry := APILogEntry{
			Checker:   "test",
			Operation: "check",
		}

		// Should not panic
		logger.Log(context.Background(), entry)
		logger.LogAsync(context.Background(), entry)
	})
}

func TestLogTimer(t *testing.T) {
	t.Run("success logging", func(t *testing.T) {
		timer := StartLog(NopLogger{}, "test", "check").
			WithContent(waguard.KindText, "c_1").
			WithTaskID("task_123").
			WithRequest(map[string]string{"key": "value"}).
			WithRetryCount(2).
			WithExtra("custom", "data")

		// Should not panic
		timer.Success(context.Background(), map[string]string{"result": "ok"})
	})

	t.Run("error logging", func(t *testing.T) {
		timer := StartLog(NopLogger{}, "test", "check").
			WithContent(waguard.KindText, "c_1")

		err := waguard.NewCheckerError("test", "err_code", "error message")

		// Should not panic
		timer.Error(context.Background(), err, nil)
	})

	t.Run("error logging with plain error", func(t *testing.T) {
		timer := StartLog(NopLogger{}, "test", "check")

		err := errors.New("generic error")

		// Should not panic
		timer.Error(context.Background(), err, nil)
	})
}

func TestGlobalLogger(t *testing.T) {
	t.Run("default is nop", func(t *testing.T) {
		_, ok := GlobalLogger.(NopLogger)
		if !ok {
			t.Error("Default GlobalLogger should be NopLogger")
		}
	})

	t.Run("set global logger", func(t *testing.T) {
		original := GlobalLogger
		defer func() { GlobalLogger = original }()

		config := DefaultLoggerConfig()
		config.StdoutEnabled = false
		newLogger := NewStandardLogger(config)
		defer newLogger.Close()

		SetGlobalLogger(newLogger)

		if GlobalLogger != newLogger {
			t.Error("SetGlobalLogger did not set the logger")
		}
	})
}

// ============================================================
// Wrapper Function Tests
// ============================================================

func TestWrapperFunctions(t *testing.T) {
	mc := newMockChecker("test")

	t.Run("WrapWithResilience", func(t *testing.T) {
		rc := WrapWithResilience(mc)
		if rc == nil {
			t.Error("WrapWithResilience returned nil")
		}
		if rc.Name() != mc.Name() {
			t.Error("Name should match underlying checker")
		}
	})

	t.Run("WrapWithRetry", func(t *testing.T) {
		rc := WrapWithRetry(mc, 5)
		if rc == nil {
			t.Error("WrapWithRetry returned nil")
		}
		if rc.config.MaxRetries != 5 {
			t.Errorf("MaxRetries = %d, want 5", rc.config.MaxRetries)
		}
		if rc.config.EnableLogging {
			t.Error("EnableLogging should be false")
		}
	})

	t.Run("WrapWithLogging", func(t *testing.T) {
		rc := WrapWithLogging(mc, NopLogger{})
		if rc == nil {
			t.Error("WrapWithLogging returned nil")
		}
		if rc.config.EnableRetry {
			t.Error("EnableRetry should be false")
		}
	})
}
