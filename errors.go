package waguard

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorCategory represents the category of an error for handling decisions.
type ErrorCategory string

const (
	ErrorCategoryNetwork    ErrorCategory = "network"    // Network connectivity issues
	ErrorCategoryRateLimit  ErrorCategory = "rate_limit" // Rate limiting
	ErrorCategoryTimeout    ErrorCategory = "timeout"    // Request timeout
	ErrorCategoryAuth       ErrorCategory = "auth"       // Authentication/authorization
	ErrorCategoryConfig     ErrorCategory = "config"     // Configuration issues
	ErrorCategoryValidation ErrorCategory = "validation" // Input validation
	ErrorCategoryChecker    ErrorCategory = "checker"    // Checker-specific errors
	ErrorCategoryInternal   ErrorCategory = "internal"   // Internal errors
)

// Common errors
var (
	ErrEmptyTemplate      = errors.New("waguard: template has no body text")
	ErrInvalidContent     = errors.New("waguard: invalid content")
	ErrCheckerNotFound    = errors.New("waguard: checker not found")
	ErrStoreNotConfigured = errors.New("waguard: store not configured")
	ErrTaskNotFound       = errors.New("waguard: task not found")
	ErrCallbackInvalid    = errors.New("waguard: callback signature invalid")
	ErrTimeout            = errors.New("waguard: operation timeout")
	ErrRateLimited        = errors.New("waguard: rate limited by checker")
	ErrContentTooLarge    = errors.New("waguard: content exceeds size limit")
	ErrUnsupportedKind    = errors.New("waguard: unsupported content kind")
	ErrRevisionConflict   = errors.New("waguard: revision conflict, stale update")

	// Network errors
	ErrNetworkUnreachable = errors.New("waguard: network unreachable")
	ErrConnectionRefused  = errors.New("waguard: connection refused")
	ErrDNSResolution      = errors.New("waguard: DNS resolution failed")

	// Auth errors
	ErrAuthFailed        = errors.New("waguard: authentication failed")
	ErrPermissionDenied  = errors.New("waguard: permission denied")
	ErrInvalidCredential = errors.New("waguard: invalid credentials")

	// Config errors
	ErrMissingConfig   = errors.New("waguard: missing required configuration")
	ErrInvalidConfig   = errors.New("waguard: invalid configuration")
	ErrCheckerDisabled = errors.New("waguard: checker is disabled")
)

// CheckerError represents an error from a cloud safety checker.
type CheckerError struct {
	Checker    string        // Checker name (aliyun, huawei, tencent)
	Code       string        // Error code from the checker
	Message    string        // Error message
	StatusCode int           // HTTP status code if applicable
	Category   ErrorCategory // Error category for handling
	Retryable  bool          // Whether this error is retryable
	Raw        any           // Raw error response
	Err        error         // Underlying error
}

func (e *CheckerError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("waguard: checker %s error [%d/%s]: %s", e.Checker, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("waguard: checker %s error [%s]: %s", e.Checker, e.Code, e.Message)
}

func (e *CheckerError) Unwrap() error {
	return e.Err
}

// NewCheckerError creates a new checker error.
func NewCheckerError(checker, code, message string) *CheckerError {
	ce := &CheckerError{
		Checker:  checker,
		Code:     code,
		Message:  message,
		Category: ErrorCategoryChecker,
	}
	ce.Retryable = ce.isRetryable()
	return ce
}

// WithStatusCode sets the HTTP status code.
func (e *CheckerError) WithStatusCode(code int) *CheckerError {
	e.StatusCode = code
	e.Category = categorizeByStatusCode(code)
	e.Retryable = e.isRetryable()
	return e
}

// WithCategory sets the error category.
func (e *CheckerError) WithCategory(cat ErrorCategory) *CheckerError {
	e.Category = cat
	e.Retryable = e.isRetryable()
	return e
}

// WithRaw sets the raw error response.
func (e *CheckerError) WithRaw(raw any) *CheckerError {
	e.Raw = raw
	return e
}

// WithCause sets the underlying error.
func (e *CheckerError) WithCause(err error) *CheckerError {
	e.Err = err
	return e
}

func (e *CheckerError) isRetryable() bool {
	switch e.Category {
	case ErrorCategoryNetwork, ErrorCategoryRateLimit, ErrorCategoryTimeout:
		return true
	}
	switch e.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

func categorizeByStatusCode(code int) ErrorCategory {
	switch {
	case code == 401 || code == 403:
		return ErrorCategoryAuth
	case code == 429:
		return ErrorCategoryRateLimit
	case code == 408 || code == 504:
		return ErrorCategoryTimeout
	case code >= 500:
		return ErrorCategoryInternal
	default:
		return ErrorCategoryChecker
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Message string // Validation error message
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("waguard: validation error on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// StoreError represents a database/store error.
type StoreError struct {
	Operation string // Operation that failed (create, update, query)
	Table     string // Table name
	Err       error  // Underlying error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("waguard: store error during %s on %s: %v", e.Operation, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new store error.
func NewStoreError(operation, table string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Table:     table,
		Err:       err,
	}
}

// IsCheckerError checks if an error is a checker error.
func IsCheckerError(err error) bool {
	var ce *CheckerError
	return errors.As(err, &ce)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStoreError checks if an error is a store error.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check sentinel errors
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrNetworkUnreachable) || errors.Is(err, ErrConnectionRefused) {
		return true
	}

	// Check checker error
	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Retryable
	}

	// Check for network errors
	if IsNetworkError(err) {
		return true
	}

	return false
}

// IsNetworkError checks if an error is a network-related error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	// Check sentinel errors
	if errors.Is(err, ErrNetworkUnreachable) || errors.Is(err, ErrConnectionRefused) ||
		errors.Is(err, ErrDNSResolution) {
		return true
	}

	// Check for net.Error
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Check for common network error patterns in message
	msg := strings.ToLower(err.Error())
	networkPatterns := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"connection timed out",
		"dial tcp",
		"dial udp",
	}
	for _, pattern := range networkPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

// IsAuthError checks if an error is an authentication/authorization error.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrInvalidCredential) {
		return true
	}

	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Category == ErrorCategoryAuth
	}

	return false
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	if errors.Is(err, ErrMissingConfig) || errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrCheckerDisabled) {
		return true
	}

	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Category == ErrorCategoryConfig
	}

	return false
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Category == ErrorCategoryRateLimit || ce.StatusCode == 429
	}

	return false
}

// GetErrorCategory returns the category of an error.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	var ce *CheckerError
	if errors.As(err, &ce) {
		return ce.Category
	}

	if IsNetworkError(err) {
		return ErrorCategoryNetwork
	}
	if errors.Is(err, ErrTimeout) {
		return ErrorCategoryTimeout
	}
	if errors.Is(err, ErrRateLimited) {
		return ErrorCategoryRateLimit
	}
	if IsAuthError(err) {
		return ErrorCategoryAuth
	}
	if IsConfigError(err) {
		return ErrorCategoryConfig
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrorCategoryValidation
	}

	return ErrorCategoryInternal
}

// WrapNetworkError wraps a network error with the appropriate sentinel error.
func WrapNetworkError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") {
		return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}
	if strings.Contains(msg, "no such host") || strings.Contains(msg, "dns") {
		return fmt.Errorf("%w: %v", ErrDNSResolution, err)
	}
	if strings.Contains(msg, "network is unreachable") {
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return err
}
