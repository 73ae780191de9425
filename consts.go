// Package waguard provides category-intent scoring and compliance checking
// for WhatsApp Business message templates, plus optional cloud content-safety
// checks (Aliyun, Huawei, Tencent) run before a template is submitted to the
// Meta API.
package waguard

// Category is a WhatsApp template category as defined by the messaging
// platform. The category determines pricing and policy treatment.
type Category string

const (
	CategoryUtility        Category = "UTILITY"
	CategoryMarketing      Category = "MARKETING"
	CategoryAuthentication Category = "AUTHENTICATION"
)

// Intent is the detected intent of template text.
type Intent string

const (
	IntentTransactional  Intent = "TRANSACTIONAL"
	IntentPromotional    Intent = "PROMOTIONAL"
	IntentAuthentication Intent = "AUTHENTICATION"
	IntentAmbiguous      Intent = "AMBIGUOUS"
)

// Confidence is the coarse confidence of an intent classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Badge summarizes how certain the scorer is, for display to the end user.
type Badge string

const (
	BadgeStrongUtility   Badge = "strong_utility"
	BadgeStrongMarketing Badge = "strong_marketing"
	BadgeStrongAuth      Badge = "strong_auth"
	BadgeMixedReview     Badge = "mixed_review"
	BadgeLowConfidence   Badge = "low_confidence"
)

// Severity is the severity of a violation.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Location identifies which part of a template a violation refers to.
type Location string

const (
	LocationBody   Location = "BODY"
	LocationHeader Location = "HEADER"
	LocationFooter Location = "FOOTER"
	LocationButton Location = "BUTTON"
	LocationURL    Location = "URL"
)

// ViolationType tags a violation for programmatic handling by calling UI code.
type ViolationType string

const (
	// Intent engine violations
	ViolationPromotionalKeyword ViolationType = "PROMOTIONAL_KEYWORD"
	ViolationMissingAuthContent ViolationType = "MISSING_AUTH_CONTENT"
	ViolationButtonsNotAllowed  ViolationType = "BUTTONS_NOT_ALLOWED"
	ViolationAuthInUtility      ViolationType = "AUTH_IN_UTILITY"
	ViolationMarketingInUtility ViolationType = "MARKETING_IN_UTILITY"

	// Content safety violations (from cloud checkers)
	ViolationProhibitedContent ViolationType = "PROHIBITED_CONTENT"
	ViolationAdultContent      ViolationType = "ADULT_CONTENT"
	ViolationIllegalContent    ViolationType = "ILLEGAL_CONTENT"
	ViolationAbusiveContent    ViolationType = "ABUSIVE_CONTENT"
	ViolationSpamContent       ViolationType = "SPAM_CONTENT"
	ViolationFraudContent      ViolationType = "FRAUD_CONTENT"
	ViolationPrivacyContent    ViolationType = "PRIVACY_CONTENT"
)

// ContentKind is the kind of template content handed to a safety checker.
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindImage ContentKind = "image"
	KindVideo ContentKind = "video"
)

// MediaType is the media type of a template header.
type MediaType string

const (
	MediaNone     MediaType = ""
	MediaImage    MediaType = "IMAGE"
	MediaVideo    MediaType = "VIDEO"
	MediaDocument MediaType = "DOCUMENT"
)

// Decision is a content-safety verdict for a piece of template content.
type Decision string

const (
	DecisionPending Decision = "pending" // Awaiting an async checker
	DecisionPass    Decision = "pass"    // Content is clean
	DecisionReview  Decision = "review"  // Needs human review
	DecisionBlock   Decision = "block"   // Content must not be submitted
	DecisionError   Decision = "error"   // Check failed with an error
)

// CheckStatus is the lifecycle status of a template check.
type CheckStatus string

const (
	StatusPending  CheckStatus = "pending"
	StatusRunning  CheckStatus = "running"
	StatusDone     CheckStatus = "done"
	StatusFailed   CheckStatus = "failed"
	StatusCanceled CheckStatus = "canceled"
)

// Gate is the submission gate shown to the template editor UI.
type Gate string

const (
	GateAllow Gate = "allow" // Submit freely
	GateWarn  Gate = "warn"  // Submit allowed, show the advisory
	GateBlock Gate = "block" // Submission must be blocked
)

// HistorySource records what triggered a binding change.
type HistorySource string

const (
	SourceAuto    HistorySource = "auto"    // Automatic check
	SourceRecheck HistorySource = "recheck" // Bulk re-check
	SourceReview  HistorySource = "review"  // Human review verdict
	SourceAppeal  HistorySource = "appeal"  // Submitter appeal
)

// Default configuration values
const (
	DefaultComponentMergeMaxLen    = 1800
	DefaultComponentMergeSeparator = "\n---\n"
	DefaultAsyncPollInterval       = 5  // seconds
	DefaultAsyncPollTimeout        = 60 // seconds
)
