package waguard

import (
	"time"
)

// Button is a call-to-action button attached to a template.
type Button struct {
	Type string `json:"type"` // QUICK_REPLY / URL / PHONE_NUMBER
	Text string `json:"text"` // Button label
	URL  string `json:"url"`  // Target URL for URL buttons
}

// Template is a WhatsApp message template as edited by the user.
type Template struct {
	Name            string    `json:"name"`
	Language        string    `json:"language"`
	Category        Category  `json:"category"`
	Header          string    `json:"header"` // Text header (empty for media headers)
	Body            string    `json:"body"`
	Footer          string    `json:"footer"`
	Buttons         []Button  `json:"buttons"`
	HeaderMediaType MediaType `json:"header_media_type"`
	HeaderMediaURL  string    `json:"header_media_url"`
}

// TemplateContext carries the business context of a template check.
type TemplateContext struct {
	TemplateName string    `json:"template_name"`
	Language     string    `json:"language"`
	Category     Category  `json:"category"`
	SubmitterID  string    `json:"submitter_id"` // Who edited/submitted the template
	TraceID      string    `json:"trace_id"`     // Request trace ID for debugging
	CreatedAt    time.Time `json:"created_at"`
}

// Content is a single piece of template content handed to a safety checker.
type Content struct {
	ContentID   string      `json:"content_id"`
	Kind        ContentKind `json:"kind"`
	Text        string      `json:"text"`         // Text content (for text kind)
	URL         string      `json:"url"`          // Media URL (for image/video kind)
	ContentHash string      `json:"content_hash"` // Hash for deduplication
	Location    Location    `json:"location"`     // Which template part this is
}

// CategoryScores holds independent, non-normalized confidence per category.
// Each score is an integer clamped to [0, 100]; scores need not sum to 100.
type CategoryScores struct {
	Utility        int `json:"utility"`
	Marketing      int `json:"marketing"`
	Authentication int `json:"authentication"`
}

// Violation is a diagnostic finding about a template. It is collected, never
// raised as an error.
type Violation struct {
	Type     ViolationType `json:"type"`
	Detail   string        `json:"detail"`
	Location Location      `json:"location"`
	Severity Severity      `json:"severity"`
}

// IntentResult is the output of scoring template text.
type IntentResult struct {
	Intent            Intent         `json:"intent"`
	Confidence        Confidence     `json:"confidence"`
	Scores            CategoryScores `json:"scores"`
	Violations        []Violation    `json:"violations"`
	SuggestedCategory Category       `json:"suggested_category,omitempty"` // Empty when no suggestion
	Badge             Badge          `json:"confidence_badge"`
	UserMessage       string         `json:"user_message"`
}

// ComplianceResult is the output of validating a declared category against
// the detected intent. Advisory only: the caller decides whether to block
// submission based on IsCompliant and AllowUserOverride.
type ComplianceResult struct {
	IsCompliant       bool           `json:"is_compliant"`
	Violations        []Violation    `json:"violations"`
	DetectedIntent    Intent         `json:"detected_intent"`
	Scores            CategoryScores `json:"scores"`
	Badge             Badge          `json:"confidence_badge"`
	Message           string         `json:"message,omitempty"`
	UserMessage       string         `json:"user_message"`
	SuggestSwitch     bool           `json:"suggest_switch,omitempty"`
	SuggestedCategory Category       `json:"suggested_category,omitempty"`
	AllowUserOverride bool           `json:"allow_user_override"`
}

// BadgeStyle is the display style for a confidence badge.
type BadgeStyle struct {
	Color   string `json:"color"`
	BgColor string `json:"bg_color"`
	Label   string `json:"label"`
}

// Finding is a single safety finding from a checker.
type Finding struct {
	Code    string         `json:"code"`     // Checker label / finding code
	Message string         `json:"message"`  // Human-readable message
	Checker string         `json:"checker"`  // Which checker produced this
	HitTags []string       `json:"hit_tags"` // Tags that were hit
	Raw     map[string]any `json:"raw"`      // Raw checker response (trimmed)
}

// SafetyResult is the result from a single checker.
type SafetyResult struct {
	Decision   Decision  `json:"decision"`   // pass/review/block/error
	Confidence float64   `json:"confidence"` // Confidence score (0-1)
	Findings   []Finding `json:"findings"`   // Findings behind the decision
	Checker    string    `json:"checker"`    // Checker name
	CheckedAt  time.Time `json:"checked_at"` // When the check completed
}

// CheckOutcome is the aggregated outcome of a template check.
type CheckOutcome struct {
	Gate       Gate             `json:"gate"`
	Compliance ComplianceResult `json:"compliance"`
	Safety     Decision         `json:"safety"`     // Merged safety decision
	Violations []Violation      `json:"violations"` // Compliance + translated safety violations
	Findings   []Finding        `json:"findings"`   // Raw checker findings
}

// TemplateCheck is the persisted audit record for one check run.
type TemplateCheck struct {
	ID           string      `json:"id" db:"id"`
	TemplateName string      `json:"template_name" db:"template_name"`
	Language     string      `json:"language" db:"language"`
	Category     Category    `json:"category" db:"category"`
	SubmitterID  string      `json:"submitter_id" db:"submitter_id"`
	TraceID      string      `json:"trace_id" db:"trace_id"`
	ContentHash  string      `json:"content_hash" db:"content_hash"`
	Gate         Gate        `json:"gate" db:"gate"`
	Status       CheckStatus `json:"status" db:"status"`
	OutcomeJSON  string      `json:"outcome_json" db:"outcome_json"`
	CreatedAt    int64       `json:"created_at" db:"created_at"`
	UpdatedAt    int64       `json:"updated_at" db:"updated_at"`
}

// CheckerTask is a task submitted to a safety checker.
type CheckerTask struct {
	ID           string `json:"id" db:"id"`
	CheckID      string `json:"check_id" db:"check_id"`
	Checker      string `json:"checker" db:"checker"`
	Mode         string `json:"mode" db:"mode"` // sync/async
	RemoteTaskID string `json:"remote_task_id" db:"remote_task_id"`
	Done         bool   `json:"done" db:"done"`
	ResultJSON   string `json:"result_json" db:"result_json"`
	RawJSON      string `json:"raw_json" db:"raw_json"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	UpdatedAt    int64  `json:"updated_at" db:"updated_at"`
}

// ViolationSnapshot stores the evidence for a flagged template.
type ViolationSnapshot struct {
	ID           string `json:"id" db:"id"`
	TemplateName string `json:"template_name" db:"template_name"`
	Language     string `json:"language" db:"language"`
	SubmitterID  string `json:"submitter_id" db:"submitter_id"`
	ContentHash  string `json:"content_hash" db:"content_hash"`
	BodyText     string `json:"body_text" db:"body_text"`
	OutcomeJSON  string `json:"outcome_json" db:"outcome_json"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
}

// TemplateBinding is the current verdict binding for a template identity
// (name + language). It tracks the latest gate for the latest content hash.
type TemplateBinding struct {
	ID             string `json:"id" db:"id"`
	TemplateName   string `json:"template_name" db:"template_name"`
	Language       string `json:"language" db:"language"`
	Category       string `json:"category" db:"category"`
	ContentHash    string `json:"content_hash" db:"content_hash"`
	CheckID        string `json:"check_id" db:"check_id"`
	Gate           string `json:"gate" db:"gate"`
	ViolationRefID string `json:"violation_ref_id" db:"violation_ref_id"`
	CheckRevision  int    `json:"check_revision" db:"check_revision"`
	UpdatedAt      int64  `json:"updated_at" db:"updated_at"`
}

// TemplateBindingHistory records historical binding changes.
type TemplateBindingHistory struct {
	ID             string `json:"id" db:"id"`
	TemplateName   string `json:"template_name" db:"template_name"`
	Language       string `json:"language" db:"language"`
	Category       string `json:"category" db:"category"`
	ContentHash    string `json:"content_hash" db:"content_hash"`
	Gate           string `json:"gate" db:"gate"`
	ViolationRefID string `json:"violation_ref_id" db:"violation_ref_id"`
	CheckRevision  int    `json:"check_revision" db:"check_revision"`
	ReasonJSON     string `json:"reason_json" db:"reason_json"`
	Source         string `json:"source" db:"source"`           // auto/recheck/review/appeal
	ReviewerID     string `json:"reviewer_id" db:"reviewer_id"` // Who decided (for human review)
	Comment        string `json:"comment" db:"comment"`
	CreatedAt      int64  `json:"created_at" db:"created_at"`
}

// ComponentMergeStrategy defines how template text components are merged into
// one checker request.
type ComponentMergeStrategy struct {
	MaxLen    int    // Maximum length for merged text
	Separator string // Separator between merged components
}

// PendingTask is an async checker task waiting for a result.
type PendingTask struct {
	CheckerTaskID string `json:"checker_task_id" db:"id"`
	Checker       string `json:"checker" db:"checker"`
	RemoteTaskID  string `json:"remote_task_id" db:"remote_task_id"`
}
