// Package aliyun provides Alibaba Cloud content moderation for template text
// and header media.
package aliyun

import (
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
)

// Config holds the configuration for the Aliyun checker.
type Config struct {
	checkers.CheckerConfig

	// TextService is the Green SDK text service to call. Template text is
	// user-facing broadcast copy, so the default is the chat service.
	TextService string

	// CallbackURL is the URL for async callback notifications.
	CallbackURL string

	// CallbackSeed is the secret for callback signature verification.
	CallbackSeed string
}

// DefaultConfig returns the default Aliyun configuration.
func DefaultConfig() Config {
	return Config{
		CheckerConfig: checkers.CheckerConfig{
			Region:   "cn-shanghai",
			Endpoint: "green.cn-shanghai.aliyuncs.com",
			Timeout:  30 * time.Second,
		},
		TextService: "chat_detection",
	}
}

// Aliyun label mappings, based on the Green SDK label documentation.
var labelMappings = map[string]checkers.LabelMapping{
	// Pornography and sexual content
	"porn":           {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"sexy":           {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},
	"sexual":         {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"nudity":         {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"partial_nudity": {Type: waguard.ViolationAdultContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},

	// Violence and prohibited goods
	"violence":   {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"terrorism":  {Type: waguard.ViolationProhibitedContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"contraband": {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"drug":       {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"weapon":     {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"gambling":   {Type: waguard.ViolationIllegalContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},

	// Fraud
	"fraud":               {Type: waguard.ViolationFraudContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"illegal_transaction": {Type: waguard.ViolationFraudContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},

	// Abuse
	"abuse":  {Type: waguard.ViolationAbusiveContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},
	"insult": {Type: waguard.ViolationAbusiveContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.9},
	"hate":   {Type: waguard.ViolationAbusiveContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},
	"threat": {Type: waguard.ViolationAbusiveContent, Severity: waguard.SeverityError, Decision: waguard.DecisionBlock, Confidence: 0.9},

	// Spam and ads
	"spam":         {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.8},
	"ad":           {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityInfo, Decision: waguard.DecisionReview, Confidence: 0.8},
	"qrcode":       {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.8},
	"contact_info": {Type: waguard.ViolationPrivacyContent, Severity: waguard.SeverityWarning, Decision: waguard.DecisionReview, Confidence: 0.8},
	"meaningless":  {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityInfo, Decision: waguard.DecisionReview, Confidence: 0.7},
	"flood":        {Type: waguard.ViolationSpamContent, Severity: waguard.SeverityInfo, Decision: waguard.DecisionReview, Confidence: 0.7},
}

func newTranslator() checkers.Translator {
	return checkers.NewBaseTranslator(checkerName, labelMappings)
}
