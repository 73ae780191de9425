// Package policy computes the submission gate for template checks.
package policy

import (
	waguard "github.com/sociovia/waguard"
)

// Policy defines how strictly check results gate template submission.
type Policy string

const (
	// PolicyStrict blocks submission on hard violations and safety blocks.
	PolicyStrict Policy = "strict"

	// PolicyAdvisory blocks only on safety blocks and hard platform rules;
	// category mismatches warn.
	PolicyAdvisory Policy = "advisory"

	// PolicyPermissive never blocks, it only warns. For internal tooling
	// where a human makes the final call.
	PolicyPermissive Policy = "permissive"
)

// SubmitterRole represents who is submitting the template.
type SubmitterRole string

const (
	RoleEditor SubmitterRole = "editor" // Template editor in the dashboard
	RoleAdmin  SubmitterRole = "admin"  // Administrator, may override blocks
	RoleSystem SubmitterRole = "system" // Automated re-submission
)

// CategoryPolicyRegistry maps template categories to their gate policies.
// Authentication templates carry OTPs and get the strictest treatment.
var CategoryPolicyRegistry = map[waguard.Category]Policy{
	waguard.CategoryAuthentication: PolicyStrict,
	waguard.CategoryUtility:        PolicyAdvisory,
	waguard.CategoryMarketing:      PolicyAdvisory,
}

// GetPolicy returns the gate policy for a template category.
func GetPolicy(category waguard.Category) Policy {
	if policy, ok := CategoryPolicyRegistry[category]; ok {
		return policy
	}
	return PolicyStrict // Default to strictest
}

// SetPolicy sets a custom gate policy for a template category.
func SetPolicy(category waguard.Category, policy Policy) {
	CategoryPolicyRegistry[category] = policy
}

// ViolationSummary aggregates violation counts by severity.
type ViolationSummary struct {
	ErrorCount   int
	WarningCount int
	InfoCount    int
	Total        int
}

// Summarize computes a violation summary.
func Summarize(violations []waguard.Violation) ViolationSummary {
	summary := ViolationSummary{Total: len(violations)}

	for _, v := range violations {
		switch v.Severity {
		case waguard.SeverityError:
			summary.ErrorCount++
		case waguard.SeverityWarning:
			summary.WarningCount++
		case waguard.SeverityInfo:
			summary.InfoCount++
		}
	}

	return summary
}

// ComputeGate derives the submission gate from the compliance result and the
// merged safety decision.
func ComputeGate(policy Policy, compliance waguard.ComplianceResult, safety waguard.Decision) waguard.Gate {
	// Safety blocks are platform policy, not category advice.
	if safety == waguard.DecisionBlock {
		if policy == PolicyPermissive {
			return waguard.GateWarn
		}
		return waguard.GateBlock
	}

	// Hard compliance failures, e.g. buttons on an authentication template.
	if !compliance.IsCompliant && !compliance.AllowUserOverride {
		if policy == PolicyPermissive {
			return waguard.GateWarn
		}
		return waguard.GateBlock
	}

	// Soft failures and unresolved safety checks warn.
	if !compliance.IsCompliant {
		return waguard.GateWarn
	}
	switch safety {
	case waguard.DecisionReview, waguard.DecisionError, waguard.DecisionPending:
		return waguard.GateWarn
	}

	// Compliant with advisory violations still warns the editor.
	if Summarize(compliance.Violations).WarningCount > 0 {
		return waguard.GateWarn
	}

	return waguard.GateAllow
}

// CanSubmit determines if a submitter may proceed given the gate.
func CanSubmit(gate waguard.Gate, role SubmitterRole) bool {
	// Admins may override any gate.
	if role == RoleAdmin {
		return true
	}

	switch gate {
	case waguard.GateAllow, waguard.GateWarn:
		return true
	case waguard.GateBlock:
		return false
	default:
		return false
	}
}
