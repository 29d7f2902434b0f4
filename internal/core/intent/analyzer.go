// Package intent contains the pure intent and impact classification
// for change requests, including risk assembly, approach ranking, and
// the escalation decision. This is part of the Functional Core - no
// I/O, only pure functions.
package intent

import (
	"strings"

	"github.com/example/mender/internal/core/classify"
)

// Intent is the purpose of a change request.
type Intent string

const (
	IntentCorrection   Intent = "correction"
	IntentCreation     Intent = "creation"
	IntentModification Intent = "modification"
	IntentOptimization Intent = "optimization"
	IntentValidation   Intent = "validation"
	IntentOperational  Intent = "operational"
)

// Impact is the blast radius of a change request.
type Impact string

const (
	ImpactStructural Impact = "structural"
	ImpactBehavioral Impact = "behavioral"
	ImpactRegressive Impact = "regressive"
	ImpactExpansive  Impact = "expansive"
)

// EscalationReason explains why a request must go to a human.
type EscalationReason string

const (
	ReasonBusinessDecision        EscalationReason = "business_decision"
	ReasonFunctionalAmbiguity     EscalationReason = "functional_ambiguity"
	ReasonMissingContext          EscalationReason = "missing_context"
	ReasonBroadImpact             EscalationReason = "broad_impact"
	ReasonArchitecturalJudgment   EscalationReason = "architectural_judgment"
	ReasonInsufficientInformation EscalationReason = "insufficient_information"
	ReasonMaxRetriesExceeded      EscalationReason = "max_retries_exceeded"
)

// DefaultMinContextLength is the minimum combined context length below
// which analysis escalates for insufficient information.
const DefaultMinContextLength = 100

// Risk is one identified hazard of a change request.
type Risk struct {
	Description string
	Critical    bool
}

// Approach is one candidate repair strategy with its safety ranking.
type Approach struct {
	Name        string
	Strategy    string
	SafetyScore int
}

// Keyword order matters: the first intent whose keywords match wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentCorrection, []string{"fix", "bug", "error", "broken", "fail", "crash", "wrong", "incorrect", "regression"}},
	{IntentCreation, []string{"add", "create", "new", "implement", "introduce", "build"}},
	{IntentModification, []string{"change", "modify", "update", "rename", "move", "adjust", "replace"}},
	{IntentOptimization, []string{"optimize", "speed up", "faster", "performance", "reduce memory", "efficient"}},
	{IntentValidation, []string{"test", "verify", "validate", "check", "assert", "coverage"}},
}

var architecturalKeywords = []string{
	"architecture", "refactor", "redesign", "restructure", "interface", "api contract", "module boundary", "dependency",
}

var businessKeywords = []string{
	"pricing", "billing", "revenue", "legal", "compliance", "policy", "contract terms", "customer commitment",
}

var databaseKeywords = []string{
	"database", "schema", "migration", "drop table", "alter table",
}

var securityKeywords = []string{
	"security", "auth", "password", "credential", "secret", "token", "encryption", "permission",
}

// ClassifyIntent maps instruction text to an intent. Defaults to
// operational when no keyword set matches.
func ClassifyIntent(instruction string) Intent {
	lower := strings.ToLower(instruction)
	for _, entry := range intentKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.intent
		}
	}
	return IntentOperational
}

// ParseIntent interprets an explicit intent hint. The second return is
// false when the hint names no known intent.
func ParseIntent(hint string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(hint))) {
	case IntentCorrection:
		return IntentCorrection, true
	case IntentCreation:
		return IntentCreation, true
	case IntentModification:
		return IntentModification, true
	case IntentOptimization:
		return IntentOptimization, true
	case IntentValidation:
		return IntentValidation, true
	case IntentOperational:
		return IntentOperational, true
	}
	return "", false
}

// ClassifyImpact derives the blast radius from the intent and the
// combined context. Architectural keywords force structural impact
// regardless of intent.
func ClassifyImpact(in Intent, combined string) Impact {
	if containsAny(strings.ToLower(combined), architecturalKeywords) {
		return ImpactStructural
	}

	switch in {
	case IntentCorrection:
		return ImpactRegressive
	case IntentCreation:
		return ImpactExpansive
	default:
		return ImpactBehavioral
	}
}

// BuildRisks assembles the risk list for an impact class and context.
// Database and security terms produce critical risks.
func BuildRisks(im Impact, combined string) []Risk {
	lower := strings.ToLower(combined)
	var risks []Risk

	switch im {
	case ImpactStructural:
		risks = append(risks, Risk{Description: "structural change may break public interfaces or downstream consumers"})
	case ImpactRegressive:
		risks = append(risks, Risk{Description: "fix may regress adjacent behavior covered by the same code path"})
	}

	if containsAny(lower, databaseKeywords) {
		risks = append(risks, Risk{Description: "touches database schema or stored data", Critical: true})
	}
	if containsAny(lower, securityKeywords) {
		risks = append(risks, Risk{Description: "touches security-sensitive code", Critical: true})
	}

	return risks
}

// HasCriticalRisk reports whether any risk is flagged critical.
func HasCriticalRisk(risks []Risk) bool {
	for _, r := range risks {
		if r.Critical {
			return true
		}
	}
	return false
}

// ExpectedImpact renders the lookup-table description for an impact.
func ExpectedImpact(im Impact) string {
	switch im {
	case ImpactStructural:
		return "changes the shape of the system: interfaces, module boundaries, or data contracts"
	case ImpactRegressive:
		return "restores intended behavior; risk concentrates on adjacent code paths"
	case ImpactExpansive:
		return "adds new behavior; existing behavior should be untouched"
	default:
		return "modifies existing behavior within current boundaries"
	}
}

// Motivation renders the canonical motivation text for an intent.
func Motivation(in Intent) string {
	switch in {
	case IntentCorrection:
		return "restore correct behavior"
	case IntentCreation:
		return "provide new capability"
	case IntentModification:
		return "adapt existing behavior to new requirements"
	case IntentOptimization:
		return "improve efficiency without changing behavior"
	case IntentValidation:
		return "increase confidence in existing behavior"
	default:
		return "keep the system operational"
	}
}

// Hypothesis renders the technical hypothesis for an intent.
func Hypothesis(in Intent) string {
	switch in {
	case IntentCorrection:
		return "minimal localized fix validated against existing tests"
	case IntentCreation:
		return "additive change behind existing interfaces, new tests alongside"
	case IntentOptimization:
		return "hot-path change guarded by behavior-preserving tests"
	case IntentValidation:
		return "new assertions over unchanged production code"
	default:
		return "scoped edit with the validation suite as the safety net"
	}
}

// ProposeApproaches lists the candidate strategies for an intent. The
// minimal-change approach is always present.
func ProposeApproaches(in Intent) []Approach {
	approaches := []Approach{
		{Name: "minimal change", Strategy: "smallest edit that addresses the evidence", SafetyScore: 9},
	}
	switch in {
	case IntentCorrection:
		approaches = append(approaches, Approach{Name: "comprehensive fix", Strategy: "fix the root cause and harden the surrounding path", SafetyScore: 7})
	case IntentCreation:
		approaches = append(approaches, Approach{Name: "incremental addition", Strategy: "land the capability in small reviewable steps", SafetyScore: 8})
	}
	return approaches
}

// SelectApproach picks the highest safety score; ties break by list
// order, first wins.
func SelectApproach(approaches []Approach) Approach {
	if len(approaches) == 0 {
		return Approach{}
	}
	best := approaches[0]
	for _, a := range approaches[1:] {
		if a.SafetyScore > best.SafetyScore {
			best = a
		}
	}
	return best
}

// DecideEscalation evaluates the escalation rules in fixed priority
// order; the first rule that fires wins. Ambiguity defaults toward
// escalation, never toward silent auto-fixing.
func DecideEscalation(im Impact, risks []Risk, combined string, minContextLength int) (bool, EscalationReason) {
	if minContextLength <= 0 {
		minContextLength = DefaultMinContextLength
	}
	lower := strings.ToLower(combined)

	if containsAny(lower, businessKeywords) {
		return true, ReasonBusinessDecision
	}
	if im == ImpactStructural && containsAny(lower, architecturalKeywords) {
		return true, ReasonArchitecturalJudgment
	}
	if HasCriticalRisk(risks) {
		return true, ReasonBroadImpact
	}
	if classify.ContainsInfrastructurePattern(combined) {
		return true, ReasonMissingContext
	}
	if len(combined) < minContextLength {
		return true, ReasonInsufficientInformation
	}
	return false, ""
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
