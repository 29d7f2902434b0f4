// Package classify contains the pure classification logic for failure
// evidence. This is part of the Functional Core - no I/O, only pure
// functions.
package classify

import "strings"

// Category is the classification of a piece of failure evidence.
type Category string

const (
	// CategoryAutoFixable marks errors judged safe for automatic repair.
	CategoryAutoFixable Category = "auto_fixable"
	// CategoryInfrastructure marks timeouts, connection failures and
	// 5xx/429 responses. Never auto-repaired.
	CategoryInfrastructure Category = "infrastructure"
	// CategoryUnidentified marks evidence matching no known pattern.
	CategoryUnidentified Category = "unidentified"
)

// Result is the outcome of classifying one piece of evidence.
type Result struct {
	Category       Category
	MatchedPattern string
}

// Pattern order is part of the public contract: first match wins, and
// auto-fixable patterns are checked strictly before infrastructure
// patterns. Evidence matching both lists classifies as auto-fixable.
var autoFixablePatterns = []string{
	"AssertionError",
	"ImportError",
	"NameError",
	"SyntaxError",
	"LogicError",
	"TypeError",
	"AttributeError",
	"ValueError",
}

var infrastructurePatterns = []string{
	"Timeout",
	"timed out",
	"ConnectionError",
	"Connection refused",
	"Connection reset",
	"HTTP 429",
	"429 Too Many Requests",
	"HTTP 500",
	"500 Internal Server Error",
	"HTTP 503",
	"503 Service Unavailable",
}

// Classify maps raw evidence text to a category and the pattern that
// matched. Matching is case-insensitive substring search over the
// ordered pattern lists.
func Classify(evidence string) Result {
	lower := strings.ToLower(evidence)

	for _, pattern := range autoFixablePatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return Result{Category: CategoryAutoFixable, MatchedPattern: pattern}
		}
	}

	for _, pattern := range infrastructurePatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return Result{Category: CategoryInfrastructure, MatchedPattern: pattern}
		}
	}

	return Result{Category: CategoryUnidentified}
}

// ContainsInfrastructurePattern reports whether any infrastructure
// pattern appears in the text. Used by the escalation rules, which
// treat infrastructure traces in context as missing-context evidence.
func ContainsInfrastructurePattern(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range infrastructurePatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
