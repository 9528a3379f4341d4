// Package validate implements the pluggable validation engine:
// severity-tagged issues produced by a fixed, deterministically
// ordered set of rules over the data model. It is grounded on the
// Validator-interface-plus-registry shape used throughout the example
// pack's validators (one type per concern, a constructor, a single
// entry-point method), adapted here from file-scanning matches to
// metadata-model issues.
package validate

import (
	"fmt"

	"github.com/atelier-socle/audiomarker/model"
)

// Severity classifies an Issue's impact on ValidationResult.IsValid.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single validation finding.
type Issue struct {
	Rule     string
	Severity Severity
	Message  string
	Context  string
}

func (i Issue) String() string {
	if i.Context != "" {
		return fmt.Sprintf("[%s] %s: %s (%s)", i.Severity, i.Rule, i.Message, i.Context)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Rule, i.Message)
}

// ValidationResult aggregates every issue a Run produced.
type ValidationResult struct {
	Issues []Issue
}

// IsValid reports whether no error-severity issue is present.
func (r ValidationResult) IsValid() bool {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns only the error-severity issues.
func (r ValidationResult) Errors() []Issue {
	var out []Issue
	for _, iss := range r.Issues {
		if iss.Severity == SeverityError {
			out = append(out, iss)
		}
	}
	return out
}

// Warnings returns only the warning-severity issues.
func (r ValidationResult) Warnings() []Issue {
	var out []Issue
	for _, iss := range r.Issues {
		if iss.Severity == SeverityWarning {
			out = append(out, iss)
		}
	}
	return out
}

// Rule is a single named validation check over the data model.
type Rule interface {
	Name() string
	Validate(info model.AudioFileInfo) []Issue
}

// DefaultRules returns the ten built-in rules, in the fixed order
// Run executes them in.
func DefaultRules() []Rule {
	return []Rule{
		chapterOrderRule{},
		chapterOverlapRule{},
		chapterTitleRule{},
		chapterBoundsRule{},
		chapterNonNegativeRule{},
		metadataTitleRule{},
		metadataYearRule{currentYear: currentYearFn},
		artworkFormatRule{},
		languageCodeRule{},
		ratingRangeRule{},
	}
}

// Run executes rules sequentially, in order, collecting every issue
// they produce.
func Run(info model.AudioFileInfo, rules []Rule) ValidationResult {
	var result ValidationResult
	for _, r := range rules {
		result.Issues = append(result.Issues, r.Validate(info)...)
	}
	return result
}
