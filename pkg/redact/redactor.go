package redact

import (
	"fmt"
	"regexp"
	"sync/atomic"
)

// Result holds the outcome of one redaction pass. The placeholder map lives
// only in memory for the duration of the turn: it is never persisted and
// never logged with values. Callers log MatchCount only.
type Result struct {
	RedactedText string
	Placeholders map[string]string // placeholder -> original span
	MatchCount   int
}

// Rule is one ordered pattern rule. Type becomes the placeholder prefix,
// e.g. "EMAIL" -> [EMAIL_1].
type Rule struct {
	Type    string
	Pattern *regexp.Regexp
}

// DefaultRules returns the ordered rule list for identifying health
// information. Order matters: email runs before phone so that digits inside
// an address-like token are not misread, and none of the patterns can match
// an already-substituted placeholder, which makes redaction idempotent.
func DefaultRules() []Rule {
	return []Rule{
		{Type: "EMAIL", Pattern: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
		{Type: "MRN", Pattern: regexp.MustCompile(`(?i)\b(?:mrn|medical record(?: number)?|record #?)[:#\s]*\d{5,12}\b`)},
		{Type: "DOB", Pattern: regexp.MustCompile(`(?i)\b(?:dob|date of birth|born(?: on)?)[:\s]*\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)},
		{Type: "DOB", Pattern: regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.](?:19|20)\d{2}\b`)},
		{Type: "PHONE", Pattern: regexp.MustCompile(`(?:\+?\d{1,2}[\s\-.]?)?\(?\d{3}\)?[\s\-.]?\d{3}[\s\-.]\d{4}\b|\b\d{10}\b`)},
		{Type: "ADDRESS", Pattern: regexp.MustCompile(`(?i)\b\d{1,5}\s+[a-z][a-z\s]{1,30}?\s(?:street|st|avenue|ave|road|rd|drive|dr|lane|ln|boulevard|blvd|court|ct|way|place|pl)\.?\b(?:,?\s*(?:apt|unit|suite)\.?\s*\w+)?`)},
	}
}

// Redactor removes identifying spans from raw text before anything crosses
// the trust boundary. It is safe for concurrent use; the audit counter only
// ever records counts, never content.
type Redactor struct {
	rules []Rule
	total atomic.Int64
}

func New() *Redactor {
	return &Redactor{rules: DefaultRules()}
}

func NewWithRules(rules []Rule) *Redactor {
	return &Redactor{rules: rules}
}

// Redact applies every rule in order, replacing each match with a typed
// placeholder and recording the original span in the result's placeholder
// map. Placeholders are numbered per type within a single pass.
func (r *Redactor) Redact(text string) *Result {
	result := &Result{
		RedactedText: text,
		Placeholders: make(map[string]string),
	}

	counters := make(map[string]int)
	for _, rule := range r.rules {
		result.RedactedText = rule.Pattern.ReplaceAllStringFunc(result.RedactedText, func(match string) string {
			counters[rule.Type]++
			placeholder := fmt.Sprintf("[%s_%d]", rule.Type, counters[rule.Type])
			result.Placeholders[placeholder] = match
			result.MatchCount++
			return placeholder
		})
	}

	r.total.Add(int64(result.MatchCount))
	return result
}

// TotalRedactions reports the process-lifetime audit counter.
func (r *Redactor) TotalRedactions() int64 {
	return r.total.Load()
}
