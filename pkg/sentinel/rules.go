package sentinel

import "regexp"

// Severity of an emergency classification.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// RulesVersion identifies the rule table currently compiled in. Bump it
// whenever a rule is added, removed, or reworded so audit logs can attribute
// a classification to the exact table that produced it.
const RulesVersion = "2025-08.1"

// Rule is one declarative classification rule. Rules are evaluated in
// declaration order; the first critical match wins outright.
type Rule struct {
	ID       string
	Severity Severity
	Pattern  *regexp.Regexp
}

// CriticalRules covers suicidal ideation, self-harm, acute medical
// emergencies, and explicit emergency-service requests.
func CriticalRules() []Rule {
	return []Rule{
		{ID: "crit-suicide", Severity: SeverityCritical,
			Pattern: regexp.MustCompile(`(?i)\b(kill(ing)? myself|end(ing)? my life|suicid\w*|want(ing)? to die|take my own life|better off dead)\b`)},
		{ID: "crit-self-harm", Severity: SeverityCritical,
			Pattern: regexp.MustCompile(`(?i)\b(hurt(ing)? myself|harm(ing)? myself|self[\s-]?harm|cut(ting)? myself)\b`)},
		{ID: "crit-overdose", Severity: SeverityCritical,
			Pattern: regexp.MustCompile(`(?i)\b(overdos\w*|took too many (pills|tablets)|swallowed .{0,30}(pills|tablets))\b`)},
		{ID: "crit-acute-medical", Severity: SeverityCritical,
			Pattern: regexp.MustCompile(`(?i)\b(chest pain|can'?t breathe|cannot breathe|difficulty breathing|heart attack|having a stroke|losing consciousness)\b`)},
		{ID: "crit-emergency-request", Severity: SeverityCritical,
			Pattern: regexp.MustCompile(`(?i)\b(call 911|dial 911|\b911\b|need an ambulance|emergency room|this is an emergency)\b`)},
	}
}

// WarningRules covers severe distress, panic, and unmanaged pain indicators.
// A warning match forces mandatory dual-model validation downstream.
func WarningRules() []Rule {
	return []Rule{
		{ID: "warn-distress", Severity: SeverityWarning,
			Pattern: regexp.MustCompile(`(?i)\b(hopeless|worthless|can'?t (cope|go on)|falling apart|breaking down|giving up)\b`)},
		{ID: "warn-panic", Severity: SeverityWarning,
			Pattern: regexp.MustCompile(`(?i)\b(panic(king)? attack|panicking|anxiety attack|terrified|scared all the time)\b`)},
		{ID: "warn-stress", Severity: SeverityWarning,
			Pattern: regexp.MustCompile(`(?i)\b(stressed( out)?|overwhelmed|under (a lot of|so much) (stress|pressure)|burn(ed|t) out)\b`)},
		{ID: "warn-pain", Severity: SeverityWarning,
			Pattern: regexp.MustCompile(`(?i)\b(unbearable pain|pain (is|got) worse|pain won'?t stop|severe pain|constant pain)\b`)},
	}
}
