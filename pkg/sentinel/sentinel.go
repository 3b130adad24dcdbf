package sentinel

// Signal is the classification derived fresh for every turn. It reflects the
// wording of the current redacted text only and is never cached across turns.
type Signal struct {
	Severity       Severity
	MatchedRuleIDs []string
}

// Classifier evaluates redacted text against the critical and warning rule
// tables. Classification is synchronous, deterministic, and has no network
// dependency: it must complete before any provider call is even considered.
type Classifier struct {
	critical []Rule
	warning  []Rule
}

func NewClassifier() *Classifier {
	return &Classifier{
		critical: CriticalRules(),
		warning:  WarningRules(),
	}
}

func NewClassifierWithRules(critical, warning []Rule) *Classifier {
	return &Classifier{critical: critical, warning: warning}
}

// Classify runs the rule tables in order. The first critical match wins
// outright and terminates evaluation; absent a critical match, every matching
// warning rule is collected.
//
// Callers must pass redacted text, never raw input.
func (c *Classifier) Classify(redactedText string) Signal {
	for _, rule := range c.critical {
		if rule.Pattern.MatchString(redactedText) {
			return Signal{
				Severity:       SeverityCritical,
				MatchedRuleIDs: []string{rule.ID},
			}
		}
	}

	var matched []string
	for _, rule := range c.warning {
		if rule.Pattern.MatchString(redactedText) {
			matched = append(matched, rule.ID)
		}
	}
	if len(matched) > 0 {
		return Signal{Severity: SeverityWarning, MatchedRuleIDs: matched}
	}

	return Signal{Severity: SeverityNone}
}
