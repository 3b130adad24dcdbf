package pipeline

import "regexp"

// lowConfidencePattern catches a primary output hedging about its own answer.
// Such an answer escalates the turn into cross-validation instead of being
// returned unchecked.
var lowConfidencePattern = regexp.MustCompile(`(?i)\b(i'?m not sure|i am not sure|not (entirely|fully) (sure|certain)|uncertain|cannot determine|can'?t say for certain|unable to (answer|determine)|low confidence|i don'?t have enough information)\b`)

// LowConfidence reports whether a model output flags itself as uncertain.
func LowConfidence(output string) bool {
	return lowConfidencePattern.MatchString(output)
}
