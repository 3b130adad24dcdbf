// Package concordance compares two independently generated answers for
// agreement on safety-relevant content and for alignment with the patient's
// Care Plan Directives.
//
// The heuristic is deliberately deterministic and lexicon-based: each output
// is scanned for a closed set of safety topics (medication changes, dose
// adjustments, seeking care, skipping meals, stopping exercise) and assigned
// a stance per topic: advises it, advises against it, or silent. Two outputs
// taking opposite stances on any topic is a safety disagreement. An output
// advising a change that a standing directive covers is a directive conflict,
// which is treated as safety-relevant as well. Absent conflicts, agreement is
// graded by content-word overlap.
package concordance

import (
	"regexp"
	"strings"

	"ai-caresupervisor-be/pkg/careplan"
	"ai-caresupervisor-be/pkg/toolselect"
)

// Verdict of a concordance comparison.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictConcerns Verdict = "concerns"
	VerdictRejected Verdict = "rejected"
)

// Report explains the verdict. Conflict slices carry topic ids only, safe to
// log.
type Report struct {
	Verdict            Verdict
	SafetyConflicts    []string
	DirectiveConflicts []string
	Similarity         float64
}

type stance int

const (
	stanceSilent stance = iota
	stanceFor
	stanceAgainst
)

type topic struct {
	id        string
	pattern   *regexp.Regexp
	directive func(d *careplan.Directives) string
}

func safetyTopics() []topic {
	return []topic{
		{
			id:        "stop-medication",
			pattern:   regexp.MustCompile(`(?i)(stop|quit|discontinue|skip)\w*\s+(taking\s+)?(the\s+|your\s+)?(medication|medicine|meds|pills)`),
			directive: func(d *careplan.Directives) string { return d.Medication },
		},
		{
			id:        "adjust-dose",
			pattern:   regexp.MustCompile(`(?i)(double|increase|decrease|reduce|halve|lower)\s+(the\s+|your\s+)?(dose|dosage)`),
			directive: func(d *careplan.Directives) string { return d.Medication },
		},
		{
			id:      "seek-care",
			pattern: regexp.MustCompile(`(?i)(see|call|contact|visit)\s+(a|your)\s+(doctor|physician|clinician|provider)|seek (urgent\s+)?medical|go to (the\s+)?(er|hospital|emergency)`),
		},
		{
			id:        "skip-meals",
			pattern:   regexp.MustCompile(`(?i)(skip|stop)\w*\s+(eating|meals|breakfast|lunch|dinner)|fast\w*\s+for`),
			directive: func(d *careplan.Directives) string { return d.Diet },
		},
		{
			id:        "stop-exercise",
			pattern:   regexp.MustCompile(`(?i)(stop|avoid|pause)\s+(all\s+)?(exercis\w+|working out|physical activity)`),
			directive: func(d *careplan.Directives) string { return d.Exercise },
		},
	}
}

// negation immediately preceding a topic phrase flips its stance, e.g.
// "do not stop taking your medication".
var negation = regexp.MustCompile(`(?i)(don'?t|do not|never|no need to|not necessary to|should(n'?t| not)|avoid\w*\s+\w+ing to)\s*$`)

// Checker holds the compiled topic lexicon and the similarity threshold used
// to split approved from concerns when no conflict exists.
type Checker struct {
	topics       []topic
	simThreshold float64
}

func NewChecker(simThreshold float64) *Checker {
	if simThreshold <= 0 {
		simThreshold = 0.3
	}
	return &Checker{
		topics:       safetyTopics(),
		simThreshold: simThreshold,
	}
}

// Compare grades agreement between two outputs in the light of the patient's
// directives. Any safety disagreement or directive conflict yields
// VerdictRejected; callers must then discard both outputs.
func (c *Checker) Compare(primary, secondary string, directives *careplan.Directives) Report {
	report := Report{Similarity: similarity(primary, secondary)}

	for _, t := range c.topics {
		p := c.stanceOf(primary, t)
		s := c.stanceOf(secondary, t)

		if p != stanceSilent && s != stanceSilent && p != s {
			report.SafetyConflicts = append(report.SafetyConflicts, t.id)
		}

		if directives != nil && t.directive != nil && t.directive(directives) != "" {
			if p == stanceFor || s == stanceFor {
				report.DirectiveConflicts = append(report.DirectiveConflicts, t.id)
			}
		}
	}

	switch {
	case len(report.SafetyConflicts) > 0 || len(report.DirectiveConflicts) > 0:
		report.Verdict = VerdictRejected
	case report.Similarity >= c.simThreshold:
		report.Verdict = VerdictApproved
	default:
		report.Verdict = VerdictConcerns
	}
	return report
}

func (c *Checker) stanceOf(text string, t topic) stance {
	loc := t.pattern.FindStringIndex(text)
	if loc == nil {
		return stanceSilent
	}

	prefix := text[:loc[0]]
	if len(prefix) > 40 {
		prefix = prefix[len(prefix)-40:]
	}
	if negation.MatchString(strings.TrimRight(prefix, " ")) {
		return stanceAgainst
	}
	return stanceFor
}

// similarity is the Jaccard index over content-word keyword sets.
func similarity(a, b string) float64 {
	ka := toolselect.Keywords(a)
	kb := toolselect.Keywords(b)
	if len(ka) == 0 && len(kb) == 0 {
		return 1
	}

	intersection := 0
	for word := range ka {
		if kb[word] {
			intersection++
		}
	}
	union := len(ka) + len(kb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
