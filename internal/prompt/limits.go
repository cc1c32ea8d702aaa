package prompt

import "fmt"

// Hard per-field length limits, in characters. They are both enforced on
// normalized responses (truncation) and printed into every prompt so the
// model knows the budget up front.
const (
	MaxMessageLen        = 1400
	MaxReasonLen         = 300
	MaxNoteLen           = 300
	MaxRationaleLen      = 400
	MaxTitleLen          = 120
	MaxMotionTextLen     = 1600
	MaxDecisionLen       = 500
	MaxSummaryLen        = 6000
	MaxResolutionLen     = 800
	MaxExecutionBriefLen = 2000
	MaxBlockerFieldLen   = 400
)

// fieldLimits drives the length table rendered into prompts.
var fieldLimits = []struct {
	Field string
	Max   int
}{
	{"message", MaxMessageLen},
	{"reason", MaxReasonLen},
	{"note", MaxNoteLen},
	{"rationale", MaxRationaleLen},
	{"title", MaxTitleLen},
	{"text", MaxMotionTextLen},
	{"decisionIfPass", MaxDecisionLen},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func renderLengthTable() string {
	out := "Hard length limits (characters):\n"
	for _, fl := range fieldLimits {
		out += fmt.Sprintf("  %s: %d\n", fl.Field, fl.Max)
	}
	return out
}
