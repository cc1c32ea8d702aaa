package memory

import "strings"

// bucket groups records of related kinds under one snapshot heading.
type bucket struct {
	title string
	kinds map[RecordKind]bool
	cap   int
}

var snapshotBuckets = []bucket{
	{"Constraints", map[RecordKind]bool{KindConstraint: true}, capConstraints},
	{"Decisions", map[RecordKind]bool{KindDecision: true, KindOutcome: true}, capDecisions},
	{"Risks & Assumptions", map[RecordKind]bool{KindRiskPattern: true, KindAssumption: true}, capRisks},
	{"Open Loops", map[RecordKind]bool{KindOpenLoop: true}, capOpenLoops},
	{"Preferences", map[RecordKind]bool{KindPreference: true}, capPreferences},
	{"Anti-Patterns", map[RecordKind]bool{KindLesson: true}, capAntiPatterns},
}

// derivePromptContext builds the bounded snapshot served to the member's
// next-session prompts. A record contributes only while active and while
// at least one of its evidence refs falls inside the most recent
// fadeWindowSessions sessions; older records stay on disk but fade from
// prompts.
func derivePromptContext(records []Record, recentSessions []string) string {
	window := recentSessions
	if len(window) > fadeWindowSessions {
		window = window[:fadeWindowSessions]
	}
	inWindow := make(map[string]bool, len(window))
	for _, id := range window {
		inWindow[id] = true
	}

	visible := func(r Record) bool {
		if r.Status != StatusActive {
			return false
		}
		for _, ev := range r.Evidence {
			if inWindow[ev.SessionID] {
				return true
			}
		}
		return false
	}

	// Records arrive pre-sorted by the prune pass, so per-bucket order is
	// already (importance desc, updatedAt desc).
	var sb strings.Builder
	for _, b := range snapshotBuckets {
		n := 0
		var lines []string
		for _, r := range records {
			if !b.kinds[r.Kind] || !visible(r) {
				continue
			}
			lines = append(lines, "- "+r.Summary)
			n++
			if n == b.cap {
				break
			}
		}
		if len(lines) > 0 {
			sb.WriteString("### " + b.title + "\n")
			sb.WriteString(strings.Join(lines, "\n"))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
