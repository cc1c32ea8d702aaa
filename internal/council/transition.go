package council

import (
	"sort"

	"quorum/internal/config"
)

// ResolveTransition maps (phase, endedBy) to the next phase id. The second
// return is false when the session should terminate.
//
// Eligible transitions are those triggered ALWAYS or by the matching
// outcome. They are ordered by (priority asc, target id asc) and the head
// wins. When nothing is eligible and the phase ended by round limit, a
// fallback of action TRANSITION acts as a synthetic lowest-priority edge.
func ResolveTransition(p *config.Phase, endedBy EndedBy) (string, bool) {
	eligible := make([]config.TransitionRule, 0, len(p.Transitions))
	for _, tr := range p.Transitions {
		if tr.When == config.TriggerAlways || string(tr.When) == string(endedBy) {
			eligible = append(eligible, tr)
		}
	}

	if len(eligible) > 0 {
		sort.SliceStable(eligible, func(i, j int) bool {
			if eligible[i].Priority != eligible[j].Priority {
				return eligible[i].Priority < eligible[j].Priority
			}
			return eligible[i].To < eligible[j].To
		})
		return eligible[0].To, true
	}

	if endedBy == EndedByRoundLimit && p.Fallback.Action == config.FallbackTransition {
		return p.Fallback.TransitionToPhaseID, true
	}

	return "", false
}
