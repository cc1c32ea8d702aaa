package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"quorum/internal/config"
)

func TestResolveTransitionMatchesTrigger(t *testing.T) {
	p := &config.Phase{
		ID: "debate",
		Transitions: []config.TransitionRule{
			{To: "vote-review", When: config.TriggerMajorityVote, Priority: 1},
			{To: "retrospective", When: config.TriggerRoundLimit, Priority: 1},
		},
	}

	next, ok := ResolveTransition(p, EndedByMajorityVote)
	assert.True(t, ok)
	assert.Equal(t, "vote-review", next)

	next, ok = ResolveTransition(p, EndedByRoundLimit)
	assert.True(t, ok)
	assert.Equal(t, "retrospective", next)
}

func TestResolveTransitionLowestPriorityWins(t *testing.T) {
	p := &config.Phase{
		Transitions: []config.TransitionRule{
			{To: "c", When: config.TriggerAlways, Priority: 5},
			{To: "a", When: config.TriggerAlways, Priority: 1},
			{To: "b", When: config.TriggerMajorityVote, Priority: 3},
		},
	}
	next, ok := ResolveTransition(p, EndedByMajorityVote)
	assert.True(t, ok)
	assert.Equal(t, "a", next)
}

func TestResolveTransitionEqualPriorityTieBrokenByTargetID(t *testing.T) {
	p := &config.Phase{
		Transitions: []config.TransitionRule{
			{To: "zeta", When: config.TriggerAlways, Priority: 2},
			{To: "alpha", When: config.TriggerAlways, Priority: 2},
		},
	}
	next, ok := ResolveTransition(p, EndedByRoundLimit)
	assert.True(t, ok)
	assert.Equal(t, "alpha", next)
}

func TestResolveTransitionFallbackOnRoundLimit(t *testing.T) {
	p := &config.Phase{
		Transitions: []config.TransitionRule{
			{To: "next", When: config.TriggerMajorityVote, Priority: 1},
		},
		Fallback: config.Fallback{
			Action:              config.FallbackTransition,
			TransitionToPhaseID: "retrospective",
		},
	}

	// No ROUND_LIMIT edge, so the fallback supplies the target.
	next, ok := ResolveTransition(p, EndedByRoundLimit)
	assert.True(t, ok)
	assert.Equal(t, "retrospective", next)

	// An explicit edge outranks the fallback.
	p.Transitions = append(p.Transitions, config.TransitionRule{To: "explicit", When: config.TriggerRoundLimit, Priority: 9})
	next, ok = ResolveTransition(p, EndedByRoundLimit)
	assert.True(t, ok)
	assert.Equal(t, "explicit", next)
}

func TestResolveTransitionTerminates(t *testing.T) {
	p := &config.Phase{
		Transitions: []config.TransitionRule{
			{To: "next", When: config.TriggerRoundLimit, Priority: 1},
		},
		Fallback: config.Fallback{Action: config.FallbackEndSession},
	}

	// MAJORITY_VOTE matches nothing and the fallback only applies to the
	// round-limit outcome.
	_, ok := ResolveTransition(p, EndedByMajorityVote)
	assert.False(t, ok)

	p.Transitions = nil
	_, ok = ResolveTransition(p, EndedByRoundLimit)
	assert.False(t, ok)
}
