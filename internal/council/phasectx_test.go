package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"quorum/internal/config"
)

func contextPhase() *config.Phase {
	return &config.Phase{
		ID:   "debate",
		Goal: "Debate the proposal",
		Deliverables: []config.Deliverable{
			{ID: "decision-record", Description: "The agreed decision", Required: true},
		},
		QualityGates: []string{"every claim has a counterargument on record"},
		EvidenceRequirements: config.EvidenceRequirements{
			MinCitations:        2,
			RequireRiskRegister: true,
		},
		Transitions: []config.TransitionRule{
			{To: "wrapup", When: config.TriggerMajorityVote, Priority: 1},
		},
		Fallback: config.Fallback{
			Action:              config.FallbackTransition,
			TransitionToPhaseID: "retrospective",
		},
	}
}

func TestRenderPhaseContextMinimal(t *testing.T) {
	out := RenderPhaseContext(PhaseContextInput{
		Phase:     contextPhase(),
		Round:     2,
		MaxRounds: 3,
		TurnIndex: 7,
		Verbosity: config.VerbosityMinimal,
	})

	assert.Contains(t, out, "Phase: debate")
	assert.Contains(t, out, "Round 2 of 3")
	assert.Contains(t, out, "wrapup (on MAJORITY_VOTE, priority 1)")
	assert.Contains(t, out, "retrospective (round-limit fallback)")
	// Minimal stops before deliverables and gates.
	assert.NotContains(t, out, "decision-record")
	assert.NotContains(t, out, "Quality gates")
}

func TestRenderPhaseContextStandard(t *testing.T) {
	out := RenderPhaseContext(PhaseContextInput{
		Phase:     contextPhase(),
		Round:     1,
		MaxRounds: 3,
		Verbosity: config.VerbosityStandard,
	})

	assert.Contains(t, out, "decision-record (required)")
	assert.Contains(t, out, "Quality gates")
	assert.Contains(t, out, "cite at least 2 sources")
	assert.Contains(t, out, "risk register")
	assert.NotContains(t, out, "Phase graph digest")
}

func TestRenderPhaseContextFull(t *testing.T) {
	p := contextPhase()
	out := RenderPhaseContext(PhaseContextInput{
		Phase:     p,
		AllPhases: []config.Phase{*p, {ID: "wrapup", Goal: "Summarize"}},
		Round:     1,
		MaxRounds: 3,
		Verbosity: config.VerbosityFull,
	})

	assert.Contains(t, out, "Phase graph digest")
	assert.Contains(t, out, "debate -> wrapup[MAJORITY_VOTE]")
	assert.Contains(t, out, "wrapup -> terminal")
	assert.Contains(t, out, `Packet: {"phaseId":"debate"`)
}

func TestRenderPhaseContextTerminalPhase(t *testing.T) {
	out := RenderPhaseContext(PhaseContextInput{
		Phase:     &config.Phase{ID: "wrapup", Goal: "Summarize", Fallback: config.Fallback{Action: config.FallbackEndSession}},
		Round:     1,
		MaxRounds: 1,
		Verbosity: config.VerbosityMinimal,
	})
	assert.Contains(t, out, "terminal phase")
}
