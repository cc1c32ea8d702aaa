package eventlog

import (
	"quorum/internal/council"
)

// SessionState is the final session.json synthesis.
type SessionState struct {
	SessionID       string                `json:"sessionId"`
	CouncilName     string                `json:"councilName"`
	HumanPrompt     string                `json:"humanPrompt"`
	LeaderID        string                `json:"leaderId"`
	PhaseResults    []council.PhaseResult `json:"phaseResults"`
	EndedBy         council.EndedBy       `json:"endedBy"`
	StopReason      string                `json:"stopReason,omitempty"`
	FinalResolution string                `json:"finalResolution"`

	RequiresExecution     bool  `json:"requiresExecution"`
	ExecutionApproved     *bool `json:"executionApproved,omitempty"`
	DocumentationApproved *bool `json:"documentationApproved,omitempty"`

	Artifacts map[string]string `json:"artifacts"`

	StartedAt string `json:"startedAt"`
	ClosedAt  string `json:"closedAt"`
}

// FinalizeSession writes the session state document.
func (r *Recorder) FinalizeSession(state SessionState) error {
	_, err := r.WriteJSONArtifact("session.json", state)
	return err
}
