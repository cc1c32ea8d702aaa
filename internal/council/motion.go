package council

// Motion is a proposal introduced by a CALL_VOTE action. It is resolved,
// one way or the other, within the turn that introduced it.
type Motion struct {
	MotionID       string `json:"motionId"`
	Title          string `json:"title"`
	Text           string `json:"text"`
	DecisionIfPass string `json:"decisionIfPass"`
	ProposerID     string `json:"proposerId"`
	Round          int    `json:"round"`
	TurnIndex      int    `json:"turnIndex"`
}

// EndedBy records how a phase reached its outcome.
type EndedBy string

const (
	EndedByMajorityVote EndedBy = "MAJORITY_VOTE"
	EndedByRoundLimit   EndedBy = "ROUND_LIMIT"
)

// PhaseResult is the outcome of one executed phase.
type PhaseResult struct {
	PhaseID         string  `json:"phaseId"`
	PhaseGoal       string  `json:"phaseGoal"`
	EndedBy         EndedBy `json:"endedBy"`
	FinalResolution string  `json:"finalResolution"`
	WinningMotion   *Motion `json:"winningMotion,omitempty"`
	RoundsCompleted int     `json:"roundsCompleted"`
}
