// Package council holds the core protocol types of the deliberation engine:
// events, motions, ballots, vote arithmetic, the phase transition resolver,
// and the phase-context packet. Everything here is pure; I/O lives in the
// eventlog and memory packages.
package council

// EventType tags one record in the session event stream.
type EventType string

const (
	EventSessionStarted EventType = "SESSION_STARTED"

	EventLeaderElectionBallot EventType = "LEADER_ELECTION_BALLOT"
	EventLeaderElected        EventType = "LEADER_ELECTED"

	EventPhaseStarted       EventType = "PHASE_STARTED"
	EventRoundStarted       EventType = "ROUND_STARTED"
	EventTurnAction         EventType = "TURN_ACTION"
	EventMessageContributed EventType = "MESSAGE_CONTRIBUTED"
	EventPassRecorded       EventType = "PASS_RECORDED"

	EventMotionCalled      EventType = "MOTION_CALLED"
	EventSecondingResponse EventType = "SECONDING_RESPONSE"
	EventMotionSeconded    EventType = "MOTION_SECONDED"
	EventMotionNotSeconded EventType = "MOTION_NOT_SECONDED"
	EventVoteCast          EventType = "VOTE_CAST"
	EventVoteResult        EventType = "VOTE_RESULT"

	EventRoundLimitReached EventType = "ROUND_LIMIT_REACHED"
	EventPhaseCompleted    EventType = "PHASE_COMPLETED"

	EventLeaderSummaryCreated EventType = "LEADER_SUMMARY_CREATED"

	EventDocumentDraftWritten       EventType = "DOCUMENT_DRAFT_WRITTEN"
	EventDocumentRevisionWritten    EventType = "DOCUMENT_REVISION_WRITTEN"
	EventDocumentApprovalVoteCalled EventType = "DOCUMENT_APPROVAL_VOTE_CALLED"
	EventDocumentApprovalVoteResult EventType = "DOCUMENT_APPROVAL_VOTE_RESULT"
	EventDocumentFeedbackCollected  EventType = "DOCUMENT_FEEDBACK_COLLECTED"

	EventExecutionHandoffWritten EventType = "EXECUTION_HANDOFF_WRITTEN"
	EventSessionClosed           EventType = "SESSION_CLOSED"
)

// TurnState is the sub-state of the per-turn motion state machine at the
// moment an event is emitted.
type TurnState string

const (
	StateSession    TurnState = "SESSION"
	StateDiscussion TurnState = "DISCUSSION"
	StateSeconding  TurnState = "SECONDING"
	StateVoting     TurnState = "VOTING"
)

// Event is one ordered protocol record. Seq is strictly monotonic within a
// session and matches the causal order of the state machine exactly.
type Event struct {
	Seq       int            `json:"seq"`
	SessionID string         `json:"sessionId"`
	Timestamp string         `json:"timestamp"`
	State     TurnState      `json:"state"`
	Type      EventType      `json:"type"`
	PhaseID   string         `json:"phaseId,omitempty"`
	Round     int            `json:"round,omitempty"`
	TurnIndex int            `json:"turnIndex,omitempty"`
	ActorID   string         `json:"actorId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}
