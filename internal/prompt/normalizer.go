// Package prompt renders the protocol prompts and normalizes model
// responses into strict tagged variants. Everything is a pure function;
// parse failures never escape — they become the canonical fallback for
// the step, so the state machine keeps moving deterministically.
package prompt

import (
	"fmt"
	"strings"

	"quorum/internal/council"
	"quorum/internal/perception"
)

// TurnActionKind discriminates the per-turn action variant.
type TurnActionKind string

const (
	ActionContribute TurnActionKind = "CONTRIBUTE"
	ActionPass       TurnActionKind = "PASS"
	ActionCallVote   TurnActionKind = "CALL_VOTE"
)

// TurnAction is the normalized result of one member's turn.
type TurnAction struct {
	Kind TurnActionKind

	// CONTRIBUTE
	Message string

	// PASS
	Reason string
	Note   string

	// CALL_VOTE
	Title          string
	Text           string
	DecisionIfPass string
}

// SecondingResponse is a non-caller's answer to a motion.
type SecondingResponse struct {
	Second    bool
	Rationale string
}

// VoteResponse is one ballot plus its rationale.
type VoteResponse struct {
	Ballot    council.BallotChoice
	Rationale string
}

// LeaderElectionBallot names a candidate.
type LeaderElectionBallot struct {
	CandidateID string
	Rationale   string
}

// LeaderSummary is the leader's closing statement.
type LeaderSummary struct {
	SummaryMarkdown   string `json:"summaryMarkdown"`
	FinalResolution   string `json:"finalResolution"`
	RequiresExecution bool   `json:"requiresExecution"`
	ExecutionBrief    string `json:"executionBrief,omitempty"`
}

// ReviewBlocker is one critical blocker in documentation feedback.
type ReviewBlocker struct {
	ID             string `json:"id"`
	Section        string `json:"section"`
	Problem        string `json:"problem"`
	Impact         string `json:"impact"`
	RequiredChange string `json:"requiredChange"`
	Severity       string `json:"severity"`
}

// ReviewFeedback is one reviewer's structured documentation feedback.
type ReviewFeedback struct {
	ReviewerID       string          `json:"reviewerId"`
	CriticalBlockers []ReviewBlocker `json:"criticalBlockers"`
	SuggestedChanges []string        `json:"suggestedChanges"`
}

const autoPassNote = "Auto-converted to PASS to preserve deterministic flow."

// Wire shapes the models are asked to produce.

// TurnActionWire is the raw single-line JSON a turn prompt requests.
type TurnActionWire struct {
	Action         string `json:"action"`
	Message        string `json:"message,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Note           string `json:"note,omitempty"`
	Title          string `json:"title,omitempty"`
	Text           string `json:"text,omitempty"`
	DecisionIfPass string `json:"decisionIfPass,omitempty"`
}

// SecondingWire is the raw seconding response.
type SecondingWire struct {
	Second    bool   `json:"second"`
	Rationale string `json:"rationale"`
}

// VoteWire is the raw ballot response.
type VoteWire struct {
	Ballot    string `json:"ballot"`
	Rationale string `json:"rationale"`
}

// ElectionWire is the raw leader-election ballot.
type ElectionWire struct {
	CandidateID string `json:"candidateId"`
	Rationale   string `json:"rationale"`
}

// ReviewFeedbackWire is the raw documentation feedback response.
type ReviewFeedbackWire struct {
	CriticalBlockers []ReviewBlocker `json:"criticalBlockers"`
	SuggestedChanges []string        `json:"suggestedChanges"`
}

// NormalizeTurnAction coerces a raw turn response into a TurnAction.
// Parse errors and schema violations collapse to the PASS fallback.
func NormalizeTurnAction(wire TurnActionWire, env *perception.ParseErrorEnvelope) TurnAction {
	if env != nil {
		return TurnAction{
			Kind:   ActionPass,
			Reason: truncate("Model JSON parse error: "+env.Message, MaxReasonLen),
			Note:   autoPassNote,
		}
	}

	switch strings.ToUpper(strings.TrimSpace(wire.Action)) {
	case string(ActionContribute):
		if strings.TrimSpace(wire.Message) == "" {
			return invalidTurn("CONTRIBUTE with empty message")
		}
		return TurnAction{Kind: ActionContribute, Message: truncate(wire.Message, MaxMessageLen)}
	case string(ActionPass):
		reason := wire.Reason
		if strings.TrimSpace(reason) == "" {
			reason = "No reason given."
		}
		return TurnAction{
			Kind:   ActionPass,
			Reason: truncate(reason, MaxReasonLen),
			Note:   truncate(wire.Note, MaxNoteLen),
		}
	case string(ActionCallVote):
		if strings.TrimSpace(wire.Title) == "" || strings.TrimSpace(wire.Text) == "" || strings.TrimSpace(wire.DecisionIfPass) == "" {
			return invalidTurn("CALL_VOTE missing title, text, or decisionIfPass")
		}
		return TurnAction{
			Kind:           ActionCallVote,
			Title:          truncate(wire.Title, MaxTitleLen),
			Text:           truncate(wire.Text, MaxMotionTextLen),
			DecisionIfPass: truncate(wire.DecisionIfPass, MaxDecisionLen),
		}
	default:
		return invalidTurn(fmt.Sprintf("unknown action %q", wire.Action))
	}
}

func invalidTurn(detail string) TurnAction {
	return TurnAction{
		Kind:   ActionPass,
		Reason: truncate("Invalid response format: "+detail, MaxReasonLen),
		Note:   autoPassNote,
	}
}

// NormalizeSeconding coerces a raw seconding response; the fallback is a
// declined second.
func NormalizeSeconding(wire SecondingWire, env *perception.ParseErrorEnvelope) SecondingResponse {
	if env != nil {
		return SecondingResponse{
			Second:    false,
			Rationale: truncate("Model JSON parse error: "+env.Message, MaxRationaleLen),
		}
	}
	rationale := wire.Rationale
	if strings.TrimSpace(rationale) == "" {
		rationale = "No rationale given."
	}
	return SecondingResponse{Second: wire.Second, Rationale: truncate(rationale, MaxRationaleLen)}
}

// NormalizeVote coerces a raw ballot; the fallback is ABSTAIN, which
// counts against the motion whenever abstainCountsAsNo is set.
func NormalizeVote(wire VoteWire, env *perception.ParseErrorEnvelope) VoteResponse {
	if env != nil {
		return VoteResponse{
			Ballot:    council.BallotAbstain,
			Rationale: truncate("Model JSON parse error: "+env.Message, MaxRationaleLen),
		}
	}
	switch strings.ToUpper(strings.TrimSpace(wire.Ballot)) {
	case string(council.BallotYes):
		return VoteResponse{Ballot: council.BallotYes, Rationale: truncate(wire.Rationale, MaxRationaleLen)}
	case string(council.BallotNo):
		return VoteResponse{Ballot: council.BallotNo, Rationale: truncate(wire.Rationale, MaxRationaleLen)}
	case string(council.BallotAbstain):
		return VoteResponse{Ballot: council.BallotAbstain, Rationale: truncate(wire.Rationale, MaxRationaleLen)}
	default:
		return VoteResponse{
			Ballot:    council.BallotAbstain,
			Rationale: truncate(fmt.Sprintf("Invalid response format: unknown ballot %q", wire.Ballot), MaxRationaleLen),
		}
	}
}

// NormalizeElectionBallot coerces a leader-election ballot. The fallback
// candidate is the first member in declaration order, and so is the
// substitute for a vote naming someone outside the council.
func NormalizeElectionBallot(wire ElectionWire, env *perception.ParseErrorEnvelope, memberIDs []string) LeaderElectionBallot {
	known := func(id string) bool {
		for _, m := range memberIDs {
			if m == id {
				return true
			}
		}
		return false
	}

	if env != nil {
		return LeaderElectionBallot{
			CandidateID: memberIDs[0],
			Rationale:   truncate("Model JSON parse error: "+env.Message, MaxRationaleLen),
		}
	}
	if !known(wire.CandidateID) {
		return LeaderElectionBallot{
			CandidateID: memberIDs[0],
			Rationale:   truncate(fmt.Sprintf("Invalid response format: unknown candidate %q", wire.CandidateID), MaxRationaleLen),
		}
	}
	return LeaderElectionBallot{CandidateID: wire.CandidateID, Rationale: truncate(wire.Rationale, MaxRationaleLen)}
}

// NormalizeLeaderSummary coerces the leader's closing statement. The
// fallback synthesizes a summary that points at the final resolution so
// downstream artifacts always have content.
func NormalizeLeaderSummary(wire LeaderSummary, env *perception.ParseErrorEnvelope, finalResolution string) LeaderSummary {
	if env == nil && strings.TrimSpace(wire.SummaryMarkdown) != "" {
		if strings.TrimSpace(wire.FinalResolution) == "" {
			wire.FinalResolution = finalResolution
		}
		wire.SummaryMarkdown = truncate(wire.SummaryMarkdown, MaxSummaryLen)
		wire.FinalResolution = truncate(wire.FinalResolution, MaxResolutionLen)
		wire.ExecutionBrief = truncate(wire.ExecutionBrief, MaxExecutionBriefLen)
		return wire
	}
	return LeaderSummary{
		SummaryMarkdown:   fmt.Sprintf("## Session Summary\n\nThe council concluded with the following resolution:\n\n> %s\n", finalResolution),
		FinalResolution:   truncate(finalResolution, MaxResolutionLen),
		RequiresExecution: false,
	}
}

// NormalizeReviewFeedback coerces one reviewer's documentation feedback.
// Malformed blockers are dropped; an unparseable response becomes the
// synthetic blocker B0 so the leader observes the deficit.
func NormalizeReviewFeedback(wire ReviewFeedbackWire, env *perception.ParseErrorEnvelope, reviewerID string) ReviewFeedback {
	if env != nil {
		return ReviewFeedback{
			ReviewerID: reviewerID,
			CriticalBlockers: []ReviewBlocker{{
				ID:             "B0",
				Section:        "unknown",
				Problem:        truncate("Reviewer returned unparseable feedback: "+env.Message, MaxBlockerFieldLen),
				Impact:         "Review content for this voter is missing.",
				RequiredChange: "Re-examine the document against this reviewer's concerns.",
				Severity:       "high",
			}},
		}
	}

	fb := ReviewFeedback{ReviewerID: reviewerID}
	for _, b := range wire.CriticalBlockers {
		if strings.TrimSpace(b.ID) == "" || strings.TrimSpace(b.Problem) == "" {
			continue
		}
		b.Section = truncate(b.Section, MaxBlockerFieldLen)
		b.Problem = truncate(b.Problem, MaxBlockerFieldLen)
		b.Impact = truncate(b.Impact, MaxBlockerFieldLen)
		b.RequiredChange = truncate(b.RequiredChange, MaxBlockerFieldLen)
		fb.CriticalBlockers = append(fb.CriticalBlockers, b)
		if len(fb.CriticalBlockers) == 5 {
			break
		}
	}
	for _, s := range wire.SuggestedChanges {
		if strings.TrimSpace(s) == "" {
			continue
		}
		fb.SuggestedChanges = append(fb.SuggestedChanges, truncate(s, MaxBlockerFieldLen))
		if len(fb.SuggestedChanges) == 6 {
			break
		}
	}
	return fb
}
