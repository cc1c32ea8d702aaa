package session

import (
	"context"
	"fmt"

	"quorum/internal/council"
	"quorum/internal/eventlog"
	"quorum/internal/logging"
	"quorum/internal/memory"
	"quorum/internal/perception"
	"quorum/internal/prompt"
)

// runLeaderSummary asks the elected leader for the closing summary and
// persists it as leader-summary.md.
func (r *sessionRun) runLeaderSummary(ctx context.Context) (prompt.LeaderSummary, error) {
	cfg := r.o.cfg
	system, user := prompt.BuildLeaderSummaryPrompt(prompt.SummaryInput{
		CouncilName:  cfg.CouncilName,
		Purpose:      cfg.Purpose,
		Leader:       *r.member(r.leaderID),
		HumanPrompt:  r.humanPrompt,
		PhaseResults: r.phaseResults,
	})

	wire, env, err := perception.CompleteJSON[prompt.LeaderSummary](ctx, r.client(r.leaderID), system, user, r.opts(r.leaderID))
	if err != nil {
		logging.Get(logging.CategoryAPI).Errorw("leader summary call failed",
			"stage", "leader-summary", "sessionId", r.sessionID, "memberId", r.leaderID)
		return prompt.LeaderSummary{}, err
	}
	summary := prompt.NormalizeLeaderSummary(wire, env, r.finalResolution())
	if env != nil {
		r.parseFallbacks[r.leaderID] = true
	}

	path, err := r.rec.WriteArtifact("leader-summary.md", []byte(summary.SummaryMarkdown))
	if err != nil {
		return prompt.LeaderSummary{}, err
	}
	r.artifacts["leaderSummary"] = path

	_, err = r.rec.Append(council.EventLeaderSummaryCreated, eventlog.AppendOptions{
		ActorID: r.leaderID,
		Payload: map[string]any{
			"finalResolution":   summary.FinalResolution,
			"requiresExecution": summary.RequiresExecution,
			"artifact":          "leader-summary.md",
		},
	})
	return summary, err
}

// executionHandoff is the execution-handoff.json descriptor handed to an
// external executor.
type executionHandoff struct {
	SessionID              string  `json:"sessionId"`
	Approved               bool    `json:"approved"`
	ApprovalRequired       bool    `json:"approvalRequired"`
	DefaultExecutorProfile string  `json:"defaultExecutorProfile,omitempty"`
	WinningMotionID        *string `json:"winningMotionId"`
	LeaderID               string  `json:"leaderId"`
	FinalResolution        string  `json:"finalResolution"`
	ExecutionBrief         string  `json:"executionBrief"`
}

// writeHandoff writes the execution handoff descriptor. The engine never
// executes anything itself; approval is carried as data for whatever
// picks the descriptor up.
func (r *sessionRun) writeHandoff(summary prompt.LeaderSummary) (bool, error) {
	exec := r.o.cfg.Execution
	approved := !exec.RequireHumanApproval || r.approveExecution

	var motionID *string
	if m := r.lastWinningMotion(); m != nil {
		motionID = &m.MotionID
	}

	path, err := r.rec.WriteJSONArtifact("execution-handoff.json", executionHandoff{
		SessionID:              r.sessionID,
		Approved:               approved,
		ApprovalRequired:       exec.RequireHumanApproval,
		DefaultExecutorProfile: exec.DefaultExecutorProfile,
		WinningMotionID:        motionID,
		LeaderID:               r.leaderID,
		FinalResolution:        summary.FinalResolution,
		ExecutionBrief:         summary.ExecutionBrief,
	})
	if err != nil {
		return false, err
	}
	r.artifacts["executionHandoff"] = path

	logging.Get(logging.CategorySession).Infow("execution handoff written",
		"sessionId", r.sessionID, "approved", approved, "approvalRequired", exec.RequireHumanApproval)

	_, err = r.rec.Append(council.EventExecutionHandoffWritten, eventlog.AppendOptions{
		ActorID: r.leaderID,
		Payload: map[string]any{
			"approved":         approved,
			"approvalRequired": exec.RequireHumanApproval,
			"artifact":         "execution-handoff.json",
		},
	})
	return approved, err
}

// finalize emits SESSION_CLOSED, applies the memory writes when any
// completed phase opted in, and writes session.json.
func (r *sessionRun) finalize(endedBy council.EndedBy, summary prompt.LeaderSummary, docApproved, execApproved *bool) error {
	closedAt := r.o.clock.Now().Format("2006-01-02T15:04:05.000Z07:00")

	payload := map[string]any{"endedBy": string(endedBy)}
	if r.stopReason != "" {
		payload["stopReason"] = r.stopReason
	}
	if _, err := r.rec.Append(council.EventSessionClosed, eventlog.AppendOptions{Payload: payload}); err != nil {
		return err
	}

	if r.memoryWritesEnabled() {
		var fallbackMembers []string
		for _, m := range r.o.cfg.Members {
			if r.parseFallbacks[m.ID] {
				fallbackMembers = append(fallbackMembers, m.ID)
			}
		}
		if err := r.o.store.RecordSession(memory.SessionRecordInput{
			SessionID:            r.sessionID,
			CouncilName:          r.o.cfg.CouncilName,
			Members:              r.o.cfg.Members,
			LeaderID:             r.leaderID,
			FinalResolution:      summary.FinalResolution,
			EndedByRoundLimit:    endedBy == council.EndedByRoundLimit,
			LastContribution:     r.lastContribution,
			ParseFallbackMembers: fallbackMembers,
			RequiresExecution:    summary.RequiresExecution,
			ApproveExecution:     execApproved != nil && *execApproved,
		}); err != nil {
			return fmt.Errorf("record session memory: %w", err)
		}
	}

	return r.rec.FinalizeSession(eventlog.SessionState{
		SessionID:             r.sessionID,
		CouncilName:           r.o.cfg.CouncilName,
		HumanPrompt:           r.humanPrompt,
		LeaderID:              r.leaderID,
		PhaseResults:          r.phaseResults,
		EndedBy:               endedBy,
		StopReason:            r.stopReason,
		FinalResolution:       summary.FinalResolution,
		RequiresExecution:     summary.RequiresExecution,
		ExecutionApproved:     execApproved,
		DocumentationApproved: docApproved,
		Artifacts:             r.artifacts,
		StartedAt:             r.startedAt,
		ClosedAt:              closedAt,
	})
}

// memoryWritesEnabled reports whether any completed phase opted into
// memory writes; the write set is all-or-nothing at session close.
func (r *sessionRun) memoryWritesEnabled() bool {
	for _, pr := range r.phaseResults {
		phase := r.o.cfg.PhaseByID(pr.PhaseID)
		if phase != nil && (phase.MemoryPolicy.WriteMemberMemory || phase.MemoryPolicy.WriteCouncilMemory) {
			return true
		}
	}
	return false
}
