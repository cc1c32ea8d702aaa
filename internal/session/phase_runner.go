package session

import (
	"context"
	"fmt"
	"strings"

	"quorum/internal/config"
	"quorum/internal/council"
	"quorum/internal/eventlog"
	"quorum/internal/logging"
	"quorum/internal/perception"
	"quorum/internal/prompt"
)

// runPhase executes one phase: the round loop, the per-turn state machine,
// and the motion sub-machine. Turn actions are strictly sequential — a
// contribution is logged before the next member's prompt is built, so each
// speaker sees the updated transcript.
func (r *sessionRun) runPhase(ctx context.Context, phase *config.Phase) (council.PhaseResult, error) {
	log := logging.Get(logging.CategoryPhase)
	order := r.o.cfg.SpeakingOrder()
	maxRounds := phase.StopConditions.MaxRounds

	if _, err := r.rec.Append(council.EventPhaseStarted, eventlog.AppendOptions{
		PhaseID: phase.ID,
		Payload: map[string]any{"goal": phase.Goal, "maxRounds": maxRounds},
	}); err != nil {
		return council.PhaseResult{}, err
	}

	result := council.PhaseResult{PhaseID: phase.ID, PhaseGoal: phase.Goal}

	for round := 1; round <= maxRounds; round++ {
		if _, err := r.rec.Append(council.EventRoundStarted, eventlog.AppendOptions{
			State:   council.StateDiscussion,
			PhaseID: phase.ID,
			Round:   round,
		}); err != nil {
			return council.PhaseResult{}, err
		}
		result.RoundsCompleted = round

		for _, speakerID := range order {
			r.turnIndex++

			action, err := r.takeTurn(ctx, phase, speakerID, round)
			if err != nil {
				return council.PhaseResult{}, err
			}

			switch action.Kind {
			case prompt.ActionContribute:
				r.lastContribution[speakerID] = action.Message
				if _, err := r.rec.Append(council.EventMessageContributed, eventlog.AppendOptions{
					State: council.StateDiscussion, PhaseID: phase.ID, Round: round, TurnIndex: r.turnIndex,
					ActorID: speakerID,
					Payload: map[string]any{"message": action.Message},
				}); err != nil {
					return council.PhaseResult{}, err
				}

			case prompt.ActionPass:
				if _, err := r.rec.Append(council.EventPassRecorded, eventlog.AppendOptions{
					State: council.StateDiscussion, PhaseID: phase.ID, Round: round, TurnIndex: r.turnIndex,
					ActorID: speakerID,
					Payload: map[string]any{"reason": action.Reason, "note": action.Note},
				}); err != nil {
					return council.PhaseResult{}, err
				}

			case prompt.ActionCallVote:
				motion := council.Motion{
					MotionID:       r.o.ids.NewMotionID(),
					Title:          action.Title,
					Text:           action.Text,
					DecisionIfPass: action.DecisionIfPass,
					ProposerID:     speakerID,
					Round:          round,
					TurnIndex:      r.turnIndex,
				}
				passed, outcome, err := r.runMotion(ctx, phase, motion, round)
				if err != nil {
					return council.PhaseResult{}, err
				}
				if passed && phase.StopConditions.EndOnMajorityVote {
					result.EndedBy = council.EndedByMajorityVote
					result.FinalResolution = motion.DecisionIfPass
					result.WinningMotion = &motion
					log.Infow("phase closed on motion",
						"sessionId", r.sessionID, "phaseId", phase.ID,
						"motionId", motion.MotionID, "yes", outcome.YesVotes)
					return r.completePhase(phase, result)
				}
			}
		}
	}

	// Round loop exhausted with no passing motion.
	result.EndedBy = council.EndedByRoundLimit
	result.FinalResolution = phase.Fallback.Resolution
	limitPayload := map[string]any{
		"fallbackResolution": phase.Fallback.Resolution,
		"fallbackAction":     string(phase.Fallback.Action),
	}
	if phase.Fallback.Action == config.FallbackTransition {
		limitPayload["fallbackTransitionTo"] = phase.Fallback.TransitionToPhaseID
	}
	if _, err := r.rec.Append(council.EventRoundLimitReached, eventlog.AppendOptions{
		State: council.StateDiscussion, PhaseID: phase.ID, Round: maxRounds,
		Payload: limitPayload,
	}); err != nil {
		return council.PhaseResult{}, err
	}
	return r.completePhase(phase, result)
}

func (r *sessionRun) completePhase(phase *config.Phase, result council.PhaseResult) (council.PhaseResult, error) {
	payload := map[string]any{
		"endedBy":         string(result.EndedBy),
		"finalResolution": result.FinalResolution,
		"roundsCompleted": result.RoundsCompleted,
	}
	if result.WinningMotion != nil {
		payload["winningMotionId"] = result.WinningMotion.MotionID
	}
	_, err := r.rec.Append(council.EventPhaseCompleted, eventlog.AppendOptions{
		PhaseID: phase.ID,
		Round:   result.RoundsCompleted,
		Payload: payload,
	})
	return result, err
}

// takeTurn builds one speaker's prompt, calls its model, normalizes the
// response, and emits TURN_ACTION.
func (r *sessionRun) takeTurn(ctx context.Context, phase *config.Phase, speakerID string, round int) (prompt.TurnAction, error) {
	common := r.commonInput(phase, speakerID, round)

	priorSummary := ""
	if phase.MemoryPolicy.IncludePriorPhaseSummary && len(r.phaseResults) > 0 {
		priorSummary = prompt.RenderPhaseResults(r.phaseResults)
	}

	system, user := prompt.BuildTurnPrompt(prompt.TurnPromptInput{
		Common:            common,
		HumanPrompt:       r.humanPrompt,
		PromptGuidance:    phase.PromptGuidance,
		Round:             round,
		MaxRounds:         phase.StopConditions.MaxRounds,
		RemainingTurns:    phase.StopConditions.MaxRounds - round + 1,
		PriorPhaseSummary: priorSummary,
	})

	wire, env, err := perception.CompleteJSON[prompt.TurnActionWire](ctx, r.client(speakerID), system, user, r.opts(speakerID))
	if err != nil {
		logging.Get(logging.CategoryAPI).Errorw("turn call failed",
			"stage", "turn", "sessionId", r.sessionID, "memberId", speakerID,
			"round", round, "turnIndex", r.turnIndex)
		return prompt.TurnAction{}, err
	}
	action := prompt.NormalizeTurnAction(wire, env)
	if env != nil {
		r.parseFallbacks[speakerID] = true
		logging.Get(logging.CategoryAPI).Warnw("turn response unparseable, converted to PASS",
			"stage", "turn", "sessionId", r.sessionID, "memberId", speakerID,
			"round", round, "turnIndex", r.turnIndex)
	}

	payload := map[string]any{"action": string(action.Kind)}
	switch action.Kind {
	case prompt.ActionContribute:
		payload["message"] = action.Message
	case prompt.ActionPass:
		payload["reason"] = action.Reason
		if action.Note != "" {
			payload["note"] = action.Note
		}
	case prompt.ActionCallVote:
		payload["title"] = action.Title
		payload["text"] = action.Text
		payload["decisionIfPass"] = action.DecisionIfPass
	}
	if _, err := r.rec.Append(council.EventTurnAction, eventlog.AppendOptions{
		State: council.StateDiscussion, PhaseID: phase.ID, Round: round, TurnIndex: r.turnIndex,
		ActorID: speakerID,
		Payload: payload,
	}); err != nil {
		return prompt.TurnAction{}, err
	}
	return action, nil
}

// runMotion drives the seconding and voting sub-machine for one motion.
// Atomic from the phase's perspective: it starts and resolves within the
// proposer's turn.
func (r *sessionRun) runMotion(ctx context.Context, phase *config.Phase, motion council.Motion, round int) (bool, council.VoteOutcome, error) {
	log := logging.Get(logging.CategoryMotion)
	order := r.o.cfg.SpeakingOrder()

	if _, err := r.rec.Append(council.EventMotionCalled, eventlog.AppendOptions{
		State: council.StateDiscussion, PhaseID: phase.ID, Round: round, TurnIndex: motion.TurnIndex,
		ActorID: motion.ProposerID,
		Payload: map[string]any{
			"motionId": motion.MotionID, "title": motion.Title, "text": motion.Text,
			"decisionIfPass": motion.DecisionIfPass,
		},
	}); err != nil {
		return false, council.VoteOutcome{}, err
	}

	if phase.Governance.RequireSeconding {
		seconded, err := r.runSeconding(ctx, phase, motion, round, order)
		if err != nil {
			return false, council.VoteOutcome{}, err
		}
		if !seconded {
			return false, council.VoteOutcome{}, nil
		}
	}

	// Voting: every member, caller included, in parallel. All ballots are
	// collected before any VOTE_CAST is emitted.
	type voteResult struct {
		wire prompt.VoteWire
		env  *perception.ParseErrorEnvelope
	}
	results, err := fanOut(ctx, order, func(ctx context.Context, id string) (voteResult, error) {
		common := r.commonInput(phase, id, round)
		system, user := prompt.BuildVotePrompt(common, motion, r.member(motion.ProposerID).Name)
		wire, env, err := perception.CompleteJSON[prompt.VoteWire](ctx, r.client(id), system, user, r.opts(id))
		if err != nil {
			logging.Get(logging.CategoryAPI).Errorw("vote call failed",
				"stage", "vote", "sessionId", r.sessionID, "memberId", id,
				"round", round, "turnIndex", motion.TurnIndex)
			return voteResult{}, err
		}
		return voteResult{wire: wire, env: env}, nil
	})
	if err != nil {
		return false, council.VoteOutcome{}, err
	}

	ballots := make([]council.Ballot, 0, len(order))
	for i, id := range order {
		v := prompt.NormalizeVote(results[i].wire, results[i].env)
		if results[i].env != nil {
			r.parseFallbacks[id] = true
		}
		ballots = append(ballots, council.Ballot{MemberID: id, Choice: v.Ballot, Rationale: v.Rationale})
		if _, err := r.rec.Append(council.EventVoteCast, eventlog.AppendOptions{
			State: council.StateVoting, PhaseID: phase.ID, Round: round, TurnIndex: motion.TurnIndex,
			ActorID: id,
			Payload: map[string]any{"motionId": motion.MotionID, "ballot": string(v.Ballot), "rationale": v.Rationale},
		}); err != nil {
			return false, council.VoteOutcome{}, err
		}
	}

	outcome := council.Tally(ballots, len(r.o.cfg.Members), phase.Governance)
	log.Infow("motion tallied",
		"sessionId", r.sessionID, "motionId", motion.MotionID,
		"passed", outcome.Passed, "yes", outcome.YesVotes, "required", outcome.RequiredYes)

	if _, err := r.rec.Append(council.EventVoteResult, eventlog.AppendOptions{
		State: council.StateVoting, PhaseID: phase.ID, Round: round, TurnIndex: motion.TurnIndex,
		Payload: map[string]any{
			"motionId":          motion.MotionID,
			"passed":            outcome.Passed,
			"yesVotes":          outcome.YesVotes,
			"noVotesEffective":  outcome.NoVotesEffective,
			"totalCouncilSize":  outcome.TotalCouncilSize,
			"requiredYes":       outcome.RequiredYes,
			"majorityThreshold": outcome.MajorityThreshold,
		},
	}); err != nil {
		return false, council.VoteOutcome{}, err
	}
	return outcome.Passed, outcome, nil
}

// runSeconding fans seconding prompts out to all non-callers, joins, and
// emits the responses in non-caller turn order. The seconder is the first
// non-caller in turn order that agreed.
func (r *sessionRun) runSeconding(ctx context.Context, phase *config.Phase, motion council.Motion, round int, order []string) (bool, error) {
	nonCallers := make([]string, 0, len(order)-1)
	for _, id := range order {
		if id != motion.ProposerID {
			nonCallers = append(nonCallers, id)
		}
	}

	type secondResult struct {
		wire prompt.SecondingWire
		env  *perception.ParseErrorEnvelope
	}
	results, err := fanOut(ctx, nonCallers, func(ctx context.Context, id string) (secondResult, error) {
		common := r.commonInput(phase, id, round)
		system, user := prompt.BuildSecondingPrompt(common, motion, r.member(motion.ProposerID).Name)
		wire, env, err := perception.CompleteJSON[prompt.SecondingWire](ctx, r.client(id), system, user, r.opts(id))
		if err != nil {
			logging.Get(logging.CategoryAPI).Errorw("seconding call failed",
				"stage", "seconding", "sessionId", r.sessionID, "memberId", id,
				"round", round, "turnIndex", motion.TurnIndex)
			return secondResult{}, err
		}
		return secondResult{wire: wire, env: env}, nil
	})
	if err != nil {
		return false, err
	}

	seconderID := ""
	for i, id := range nonCallers {
		resp := prompt.NormalizeSeconding(results[i].wire, results[i].env)
		if results[i].env != nil {
			r.parseFallbacks[id] = true
		}
		if resp.Second && seconderID == "" {
			seconderID = id
		}
		if _, err := r.rec.Append(council.EventSecondingResponse, eventlog.AppendOptions{
			State: council.StateSeconding, PhaseID: phase.ID, Round: round, TurnIndex: motion.TurnIndex,
			ActorID: id,
			Payload: map[string]any{"motionId": motion.MotionID, "second": resp.Second, "rationale": resp.Rationale},
		}); err != nil {
			return false, err
		}
	}

	if seconderID == "" {
		_, err := r.rec.Append(council.EventMotionNotSeconded, eventlog.AppendOptions{
			State: council.StateSeconding, PhaseID: phase.ID, Round: round, TurnIndex: motion.TurnIndex,
			Payload: map[string]any{"motionId": motion.MotionID},
		})
		return false, err
	}
	_, err = r.rec.Append(council.EventMotionSeconded, eventlog.AppendOptions{
		State: council.StateSeconding, PhaseID: phase.ID, Round: round, TurnIndex: motion.TurnIndex,
		ActorID: seconderID,
		Payload: map[string]any{"motionId": motion.MotionID},
	})
	return true, err
}

// commonInput assembles the shared prompt context for one member.
func (r *sessionRun) commonInput(phase *config.Phase, memberID string, round int) prompt.CommonInput {
	cfg := r.o.cfg
	in := prompt.CommonInput{
		CouncilName: cfg.CouncilName,
		Purpose:     cfg.Purpose,
		Member:      *r.member(memberID),
		PhaseContext: council.RenderPhaseContext(council.PhaseContextInput{
			Phase:     phase,
			AllPhases: cfg.Phases,
			Round:     round,
			MaxRounds: phase.StopConditions.MaxRounds,
			TurnIndex: r.turnIndex,
			Verbosity: cfg.SessionPolicy.PhaseContextVerbosity,
		}),
		TranscriptWindow: r.transcriptWindow(12),
	}
	if phase.MemoryPolicy.ReadMemberMemory {
		in.MemorySnapshot = r.memorySnapshots[memberID]
	}
	return in
}

// transcriptWindow renders the last n discussion-relevant events for
// prompt injection. Ballot-level events are deliberately excluded; only
// the published VOTE_RESULT is visible to later prompts.
func (r *sessionRun) transcriptWindow(n int) string {
	events := r.rec.Events()
	var lines []string
	for _, ev := range events {
		switch ev.Type {
		case council.EventMessageContributed:
			lines = append(lines, fmt.Sprintf("%s: %v", ev.ActorID, ev.Payload["message"]))
		case council.EventPassRecorded:
			lines = append(lines, fmt.Sprintf("%s passed (%v)", ev.ActorID, ev.Payload["reason"]))
		case council.EventMotionCalled:
			lines = append(lines, fmt.Sprintf("%s moved %q: %v", ev.ActorID, fmt.Sprintf("%v", ev.Payload["title"]), ev.Payload["text"]))
		case council.EventMotionNotSeconded:
			lines = append(lines, "The motion found no seconder and died.")
		case council.EventVoteResult:
			lines = append(lines, fmt.Sprintf("Vote result: passed=%v (%v yes of %v)",
				ev.Payload["passed"], ev.Payload["yesVotes"], ev.Payload["totalCouncilSize"]))
		case council.EventPhaseCompleted:
			lines = append(lines, fmt.Sprintf("Phase %s completed: %v", ev.PhaseID, ev.Payload["finalResolution"]))
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
