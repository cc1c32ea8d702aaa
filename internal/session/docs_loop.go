package session

import (
	"context"
	"encoding/json"
	"fmt"

	"quorum/internal/config"
	"quorum/internal/council"
	"quorum/internal/eventlog"
	"quorum/internal/logging"
	"quorum/internal/perception"
	"quorum/internal/prompt"
)

// Documentation approval always uses simple-majority governance with
// abstentions counting against, independent of any phase's settings.
var approvalGovernance = config.Governance{
	MajorityThreshold: 0.5,
	AbstainCountsAsNo: true,
}

// runDocumentationLoop drives the draft / approve / revise cycle. The
// leader writes draft v1; each revision gets one approval vote; a failed
// vote on any revision but the last collects structured feedback from the
// dissenters and produces the next draft. Returns whether the final draft
// was approved.
func (r *sessionRun) runDocumentationLoop(ctx context.Context, summary prompt.LeaderSummary) (bool, error) {
	cfg := r.o.cfg
	log := logging.Get(logging.CategoryDocs)
	order := cfg.SpeakingOrder()
	maxRevisions := cfg.DocumentationReview.MaxRevisionRounds

	system, user := prompt.BuildDocumentationPrompt(prompt.DocumentationInput{
		CouncilName:     cfg.CouncilName,
		Purpose:         cfg.Purpose,
		Leader:          *r.member(r.leaderID),
		HumanPrompt:     r.humanPrompt,
		FinalResolution: summary.FinalResolution,
		PhaseResults:    r.phaseResults,
	})
	draft, err := r.client(r.leaderID).CompleteText(ctx, system, user, r.opts(r.leaderID))
	if err != nil {
		logging.Get(logging.CategoryAPI).Errorw("documentation draft call failed",
			"stage", "documentation-draft", "sessionId", r.sessionID, "memberId", r.leaderID)
		return false, err
	}

	var lastFeedback []prompt.ReviewFeedback

	for revision := 1; revision <= maxRevisions+1; revision++ {
		draftName := fmt.Sprintf("documentation.draft.v%d.md", revision)
		if _, err := r.rec.WriteArtifact(draftName, []byte(draft)); err != nil {
			return false, err
		}
		draftEvent := council.EventDocumentDraftWritten
		if revision > 1 {
			draftEvent = council.EventDocumentRevisionWritten
		}
		if _, err := r.rec.Append(draftEvent, eventlog.AppendOptions{
			ActorID: r.leaderID,
			Payload: map[string]any{"revision": revision, "artifact": draftName},
		}); err != nil {
			return false, err
		}

		if _, err := r.rec.Append(council.EventDocumentApprovalVoteCalled, eventlog.AppendOptions{
			State:   council.StateVoting,
			Payload: map[string]any{"revision": revision},
		}); err != nil {
			return false, err
		}

		ballots, err := r.collectApprovalBallots(ctx, order, draft, revision)
		if err != nil {
			return false, err
		}
		outcome := council.Tally(ballots, len(cfg.Members), approvalGovernance)
		if _, err := r.rec.Append(council.EventDocumentApprovalVoteResult, eventlog.AppendOptions{
			State: council.StateVoting,
			Payload: map[string]any{
				"revision":         revision,
				"passed":           outcome.Passed,
				"yesVotes":         outcome.YesVotes,
				"noVotesEffective": outcome.NoVotesEffective,
				"totalCouncilSize": outcome.TotalCouncilSize,
				"requiredYes":      outcome.RequiredYes,
			},
		}); err != nil {
			return false, err
		}
		log.Infow("documentation approval vote",
			"sessionId", r.sessionID, "revision", revision,
			"passed", outcome.Passed, "yes", outcome.YesVotes, "required", outcome.RequiredYes)

		if outcome.Passed {
			path, err := r.rec.WriteArtifact("documentation.md", []byte(draft))
			if err != nil {
				return false, err
			}
			r.artifacts["documentation"] = path
			return true, nil
		}
		if revision == maxRevisions+1 {
			break
		}

		feedback, err := r.collectReviewFeedback(ctx, order, ballots, draft, revision)
		if err != nil {
			return false, err
		}
		lastFeedback = feedback
		feedbackJSON, err := json.MarshalIndent(feedback, "", "  ")
		if err != nil {
			return false, fmt.Errorf("marshal review feedback: %w", err)
		}
		reviewName := fmt.Sprintf("documentation.review.v%d.json", revision)
		if _, err := r.rec.WriteArtifact(reviewName, append(feedbackJSON, '\n')); err != nil {
			return false, err
		}
		if _, err := r.rec.Append(council.EventDocumentFeedbackCollected, eventlog.AppendOptions{
			Payload: map[string]any{"revision": revision, "reviewers": len(feedback), "artifact": reviewName},
		}); err != nil {
			return false, err
		}

		system, user := prompt.BuildRevisionPrompt(prompt.RevisionInput{
			CouncilName:  cfg.CouncilName,
			Purpose:      cfg.Purpose,
			Leader:       *r.member(r.leaderID),
			PriorDraft:   draft,
			FeedbackJSON: string(feedbackJSON),
			Revision:     revision + 1,
		})
		draft, err = r.client(r.leaderID).CompleteText(ctx, system, user, r.opts(r.leaderID))
		if err != nil {
			logging.Get(logging.CategoryAPI).Errorw("documentation revision call failed",
				"stage", "documentation-revision", "sessionId", r.sessionID, "memberId", r.leaderID)
			return false, err
		}
	}

	// Every revision failed. Keep the last draft and the outstanding
	// blockers so a human can pick the work up.
	path, err := r.rec.WriteArtifact("documentation.unapproved.md", []byte(draft))
	if err != nil {
		return false, err
	}
	r.artifacts["documentation"] = path

	var blockers []prompt.ReviewBlocker
	for _, fb := range lastFeedback {
		blockers = append(blockers, fb.CriticalBlockers...)
	}
	if blockers == nil {
		blockers = []prompt.ReviewBlocker{}
	}
	if _, err := r.rec.WriteJSONArtifact("documentation.unresolved-blockers.json", blockers); err != nil {
		return false, err
	}
	log.Warnw("documentation not approved",
		"sessionId", r.sessionID, "revisions", maxRevisions+1, "unresolvedBlockers", len(blockers))
	return false, nil
}

// collectApprovalBallots fans the approval vote out to every member and
// returns ballots in turn order. Same blind discipline as motion votes.
func (r *sessionRun) collectApprovalBallots(ctx context.Context, order []string, draft string, revision int) ([]council.Ballot, error) {
	type voteResult struct {
		wire prompt.VoteWire
		env  *perception.ParseErrorEnvelope
	}
	results, err := fanOut(ctx, order, func(ctx context.Context, id string) (voteResult, error) {
		common := prompt.CommonInput{
			CouncilName: r.o.cfg.CouncilName,
			Purpose:     r.o.cfg.Purpose,
			Member:      *r.member(id),
		}
		system, user := prompt.BuildApprovalVotePrompt(common, draft, revision)
		wire, env, err := perception.CompleteJSON[prompt.VoteWire](ctx, r.client(id), system, user, r.opts(id))
		if err != nil {
			logging.Get(logging.CategoryAPI).Errorw("approval vote call failed",
				"stage", "documentation-approval", "sessionId", r.sessionID, "memberId", id, "revision", revision)
			return voteResult{}, err
		}
		return voteResult{wire: wire, env: env}, nil
	})
	if err != nil {
		return nil, err
	}

	ballots := make([]council.Ballot, 0, len(order))
	for i, id := range order {
		v := prompt.NormalizeVote(results[i].wire, results[i].env)
		if results[i].env != nil {
			r.parseFallbacks[id] = true
		}
		ballots = append(ballots, council.Ballot{MemberID: id, Choice: v.Ballot, Rationale: v.Rationale})
	}
	return ballots, nil
}

// collectReviewFeedback fans the feedback prompt out to every member whose
// approval ballot was not YES.
func (r *sessionRun) collectReviewFeedback(ctx context.Context, order []string, ballots []council.Ballot, draft string, revision int) ([]prompt.ReviewFeedback, error) {
	choice := make(map[string]council.BallotChoice, len(ballots))
	for _, b := range ballots {
		choice[b.MemberID] = b.Choice
	}
	var reviewers []string
	for _, id := range order {
		if choice[id] != council.BallotYes {
			reviewers = append(reviewers, id)
		}
	}

	type fbResult struct {
		wire prompt.ReviewFeedbackWire
		env  *perception.ParseErrorEnvelope
	}
	results, err := fanOut(ctx, reviewers, func(ctx context.Context, id string) (fbResult, error) {
		common := prompt.CommonInput{
			CouncilName: r.o.cfg.CouncilName,
			Purpose:     r.o.cfg.Purpose,
			Member:      *r.member(id),
		}
		system, user := prompt.BuildFeedbackPrompt(common, draft, revision)
		wire, env, err := perception.CompleteJSON[prompt.ReviewFeedbackWire](ctx, r.client(id), system, user, r.opts(id))
		if err != nil {
			logging.Get(logging.CategoryAPI).Errorw("review feedback call failed",
				"stage", "documentation-feedback", "sessionId", r.sessionID, "memberId", id, "revision", revision)
			return fbResult{}, err
		}
		return fbResult{wire: wire, env: env}, nil
	})
	if err != nil {
		return nil, err
	}

	feedback := make([]prompt.ReviewFeedback, 0, len(reviewers))
	for i, id := range reviewers {
		fb := prompt.NormalizeReviewFeedback(results[i].wire, results[i].env, id)
		if results[i].env != nil {
			r.parseFallbacks[id] = true
		}
		feedback = append(feedback, fb)
	}
	return feedback, nil
}
