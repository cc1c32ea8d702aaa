package session

import (
	"context"

	"quorum/internal/council"
	"quorum/internal/eventlog"
	"quorum/internal/logging"
	"quorum/internal/perception"
	"quorum/internal/prompt"
)

// runElection fans one election prompt out to every member, joins, emits
// the ballots in turn order, and seats the winner.
func (r *sessionRun) runElection(ctx context.Context) error {
	cfg := r.o.cfg
	log := logging.Get(logging.CategoryElection)
	order := cfg.SpeakingOrder()
	memberIDs := make([]string, 0, len(cfg.Members))
	for _, m := range cfg.Members {
		memberIDs = append(memberIDs, m.ID)
	}

	type wireResult struct {
		wire prompt.ElectionWire
		env  *perception.ParseErrorEnvelope
	}
	results, err := fanOut(ctx, order, func(ctx context.Context, id string) (wireResult, error) {
		system, user := prompt.BuildElectionPrompt(prompt.ElectionInput{
			CouncilName: cfg.CouncilName,
			Purpose:     cfg.Purpose,
			Member:      *r.member(id),
			Candidates:  cfg.Members,
			HumanPrompt: r.humanPrompt,
		})
		wire, env, err := perception.CompleteJSON[prompt.ElectionWire](ctx, r.client(id), system, user, r.opts(id))
		if err != nil {
			log.Errorw("election ballot call failed",
				"stage", "leader-election", "sessionId", r.sessionID, "memberId", id)
			return wireResult{}, err
		}
		return wireResult{wire: wire, env: env}, nil
	})
	if err != nil {
		return err
	}

	ballots := make([]council.ElectionBallot, 0, len(order))
	for i, id := range order {
		b := prompt.NormalizeElectionBallot(results[i].wire, results[i].env, memberIDs)
		if results[i].env != nil {
			r.parseFallbacks[id] = true
		}
		ballots = append(ballots, council.ElectionBallot{
			VoterID:     id,
			CandidateID: b.CandidateID,
			Rationale:   b.Rationale,
		})
		if _, err := r.rec.Append(council.EventLeaderElectionBallot, eventlog.AppendOptions{
			ActorID: id,
			Payload: map[string]any{"candidateId": b.CandidateID, "rationale": b.Rationale},
		}); err != nil {
			return err
		}
	}

	leaderID, counts := council.TallyElection(ballots)
	r.leaderID = leaderID
	log.Infow("leader elected", "sessionId", r.sessionID, "leaderId", leaderID)

	_, err = r.rec.Append(council.EventLeaderElected, eventlog.AppendOptions{
		ActorID: leaderID,
		Payload: map[string]any{"leaderId": leaderID, "votes": counts},
	})
	return err
}
