package council

import (
	"math"
	"sort"

	"quorum/internal/config"
)

// BallotChoice is one of the three admissible votes.
type BallotChoice string

const (
	BallotYes     BallotChoice = "YES"
	BallotNo      BallotChoice = "NO"
	BallotAbstain BallotChoice = "ABSTAIN"
)

// Ballot is one member's vote on a motion.
type Ballot struct {
	MemberID  string       `json:"memberId"`
	Choice    BallotChoice `json:"choice"`
	Rationale string       `json:"rationale"`
}

// VoteOutcome is the tally of one voting round. The denominator is always
// the full council size, never the number of ballots returned.
type VoteOutcome struct {
	Passed            bool    `json:"passed"`
	YesVotes          int     `json:"yesVotes"`
	NoVotesEffective  int     `json:"noVotesEffective"`
	RequiredYes       int     `json:"requiredYes"`
	TotalCouncilSize  int     `json:"totalCouncilSize"`
	MajorityThreshold float64 `json:"majorityThreshold"`
}

// Tally computes pass/fail from the collected ballots under the phase's
// governance. At the default 0.5 threshold a strict majority of the full
// council is required; other thresholds round up.
func Tally(ballots []Ballot, councilSize int, gov config.Governance) VoteOutcome {
	yes, no := 0, 0
	for _, b := range ballots {
		switch b.Choice {
		case BallotYes:
			yes++
		case BallotNo:
			no++
		}
	}

	noEffective := no
	if gov.AbstainCountsAsNo {
		noEffective = councilSize - yes
	}

	var required int
	if gov.MajorityThreshold == 0.5 {
		required = councilSize/2 + 1
	} else {
		required = int(math.Ceil(float64(councilSize) * gov.MajorityThreshold))
	}

	return VoteOutcome{
		Passed:            yes >= required,
		YesVotes:          yes,
		NoVotesEffective:  noEffective,
		RequiredYes:       required,
		TotalCouncilSize:  councilSize,
		MajorityThreshold: gov.MajorityThreshold,
	}
}

// ElectionBallot is one member's leader-election vote.
type ElectionBallot struct {
	VoterID     string `json:"voterId"`
	CandidateID string `json:"candidateId"`
	Rationale   string `json:"rationale"`
}

// TallyElection picks the leader: higher ballot count wins, ties broken by
// lexicographic ascending candidate id.
func TallyElection(ballots []ElectionBallot) (string, map[string]int) {
	counts := map[string]int{}
	for _, b := range ballots {
		counts[b.CandidateID]++
	}

	candidates := make([]string, 0, len(counts))
	for id := range counts {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)

	leader := ""
	best := -1
	for _, id := range candidates {
		if counts[id] > best {
			leader = id
			best = counts[id]
		}
	}
	return leader, counts
}
