package memory

import (
	"fmt"

	"quorum/internal/config"
	"quorum/internal/logging"
)

// SessionRecordInput is everything recordSession needs from a finished
// session.
type SessionRecordInput struct {
	SessionID       string
	CouncilName     string
	Members         []config.Member
	LeaderID        string
	FinalResolution string

	// EndedByRoundLimit marks a session whose last phase exhausted its
	// rounds without consensus.
	EndedByRoundLimit bool

	// LastContribution maps member id to that member's final
	// MESSAGE_CONTRIBUTED text, when any.
	LastContribution map[string]string

	// ParseFallbackMembers lists members that hit the JSON parse-fallback
	// path at least once.
	ParseFallbackMembers []string

	RequiresExecution bool
	ApproveExecution  bool
}

// RecordSession applies the session-close upserts for every member and for
// the council, then prunes and refreshes each prompt-context snapshot.
// This is the memory store's only write path.
func (s *Store) RecordSession(in SessionRecordInput) error {
	now := s.now()
	log := logging.Get(logging.CategoryMemory)
	evidence := []EvidenceRef{{SessionID: in.SessionID}}

	fallback := make(map[string]bool, len(in.ParseFallbackMembers))
	for _, id := range in.ParseFallbackMembers {
		fallback[id] = true
	}

	for _, m := range in.Members {
		if err := s.EnsureMember(m); err != nil {
			return err
		}
		mem, err := s.loadMember(m.ID)
		if err != nil {
			return err
		}

		mem.Records = upsert(mem.Records, Record{
			ID:         "decision:" + in.SessionID,
			Kind:       KindDecision,
			Status:     StatusActive,
			Summary:    in.FinalResolution,
			Importance: 5,
			Confidence: 0.9,
			Evidence:   evidence,
		}, now)

		stance := in.LastContribution[m.ID]
		if stance == "" {
			stance = "Did not contribute a closing stance this session."
		}
		mem.Records = upsert(mem.Records, Record{
			ID:         fmt.Sprintf("outcome:%s:%s", in.SessionID, m.ID),
			Kind:       KindOutcome,
			Status:     StatusActive,
			Summary:    stance,
			Importance: 3,
			Confidence: 0.7,
			Evidence:   evidence,
		}, now)

		if fallback[m.ID] {
			mem.Records = upsert(mem.Records, Record{
				ID:         "risk_pattern:parse_fallback:" + m.ID,
				Kind:       KindRiskPattern,
				Status:     StatusActive,
				Summary:    "Produced unparseable JSON at least once; turns were auto-converted to deterministic fallbacks.",
				Importance: 4,
				Confidence: 0.9,
				Evidence:   evidence,
			}, now)
		}

		if in.EndedByRoundLimit {
			mem.Records = upsert(mem.Records, Record{
				ID:         "open_loop:" + in.SessionID + ":consensus",
				Kind:       KindOpenLoop,
				Status:     StatusActive,
				Summary:    "Session ended on the round limit without reaching consensus; the question remains open.",
				Importance: 4,
				Confidence: 0.8,
				Evidence:   evidence,
			}, now)
		}

		if in.RequiresExecution {
			rec := Record{
				ID:         "open_loop:" + in.SessionID + ":execution",
				Kind:       KindOpenLoop,
				Status:     StatusActive,
				Summary:    "Resolution requires execution; handoff awaits human approval.",
				Importance: 4,
				Confidence: 0.8,
				Evidence:   evidence,
			}
			if in.ApproveExecution {
				rec.Status = StatusResolved
				rec.Summary = "Resolution requires execution; handoff was approved for execution."
			}
			mem.Records = upsert(mem.Records, rec, now)
		}

		mem.Records = prune(mem.Records, maxMemberRecords)
		mem.RecentSessions = touchRecent(mem.RecentSessions, in.SessionID, memberDigestLimit)
		mem.PromptContext = derivePromptContext(mem.Records, mem.RecentSessions)

		if err := s.saveMember(mem); err != nil {
			return err
		}
	}

	cm, err := s.loadCouncil(in.CouncilName)
	if err != nil {
		return err
	}
	cm.Records = upsert(cm.Records, Record{
		ID:         "decision:" + in.SessionID,
		Kind:       KindDecision,
		Status:     StatusActive,
		Summary:    in.FinalResolution,
		Importance: 5,
		Confidence: 0.9,
		Evidence:   evidence,
	}, now)
	if len(in.ParseFallbackMembers) > 0 {
		cm.Records = upsert(cm.Records, Record{
			ID:         "lesson:parse_fallback:" + in.SessionID,
			Kind:       KindLesson,
			Status:     StatusActive,
			Summary:    fmt.Sprintf("%d member(s) produced unparseable JSON this session; tighten response contracts or review model choice.", len(in.ParseFallbackMembers)),
			Importance: 4,
			Confidence: 0.9,
			Evidence:   evidence,
		}, now)
	}
	cm.Records = prune(cm.Records, maxCouncilRecords)
	cm.RecentSessions = touchRecent(cm.RecentSessions, in.SessionID, councilDigestLimit)

	if err := s.saveCouncil(cm); err != nil {
		return err
	}

	log.Infow("session recorded",
		"sessionId", in.SessionID,
		"members", len(in.Members),
		"parseFallbacks", len(in.ParseFallbackMembers))
	return nil
}
