package eventlog

import (
	"fmt"
	"strings"

	"quorum/internal/council"
)

func payloadString(ev council.Event, key string) string {
	if ev.Payload == nil {
		return ""
	}
	if v, ok := ev.Payload[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// renderTranscript renders the human-readable running transcript. It is
// regenerated from the full event list on every flush so the markdown can
// never drift from the structured log.
func renderTranscript(sessionID string, events []council.Event) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Session %s\n", sessionID))

	for _, ev := range events {
		switch ev.Type {
		case council.EventSessionStarted:
			sb.WriteString(fmt.Sprintf("\nTopic: %s\n", payloadString(ev, "humanPrompt")))
		case council.EventLeaderElectionBallot:
			sb.WriteString(fmt.Sprintf("- %s votes for **%s** as leader: %s\n",
				ev.ActorID, payloadString(ev, "candidateId"), payloadString(ev, "rationale")))
		case council.EventLeaderElected:
			sb.WriteString(fmt.Sprintf("\n**Leader elected: %s**\n", payloadString(ev, "leaderId")))
		case council.EventPhaseStarted:
			sb.WriteString(fmt.Sprintf("\n## Phase: %s\n\n%s\n", ev.PhaseID, payloadString(ev, "goal")))
		case council.EventRoundStarted:
			sb.WriteString(fmt.Sprintf("\n### Round %d\n", ev.Round))
		case council.EventMessageContributed:
			sb.WriteString(fmt.Sprintf("\n**%s:** %s\n", ev.ActorID, payloadString(ev, "message")))
		case council.EventPassRecorded:
			sb.WriteString(fmt.Sprintf("\n*%s passes: %s*\n", ev.ActorID, payloadString(ev, "reason")))
		case council.EventMotionCalled:
			sb.WriteString(fmt.Sprintf("\n> **Motion %s** by %s: %s\n> %s\n> Decision if passed: %s\n",
				payloadString(ev, "motionId"), ev.ActorID, payloadString(ev, "title"),
				payloadString(ev, "text"), payloadString(ev, "decisionIfPass")))
		case council.EventSecondingResponse:
			verdict := "declines to second"
			if payloadString(ev, "second") == "true" {
				verdict = "offers to second"
			}
			sb.WriteString(fmt.Sprintf("> %s %s: %s\n", ev.ActorID, verdict, payloadString(ev, "rationale")))
		case council.EventMotionSeconded:
			sb.WriteString(fmt.Sprintf("> **Seconded by %s.** The motion proceeds to a vote.\n", ev.ActorID))
		case council.EventMotionNotSeconded:
			sb.WriteString("> **No second.** The motion dies and discussion resumes.\n")
		case council.EventVoteCast:
			sb.WriteString(fmt.Sprintf("> %s votes **%s**: %s\n",
				ev.ActorID, payloadString(ev, "ballot"), payloadString(ev, "rationale")))
		case council.EventVoteResult:
			sb.WriteString(fmt.Sprintf("> **Result:** passed=%s (%s yes of %s, required %s)\n",
				payloadString(ev, "passed"), payloadString(ev, "yesVotes"),
				payloadString(ev, "totalCouncilSize"), payloadString(ev, "requiredYes")))
		case council.EventRoundLimitReached:
			sb.WriteString(fmt.Sprintf("\n*Round limit reached in phase %s.*\n", ev.PhaseID))
		case council.EventPhaseCompleted:
			sb.WriteString(fmt.Sprintf("\n**Phase %s completed** (%s): %s\n",
				ev.PhaseID, payloadString(ev, "endedBy"), payloadString(ev, "finalResolution")))
		case council.EventLeaderSummaryCreated:
			sb.WriteString("\n## Leader Summary\n\nRecorded in leader-summary.md.\n")
		case council.EventDocumentDraftWritten, council.EventDocumentRevisionWritten:
			sb.WriteString(fmt.Sprintf("\n*Documentation draft v%s written.*\n", payloadString(ev, "revision")))
		case council.EventDocumentApprovalVoteResult:
			sb.WriteString(fmt.Sprintf("*Approval vote on draft v%s: passed=%s (%s yes of %s)*\n",
				payloadString(ev, "revision"), payloadString(ev, "passed"),
				payloadString(ev, "yesVotes"), payloadString(ev, "totalCouncilSize")))
		case council.EventSessionClosed:
			sb.WriteString("\n---\n\nSession closed.\n")
		}
	}
	return sb.String()
}
