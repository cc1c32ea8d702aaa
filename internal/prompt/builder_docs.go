package prompt

import (
	"fmt"
	"strings"

	"quorum/internal/config"
	"quorum/internal/council"
)

// DocumentationInput feeds the leader's first draft.
type DocumentationInput struct {
	CouncilName     string
	Purpose         string
	Leader          config.Member
	HumanPrompt     string
	FinalResolution string
	PhaseResults    []council.PhaseResult
}

// BuildDocumentationPrompt renders the documentation-output prompt. Unlike
// the protocol steps this asks for markdown text, not JSON.
func BuildDocumentationPrompt(in DocumentationInput) (system, user string) {
	common := CommonInput{CouncilName: in.CouncilName, Purpose: in.Purpose, Member: in.Leader}
	var sb strings.Builder
	sb.WriteString("## Documentation Draft\n")
	sb.WriteString("The council resolved to produce a documentation artifact. As leader, write it now.\n\n")
	sb.WriteString("Topic:\n" + in.HumanPrompt + "\n\n")
	sb.WriteString("Final resolution:\n" + in.FinalResolution + "\n\n")
	sb.WriteString("Phase outcomes:\n")
	sb.WriteString(RenderPhaseResults(in.PhaseResults))
	sb.WriteString("\nWrite the complete document in markdown. Respond with the document only; no preamble, no fences around the whole document.\n")
	return SystemPrompt(common), sb.String()
}

// RevisionInput feeds a revised draft after a failed approval vote.
type RevisionInput struct {
	CouncilName  string
	Purpose      string
	Leader       config.Member
	PriorDraft   string
	FeedbackJSON string
	Revision     int
}

// BuildRevisionPrompt renders the revise-using-feedback prompt.
func BuildRevisionPrompt(in RevisionInput) (system, user string) {
	common := CommonInput{CouncilName: in.CouncilName, Purpose: in.Purpose, Member: in.Leader}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documentation Revision %d\n", in.Revision))
	sb.WriteString("Your previous draft did not receive council approval. Revise it using the structured feedback below. Resolve every critical blocker you can; keep what the council did not object to.\n\n")
	sb.WriteString("### Previous Draft\n")
	sb.WriteString(in.PriorDraft + "\n\n")
	sb.WriteString("### Reviewer Feedback (JSON)\n")
	sb.WriteString(in.FeedbackJSON + "\n\n")
	sb.WriteString("Respond with the full revised document in markdown; no preamble.\n")
	return SystemPrompt(common), sb.String()
}

// BuildApprovalVotePrompt renders the documentation approval ballot.
func BuildApprovalVotePrompt(in CommonInput, draft string, revision int) (system, user string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documentation Approval Vote (draft v%d)\n", revision))
	sb.WriteString("Review the draft below and vote on whether it is fit to publish as the council's documentation artifact.\n\n")
	sb.WriteString("### Draft\n")
	sb.WriteString(draft + "\n\n")
	sb.WriteString(`Schema: {"ballot":"YES"|"NO"|"ABSTAIN","rationale":"..."}` + "\n")
	sb.WriteString("\n" + jsonContract)
	return SystemPrompt(in), sb.String()
}

// BuildFeedbackPrompt renders the structured-feedback prompt sent to every
// reviewer that did not vote YES.
func BuildFeedbackPrompt(in CommonInput, draft string, revision int) (system, user string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documentation Review Feedback (draft v%d)\n", revision))
	sb.WriteString("You did not approve this draft. Provide structured feedback the leader can act on.\n\n")
	sb.WriteString("### Draft\n")
	sb.WriteString(draft + "\n\n")
	sb.WriteString("List at most 5 critical blockers (things that MUST change before approval) and at most 6 suggested changes.\n\n")
	sb.WriteString(`Schema: {"criticalBlockers":[{"id":"B1","section":"...","problem":"...","impact":"...","requiredChange":"...","severity":"low|medium|high"}],"suggestedChanges":["..."]}` + "\n")
	sb.WriteString("\n" + jsonContract)
	return SystemPrompt(in), sb.String()
}
