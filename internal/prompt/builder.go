package prompt

import (
	"fmt"
	"strings"

	"quorum/internal/config"
	"quorum/internal/council"
)

// Every JSON-producing prompt ends with this contract. Single-line output
// keeps the transcript greppable and the extractor trivial; literal
// newlines inside string values are the most common way models break
// strict parsers.
const jsonContract = `Respond with a SINGLE LINE of strict JSON matching the schema above.
Do not wrap the JSON in markdown fences. Do not add commentary.
Never put literal newline characters inside JSON string values; use \n instead.`

// CommonInput is shared by the per-member protocol prompts.
type CommonInput struct {
	CouncilName      string
	Purpose          string
	Member           config.Member
	PhaseContext     string
	TranscriptWindow string
	MemorySnapshot   string
}

// SystemPrompt renders the member's standing instructions: its configured
// system prompt plus council identity, role, and traits.
func SystemPrompt(in CommonInput) string {
	var sb strings.Builder
	if in.Member.SystemPrompt != "" {
		sb.WriteString(in.Member.SystemPrompt)
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("You are %s, a member of the council %q.\n", in.Member.Name, in.CouncilName))
	sb.WriteString("Council purpose: " + in.Purpose + "\n")
	sb.WriteString("Your role: " + in.Member.Role + "\n")
	if len(in.Member.Traits) > 0 {
		sb.WriteString("Your traits: " + strings.Join(in.Member.Traits, ", ") + "\n")
	}
	if len(in.Member.FocusWeights) > 0 {
		sb.WriteString("Focus weights: ")
		first := true
		for _, k := range sortedKeys(in.Member.FocusWeights) {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%.2f", k, in.Member.FocusWeights[k]))
			first = false
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeCommonContext(sb *strings.Builder, in CommonInput) {
	if in.PhaseContext != "" {
		sb.WriteString("## Phase Context\n")
		sb.WriteString(in.PhaseContext)
		sb.WriteString("\n")
	}
	if in.MemorySnapshot != "" {
		sb.WriteString("## Your Memory\n")
		sb.WriteString(in.MemorySnapshot)
		sb.WriteString("\n")
	}
	if in.TranscriptWindow != "" {
		sb.WriteString("## Recent Transcript\n")
		sb.WriteString(in.TranscriptWindow)
		sb.WriteString("\n")
	}
}

// TurnPromptInput feeds one member's discussion turn.
type TurnPromptInput struct {
	Common            CommonInput
	HumanPrompt       string
	PromptGuidance    []string
	Round             int
	MaxRounds         int
	RemainingTurns    int
	PriorPhaseSummary string
}

// BuildTurnPrompt renders the discussion-turn prompt.
func BuildTurnPrompt(in TurnPromptInput) (system, user string) {
	var sb strings.Builder
	sb.WriteString("## Deliberation Topic\n")
	sb.WriteString(in.HumanPrompt + "\n\n")
	if in.PriorPhaseSummary != "" {
		sb.WriteString("## Prior Phase Outcomes\n")
		sb.WriteString(in.PriorPhaseSummary + "\n")
	}
	writeCommonContext(&sb, in.Common)
	if len(in.PromptGuidance) > 0 {
		sb.WriteString("## Guidance For This Phase\n")
		for _, g := range in.PromptGuidance {
			sb.WriteString("- " + g + "\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\nIt is your turn to speak. This is round %d of %d; you have %d turn(s) left in this phase, counting this one.\n\n",
		in.Round, in.MaxRounds, in.RemainingTurns))
	sb.WriteString("Choose exactly one action:\n")
	sb.WriteString(`- CONTRIBUTE: add substance to the discussion. {"action":"CONTRIBUTE","message":"..."}` + "\n")
	sb.WriteString(`- PASS: yield this turn. {"action":"PASS","reason":"...","note":"..."}` + "\n")
	sb.WriteString(`- CALL_VOTE: move a formal motion. {"action":"CALL_VOTE","title":"...","text":"...","decisionIfPass":"..."}` + "\n\n")
	sb.WriteString(renderLengthTable())
	sb.WriteString("\n" + jsonContract)
	return SystemPrompt(in.Common), sb.String()
}

// BuildSecondingPrompt renders the seconding prompt sent to non-callers.
func BuildSecondingPrompt(in CommonInput, motion council.Motion, proposerName string) (system, user string) {
	var sb strings.Builder
	writeCommonContext(&sb, in)
	sb.WriteString("## Motion On The Floor\n")
	sb.WriteString(fmt.Sprintf("Proposed by %s.\n", proposerName))
	sb.WriteString("Title: " + motion.Title + "\n")
	sb.WriteString("Text: " + motion.Text + "\n")
	sb.WriteString("Decision if passed: " + motion.DecisionIfPass + "\n\n")
	sb.WriteString("Do you second this motion so it can proceed to a vote? Seconding is not agreement; it only means the motion deserves a vote.\n\n")
	sb.WriteString(`Schema: {"second":true|false,"rationale":"..."}` + "\n")
	sb.WriteString(renderLengthTable())
	sb.WriteString("\n" + jsonContract)
	return SystemPrompt(in), sb.String()
}

// BuildVotePrompt renders the blind-ballot prompt. Ballots are collected in
// parallel; no other member's vote appears anywhere in this prompt.
func BuildVotePrompt(in CommonInput, motion council.Motion, proposerName string) (system, user string) {
	var sb strings.Builder
	writeCommonContext(&sb, in)
	sb.WriteString("## Vote\n")
	sb.WriteString(fmt.Sprintf("The motion %q (proposed by %s, seconded) is now put to a vote.\n", motion.Title, proposerName))
	sb.WriteString("Text: " + motion.Text + "\n")
	sb.WriteString("Decision if passed: " + motion.DecisionIfPass + "\n\n")
	sb.WriteString("Cast your ballot. You will not see other ballots before yours is recorded.\n\n")
	sb.WriteString(`Schema: {"ballot":"YES"|"NO"|"ABSTAIN","rationale":"..."}` + "\n")
	sb.WriteString(renderLengthTable())
	sb.WriteString("\n" + jsonContract)
	return SystemPrompt(in), sb.String()
}

// ElectionInput feeds the leader-election ballot prompt.
type ElectionInput struct {
	CouncilName string
	Purpose     string
	Member      config.Member
	Candidates  []config.Member
	HumanPrompt string
}

// BuildElectionPrompt renders the leader-election prompt.
func BuildElectionPrompt(in ElectionInput) (system, user string) {
	common := CommonInput{CouncilName: in.CouncilName, Purpose: in.Purpose, Member: in.Member}
	var sb strings.Builder
	sb.WriteString("## Leader Election\n")
	sb.WriteString("The council must elect a leader before deliberation begins. The leader speaks last on summaries and drafts any final documentation.\n\n")
	sb.WriteString("Topic for this session:\n" + in.HumanPrompt + "\n\n")
	sb.WriteString("Candidates:\n")
	for _, c := range in.Candidates {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", c.ID, c.Name, c.Role))
	}
	sb.WriteString("\nVote for the member best suited to lead this session. You may vote for yourself.\n\n")
	sb.WriteString(`Schema: {"candidateId":"...","rationale":"..."}` + "\n")
	sb.WriteString("\n" + jsonContract)
	return SystemPrompt(common), sb.String()
}

// SummaryInput feeds the leader-summary prompt.
type SummaryInput struct {
	CouncilName  string
	Purpose      string
	Leader       config.Member
	HumanPrompt  string
	PhaseResults []council.PhaseResult
}

// BuildLeaderSummaryPrompt renders the JSON-structured closing-summary prompt.
func BuildLeaderSummaryPrompt(in SummaryInput) (system, user string) {
	common := CommonInput{CouncilName: in.CouncilName, Purpose: in.Purpose, Member: in.Leader}
	var sb strings.Builder
	sb.WriteString("## Closing Summary\n")
	sb.WriteString("As elected leader you must summarize the session for the record.\n\n")
	sb.WriteString("Topic:\n" + in.HumanPrompt + "\n\n")
	sb.WriteString("Phase outcomes:\n")
	sb.WriteString(RenderPhaseResults(in.PhaseResults))
	sb.WriteString("\nProduce the closing summary. Set requiresExecution=true only when the resolution describes work that must actually be carried out, and in that case include an executionBrief a competent executor could follow.\n\n")
	sb.WriteString(`Schema: {"summaryMarkdown":"...","finalResolution":"...","requiresExecution":true|false,"executionBrief":"..."}` + "\n")
	sb.WriteString("\n" + jsonContract)
	return SystemPrompt(common), sb.String()
}

// RenderPhaseResults renders phase outcomes for prompts and artifacts.
func RenderPhaseResults(results []council.PhaseResult) string {
	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s (%s): ended by %s after %d round(s). Resolution: %s\n",
			i+1, r.PhaseID, r.PhaseGoal, r.EndedBy, r.RoundsCompleted, r.FinalResolution))
	}
	return sb.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
