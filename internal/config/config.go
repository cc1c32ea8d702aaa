// Package config loads and validates the council configuration.
// JSON is the canonical format; YAML is accepted for hand-written configs.
// A Config is loaded once per invocation and never mutated afterwards.
package config

// Trigger names the condition under which a phase transition fires.
type Trigger string

const (
	TriggerMajorityVote Trigger = "MAJORITY_VOTE"
	TriggerRoundLimit   Trigger = "ROUND_LIMIT"
	TriggerAlways       Trigger = "ALWAYS"
)

// FallbackAction is what happens when a phase exhausts its rounds and no
// transition matches.
type FallbackAction string

const (
	FallbackEndSession FallbackAction = "END_SESSION"
	FallbackTransition FallbackAction = "TRANSITION"
)

// Verbosity levels for the phase-context packet injected into prompts.
const (
	VerbosityMinimal  = "minimal"
	VerbosityStandard = "standard"
	VerbosityFull     = "full"
)

// Output types.
const (
	OutputNone          = "none"
	OutputDocumentation = "documentation"
)

// Config is the immutable input specification for a council.
type Config struct {
	CouncilName string `json:"councilName" yaml:"councilName" validate:"required"`
	Purpose     string `json:"purpose" yaml:"purpose" validate:"required"`

	SessionPolicy SessionPolicy `json:"sessionPolicy" yaml:"sessionPolicy"`
	Phases        []Phase       `json:"phases" yaml:"phases" validate:"required,min=1,dive"`

	Output              OutputPolicy        `json:"output" yaml:"output"`
	DocumentationReview DocumentationReview `json:"documentationReview" yaml:"documentationReview"`

	Members   []Member `json:"members" yaml:"members" validate:"required,min=3,dive"`
	TurnOrder []string `json:"turnOrder,omitempty" yaml:"turnOrder,omitempty"`

	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
}

// SessionPolicy bounds the overall session.
type SessionPolicy struct {
	EntryPhaseID          string `json:"entryPhaseId" yaml:"entryPhaseId" validate:"required"`
	MaxPhaseTransitions   int    `json:"maxPhaseTransitions" yaml:"maxPhaseTransitions" validate:"min=1"`
	PhaseContextVerbosity string `json:"phaseContextVerbosity" yaml:"phaseContextVerbosity" validate:"oneof=minimal standard full"`
}

// Phase is one node in the deliberation graph.
type Phase struct {
	ID             string   `json:"id" yaml:"id" validate:"required"`
	Goal           string   `json:"goal" yaml:"goal" validate:"required"`
	PromptGuidance []string `json:"promptGuidance,omitempty" yaml:"promptGuidance,omitempty"`

	Deliverables []Deliverable `json:"deliverables,omitempty" yaml:"deliverables,omitempty"`

	Governance     Governance     `json:"governance" yaml:"governance"`
	StopConditions StopConditions `json:"stopConditions" yaml:"stopConditions"`
	MemoryPolicy   MemoryPolicy   `json:"memoryPolicy" yaml:"memoryPolicy"`

	EvidenceRequirements EvidenceRequirements `json:"evidenceRequirements" yaml:"evidenceRequirements"`
	QualityGates         []string             `json:"qualityGates,omitempty" yaml:"qualityGates,omitempty"`

	Fallback    Fallback         `json:"fallback" yaml:"fallback"`
	Transitions []TransitionRule `json:"transitions,omitempty" yaml:"transitions,omitempty" validate:"dive"`
}

// Deliverable is an expected output of a phase.
type Deliverable struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// Governance controls how motions are seconded and tallied in a phase.
type Governance struct {
	RequireSeconding  bool    `json:"requireSeconding" yaml:"requireSeconding"`
	MajorityThreshold float64 `json:"majorityThreshold" yaml:"majorityThreshold" validate:"gt=0,lte=1"`
	AbstainCountsAsNo bool    `json:"abstainCountsAsNo" yaml:"abstainCountsAsNo"`
}

// StopConditions bound a phase's round loop.
type StopConditions struct {
	MaxRounds         int  `json:"maxRounds" yaml:"maxRounds" validate:"min=1"`
	EndOnMajorityVote bool `json:"endOnMajorityVote" yaml:"endOnMajorityVote"`
}

// MemoryPolicy controls memory reads during the phase and whether the
// session-close write is permitted.
type MemoryPolicy struct {
	ReadMemberMemory         bool `json:"readMemberMemory" yaml:"readMemberMemory"`
	WriteMemberMemory        bool `json:"writeMemberMemory" yaml:"writeMemberMemory"`
	WriteCouncilMemory       bool `json:"writeCouncilMemory" yaml:"writeCouncilMemory"`
	IncludePriorPhaseSummary bool `json:"includePriorPhaseSummary" yaml:"includePriorPhaseSummary"`
}

// EvidenceRequirements drive the open-evidence-gap list in the phase context.
type EvidenceRequirements struct {
	MinCitations               int  `json:"minCitations" yaml:"minCitations"`
	RequireExplicitAssumptions bool `json:"requireExplicitAssumptions" yaml:"requireExplicitAssumptions"`
	RequireRiskRegister        bool `json:"requireRiskRegister" yaml:"requireRiskRegister"`
}

// Fallback is applied when a phase hits its round limit with no passing motion.
type Fallback struct {
	Resolution          string         `json:"resolution" yaml:"resolution"`
	Action              FallbackAction `json:"action" yaml:"action" validate:"oneof=END_SESSION TRANSITION"`
	TransitionToPhaseID string         `json:"transitionToPhaseId,omitempty" yaml:"transitionToPhaseId,omitempty"`
}

// TransitionRule is one outgoing edge of a phase.
type TransitionRule struct {
	To       string  `json:"to" yaml:"to" validate:"required"`
	When     Trigger `json:"when" yaml:"when" validate:"oneof=MAJORITY_VOTE ROUND_LIMIT ALWAYS"`
	Priority int     `json:"priority" yaml:"priority" validate:"min=0"`
}

// OutputPolicy selects the session's final artifact shape.
type OutputPolicy struct {
	Type string `json:"type" yaml:"type" validate:"oneof=none documentation"`
}

// DocumentationReview bounds the draft/approve/revise loop.
type DocumentationReview struct {
	MaxRevisionRounds int `json:"maxRevisionRounds" yaml:"maxRevisionRounds" validate:"min=0"`
}

// Member is one council participant.
type Member struct {
	ID           string             `json:"id" yaml:"id" validate:"required"`
	Name         string             `json:"name" yaml:"name" validate:"required"`
	Role         string             `json:"role" yaml:"role" validate:"required"`
	SystemPrompt string             `json:"systemPrompt" yaml:"systemPrompt"`
	Traits       []string           `json:"traits,omitempty" yaml:"traits,omitempty"`
	FocusWeights map[string]float64 `json:"focusWeights,omitempty" yaml:"focusWeights,omitempty"`
	Model        ModelRef           `json:"model" yaml:"model"`
}

// ModelRef points a member at a concrete model behind a provider.
type ModelRef struct {
	Provider    string   `json:"provider" yaml:"provider" validate:"oneof=openai gemini mock"`
	Model       string   `json:"model" yaml:"model"`
	BaseURL     string   `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	APIKeyEnv   string   `json:"apiKeyEnv,omitempty" yaml:"apiKeyEnv,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
}

// StorageConfig holds the artifact and memory roots.
type StorageConfig struct {
	RootDir   string `json:"rootDir" yaml:"rootDir" validate:"required"`
	MemoryDir string `json:"memoryDir" yaml:"memoryDir" validate:"required"`
}

// ExecutionConfig gates the execution handoff.
type ExecutionConfig struct {
	RequireHumanApproval   bool   `json:"requireHumanApproval" yaml:"requireHumanApproval"`
	DefaultExecutorProfile string `json:"defaultExecutorProfile" yaml:"defaultExecutorProfile"`
}

// PhaseByID returns the phase with the given id, or nil.
func (c *Config) PhaseByID(id string) *Phase {
	for i := range c.Phases {
		if c.Phases[i].ID == id {
			return &c.Phases[i]
		}
	}
	return nil
}

// MemberByID returns the member with the given id, or nil.
func (c *Config) MemberByID(id string) *Member {
	for i := range c.Members {
		if c.Members[i].ID == id {
			return &c.Members[i]
		}
	}
	return nil
}

// SpeakingOrder returns the effective turn order: config.turnOrder when set,
// otherwise member declaration order. Applied identically to every round.
func (c *Config) SpeakingOrder() []string {
	if len(c.TurnOrder) > 0 {
		out := make([]string, len(c.TurnOrder))
		copy(out, c.TurnOrder)
		return out
	}
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		out = append(out, m.ID)
	}
	return out
}
