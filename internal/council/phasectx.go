package council

import (
	"encoding/json"
	"fmt"
	"strings"

	"quorum/internal/config"
)

// PhaseContextInput carries everything the phase-context packet needs.
type PhaseContextInput struct {
	Phase     *config.Phase
	AllPhases []config.Phase
	Round     int
	MaxRounds int
	TurnIndex int
	Verbosity string
}

// phaseContextPacket is the full-verbosity JSON form of the packet.
type phaseContextPacket struct {
	PhaseID      string            `json:"phaseId"`
	Goal         string            `json:"goal"`
	Round        int               `json:"round"`
	MaxRounds    int               `json:"maxRounds"`
	TurnIndex    int               `json:"turnIndex"`
	Deliverables []string          `json:"deliverables,omitempty"`
	QualityGates []string          `json:"qualityGates,omitempty"`
	EvidenceGaps []string          `json:"evidenceGaps,omitempty"`
	NextPhases   map[string]string `json:"nextPhases,omitempty"`
}

// RenderPhaseContext builds the phase-context packet injected into every
// prompt of the phase. Verbosity grows the packet monotonically:
// minimal adds identity, counters, and legal next phases; standard adds
// deliverables, quality gates, and open evidence gaps; full appends a
// condensed graph digest and the packet JSON.
func RenderPhaseContext(in PhaseContextInput) string {
	var sb strings.Builder
	p := in.Phase

	sb.WriteString(fmt.Sprintf("Phase: %s (%s)\n", p.ID, p.Goal))
	sb.WriteString(fmt.Sprintf("Round %d of %d (session turn %d)\n", in.Round, in.MaxRounds, in.TurnIndex))

	next := legalNextPhases(p)
	if len(next) > 0 {
		sb.WriteString("Legal next phases:\n")
		for _, n := range next {
			sb.WriteString("  - " + n + "\n")
		}
	} else {
		sb.WriteString("This is a terminal phase; the session ends when it closes.\n")
	}

	if in.Verbosity == config.VerbosityMinimal {
		return sb.String()
	}

	if len(p.Deliverables) > 0 {
		sb.WriteString("Pending deliverables:\n")
		for _, d := range p.Deliverables {
			marker := "optional"
			if d.Required {
				marker = "required"
			}
			sb.WriteString(fmt.Sprintf("  - %s (%s): %s\n", d.ID, marker, d.Description))
		}
	}
	if len(p.QualityGates) > 0 {
		sb.WriteString("Quality gates:\n")
		for _, g := range p.QualityGates {
			sb.WriteString("  - " + g + "\n")
		}
	}
	gaps := evidenceGaps(p.EvidenceRequirements)
	if len(gaps) > 0 {
		sb.WriteString("Open evidence gaps:\n")
		for _, g := range gaps {
			sb.WriteString("  - " + g + "\n")
		}
	}

	if in.Verbosity != config.VerbosityFull {
		return sb.String()
	}

	sb.WriteString("Phase graph digest:\n")
	for _, node := range in.AllPhases {
		outs := make([]string, 0, len(node.Transitions))
		for _, tr := range node.Transitions {
			outs = append(outs, fmt.Sprintf("%s[%s]", tr.To, tr.When))
		}
		if len(outs) == 0 {
			outs = append(outs, "terminal")
		}
		sb.WriteString(fmt.Sprintf("  %s -> %s\n", node.ID, strings.Join(outs, ", ")))
	}

	packet := phaseContextPacket{
		PhaseID:      p.ID,
		Goal:         p.Goal,
		Round:        in.Round,
		MaxRounds:    in.MaxRounds,
		TurnIndex:    in.TurnIndex,
		QualityGates: p.QualityGates,
		EvidenceGaps: gaps,
		NextPhases:   map[string]string{},
	}
	for _, d := range p.Deliverables {
		packet.Deliverables = append(packet.Deliverables, d.ID)
	}
	for _, tr := range p.Transitions {
		packet.NextPhases[tr.To] = string(tr.When)
	}
	raw, err := json.Marshal(packet)
	if err == nil {
		sb.WriteString("Packet: " + string(raw) + "\n")
	}

	return sb.String()
}

func legalNextPhases(p *config.Phase) []string {
	out := make([]string, 0, len(p.Transitions)+1)
	for _, tr := range p.Transitions {
		out = append(out, fmt.Sprintf("%s (on %s, priority %d)", tr.To, tr.When, tr.Priority))
	}
	if p.Fallback.Action == config.FallbackTransition {
		out = append(out, fmt.Sprintf("%s (round-limit fallback)", p.Fallback.TransitionToPhaseID))
	}
	return out
}

func evidenceGaps(req config.EvidenceRequirements) []string {
	var gaps []string
	if req.MinCitations > 0 {
		gaps = append(gaps, fmt.Sprintf("cite at least %d sources for factual claims", req.MinCitations))
	}
	if req.RequireExplicitAssumptions {
		gaps = append(gaps, "state assumptions explicitly")
	}
	if req.RequireRiskRegister {
		gaps = append(gaps, "maintain a risk register for the proposed course of action")
	}
	return gaps
}
