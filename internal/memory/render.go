package memory

import (
	"fmt"
	"strings"

	"quorum/internal/config"
)

func renderProfile(m config.Member) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", m.Name))
	sb.WriteString(fmt.Sprintf("- **ID:** %s\n", m.ID))
	sb.WriteString(fmt.Sprintf("- **Role:** %s\n", m.Role))
	if len(m.Traits) > 0 {
		sb.WriteString(fmt.Sprintf("- **Traits:** %s\n", strings.Join(m.Traits, ", ")))
	}
	sb.WriteString(fmt.Sprintf("- **Model:** %s/%s\n", m.Model.Provider, m.Model.Model))
	return sb.String()
}

func renderRecords(sb *strings.Builder, records []Record) {
	byKind := map[RecordKind][]Record{}
	var order []RecordKind
	for _, r := range records {
		if _, ok := byKind[r.Kind]; !ok {
			order = append(order, r.Kind)
		}
		byKind[r.Kind] = append(byKind[r.Kind], r)
	}
	for _, kind := range order {
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", kind))
		for _, r := range byKind[kind] {
			sb.WriteString(fmt.Sprintf("- [%s, importance %d, confidence %.1f] %s\n",
				r.Status, r.Importance, r.Confidence, r.Summary))
		}
	}
}

func renderMemberMarkdown(mem *MemberMemory) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Memory: %s\n", mem.MemberID))
	sb.WriteString(fmt.Sprintf("\n%d record(s), %d recent session(s).\n", len(mem.Records), len(mem.RecentSessions)))
	renderRecords(&sb, mem.Records)
	if mem.PromptContext != "" {
		sb.WriteString("\n## Prompt Context Snapshot\n\n")
		sb.WriteString(mem.PromptContext)
	}
	return sb.String()
}

func renderCouncilMarkdown(mem *CouncilMemory) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Council Memory: %s\n", mem.CouncilName))
	sb.WriteString(fmt.Sprintf("\n%d record(s), %d recent session(s).\n", len(mem.Records), len(mem.RecentSessions)))
	renderRecords(&sb, mem.Records)
	return sb.String()
}
