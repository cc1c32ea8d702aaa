package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quorum/internal/config"
	"quorum/internal/council"
)

// Store owns the memory directory.
type Store struct {
	dir   string
	clock council.Clock
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, clock council.Clock) *Store {
	return &Store{dir: dir, clock: clock}
}

// Dir returns the memory root.
func (s *Store) Dir() string { return s.dir }

// EnsureMember creates the member's memory directory, seeds an empty
// structured memory if absent, and writes the agent profile.
func (s *Store) EnsureMember(m config.Member) error {
	memberDir := filepath.Join(s.dir, m.ID)
	if err := os.MkdirAll(memberDir, 0o755); err != nil {
		return fmt.Errorf("create member memory dir: %w", err)
	}

	profilePath := filepath.Join(memberDir, "AGENT.md")
	if _, err := os.Stat(profilePath); os.IsNotExist(err) {
		if err := os.WriteFile(profilePath, []byte(renderProfile(m)), 0o644); err != nil {
			return fmt.Errorf("write agent profile: %w", err)
		}
	}

	memPath := filepath.Join(memberDir, "MEMORY.json")
	if _, err := os.Stat(memPath); os.IsNotExist(err) {
		seed := MemberMemory{MemberID: m.ID, Records: []Record{}, RecentSessions: []string{}}
		if err := s.saveMember(&seed); err != nil {
			return err
		}
	}
	return nil
}

// MemberPromptContext returns the member's pre-computed prompt-context
// snapshot. Empty when the member has no memory yet; there are no
// mid-session writes, so this is stable for the whole session.
func (s *Store) MemberPromptContext(memberID string) (string, error) {
	mem, err := s.loadMember(memberID)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return mem.PromptContext, nil
}

func (s *Store) memberPath(memberID string) string {
	return filepath.Join(s.dir, memberID, "MEMORY.json")
}

func (s *Store) loadMember(memberID string) (*MemberMemory, error) {
	data, err := os.ReadFile(s.memberPath(memberID))
	if err != nil {
		return nil, err
	}
	var mem MemberMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		return nil, fmt.Errorf("parse member memory %s: %w", memberID, err)
	}
	return &mem, nil
}

func (s *Store) saveMember(mem *MemberMemory) error {
	data, err := json.MarshalIndent(mem, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal member memory: %w", err)
	}
	memberDir := filepath.Join(s.dir, mem.MemberID)
	if err := os.MkdirAll(memberDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.memberPath(mem.MemberID), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write member memory: %w", err)
	}
	return os.WriteFile(filepath.Join(memberDir, "MEMORY.md"), []byte(renderMemberMarkdown(mem)), 0o644)
}

func (s *Store) loadCouncil(councilName string) (*CouncilMemory, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "COUNCIL.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &CouncilMemory{CouncilName: councilName, Records: []Record{}, RecentSessions: []string{}}, nil
		}
		return nil, err
	}
	var mem CouncilMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		return nil, fmt.Errorf("parse council memory: %w", err)
	}
	return &mem, nil
}

func (s *Store) saveCouncil(mem *CouncilMemory) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(mem, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal council memory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, "COUNCIL.json"), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write council memory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, "COUNCIL.md"), []byte(renderCouncilMarkdown(mem)), 0o644)
}

func (s *Store) now() string {
	return s.clock.Now().Format(time.RFC3339)
}

// touchRecent prepends sessionID to a most-recent-first digest list and
// truncates it to limit.
func touchRecent(recent []string, sessionID string, limit int) []string {
	out := []string{sessionID}
	for _, id := range recent {
		if id != sessionID {
			out = append(out, id)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// upsert inserts rec or, when a record with the same id exists, refreshes
// it in place (summary, status, importance, confidence, evidence).
func upsert(records []Record, rec Record, now string) []Record {
	for i := range records {
		if records[i].ID == rec.ID {
			records[i].Summary = rec.Summary
			records[i].Status = rec.Status
			records[i].Importance = rec.Importance
			records[i].Confidence = rec.Confidence
			records[i].Evidence = append(records[i].Evidence, rec.Evidence...)
			records[i].UpdatedAt = now
			return records
		}
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return append(records, rec)
}
