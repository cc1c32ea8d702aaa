// Package memory persists the bounded structured memory of each member and
// of the council as a whole. Memory is read at turn entry (as a
// pre-computed prompt-context snapshot) and written exactly once, at
// session close. Canonical storage is MEMORY.json / COUNCIL.json; the .md
// files are renderings regenerated on every write.
package memory

// RecordKind classifies a durable knowledge item.
type RecordKind string

const (
	KindPreference  RecordKind = "preference"
	KindConstraint  RecordKind = "constraint"
	KindDecision    RecordKind = "decision"
	KindAssumption  RecordKind = "assumption"
	KindRiskPattern RecordKind = "risk_pattern"
	KindLesson      RecordKind = "lesson"
	KindOpenLoop    RecordKind = "open_loop"
	KindOutcome     RecordKind = "outcome"
)

// RecordStatus tracks a record's lifecycle.
type RecordStatus string

const (
	StatusActive     RecordStatus = "active"
	StatusResolved   RecordStatus = "resolved"
	StatusSuperseded RecordStatus = "superseded"
	StatusStale      RecordStatus = "stale"
)

// EvidenceRef ties a record to the session that produced it.
type EvidenceRef struct {
	SessionID string `json:"sessionId"`
	Note      string `json:"note,omitempty"`
}

// Record is one durable knowledge item. Importance is 1–5, confidence is
// in [0,1].
type Record struct {
	ID         string        `json:"id"`
	Kind       RecordKind    `json:"kind"`
	Status     RecordStatus  `json:"status"`
	Summary    string        `json:"summary"`
	Importance int           `json:"importance"`
	Confidence float64       `json:"confidence"`
	Evidence   []EvidenceRef `json:"evidence,omitempty"`
	CreatedAt  string        `json:"createdAt"`
	UpdatedAt  string        `json:"updatedAt"`
}

// MemberMemory is the canonical MEMORY.json document. RecentSessions is
// most-recent-first. PromptContext is the snapshot served to the next
// session's prompts, pre-computed at write time.
type MemberMemory struct {
	MemberID       string   `json:"memberId"`
	Records        []Record `json:"records"`
	RecentSessions []string `json:"recentSessions"`
	PromptContext  string   `json:"promptContext"`
}

// CouncilMemory is the canonical COUNCIL.json document.
type CouncilMemory struct {
	CouncilName    string   `json:"councilName"`
	Records        []Record `json:"records"`
	RecentSessions []string `json:"recentSessions"`
}

// Bounds of the prune policy and prompt-context derivation.
const (
	maxMemberRecords   = 80
	maxCouncilRecords  = 80
	memberDigestLimit  = 40
	councilDigestLimit = 50
	fadeWindowSessions = 25
)

// Per-bucket caps for the prompt-context snapshot.
const (
	capConstraints  = 4
	capDecisions    = 5
	capRisks        = 4
	capOpenLoops    = 4
	capPreferences  = 3
	capAntiPatterns = 3
)
