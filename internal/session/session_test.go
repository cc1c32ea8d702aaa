package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorum/internal/config"
	"quorum/internal/council"
	"quorum/internal/memory"
	"quorum/internal/perception"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testClock() fixedClock {
	return fixedClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

// threeMemberConfig builds a minimal one-phase council rooted in temp dirs.
func threeMemberConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		CouncilName: "review-board",
		Purpose:     "Review proposals",
		SessionPolicy: config.SessionPolicy{
			EntryPhaseID:          "debate",
			MaxPhaseTransitions:   12,
			PhaseContextVerbosity: config.VerbosityStandard,
		},
		Phases: []config.Phase{
			{
				ID:   "debate",
				Goal: "Debate the proposal",
				Governance: config.Governance{
					RequireSeconding:  true,
					MajorityThreshold: 0.5,
					AbstainCountsAsNo: true,
				},
				StopConditions: config.StopConditions{MaxRounds: 1, EndOnMajorityVote: true},
				Fallback:       config.Fallback{Resolution: "No consensus reached.", Action: config.FallbackEndSession},
			},
		},
		Output: config.OutputPolicy{Type: config.OutputNone},
		Members: []config.Member{
			{ID: "m1", Name: "Ada", Role: "architect", Model: config.ModelRef{Provider: "mock"}},
			{ID: "m2", Name: "Ben", Role: "skeptic", Model: config.ModelRef{Provider: "mock"}},
			{ID: "m3", Name: "Cyn", Role: "pragmatist", Model: config.ModelRef{Provider: "mock"}},
		},
		Storage: config.StorageConfig{
			RootDir:   filepath.Join(root, "runtime"),
			MemoryDir: filepath.Join(root, "runtime", "memory"),
		},
	}
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, clients map[string]perception.ModelClient) *Orchestrator {
	t.Helper()
	o, err := New(context.Background(), cfg,
		WithClock(testClock()),
		WithIDGenerator(&council.SequentialIDGenerator{}),
		WithClients(clients),
		WithMemoryStore(memory.NewStore(cfg.Storage.MemoryDir, testClock())),
	)
	require.NoError(t, err)
	return o
}

func eventTypes(events []council.Event) []council.EventType {
	out := make([]council.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func eventsOfType(events []council.Event, t council.EventType) []council.Event {
	var out []council.Event
	for _, ev := range events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func loadEvents(t *testing.T, sessionDir string) []council.Event {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(sessionDir, "events.json"))
	require.NoError(t, err)
	var events []council.Event
	require.NoError(t, json.Unmarshal(data, &events))
	return events
}

const (
	voteForM2 = `{"candidateId":"m2","rationale":"best suited"}`
	yesVote   = `{"ballot":"YES","rationale":"agreed"}`
	noVote    = `{"ballot":"NO","rationale":"not yet"}`
	passTurn  = `{"action":"PASS","reason":"nothing to add"}`
	summaryOK = `{"summaryMarkdown":"## Summary\nWe agreed.","finalResolution":"adopt the cache","requiresExecution":false}`
	secondYes = `{"second":true,"rationale":"worth a vote"}`
	secondNo  = `{"second":false,"rationale":"premature"}`
)

func TestRunMotionPassesMidRound(t *testing.T) {
	cfg := threeMemberConfig(t)
	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(
			voteForM2,
			`{"action":"CONTRIBUTE","message":"we should adopt the cache"}`,
			secondYes,
			yesVote,
		),
		"m2": perception.NewScriptedClient(
			voteForM2,
			`{"action":"CALL_VOTE","title":"Adopt the cache","text":"Adopt the read-through cache design.","decisionIfPass":"adopt the cache"}`,
			yesVote,
			summaryOK,
		),
		"m3": perception.NewScriptedClient(
			voteForM2,
			secondNo,
			yesVote,
		),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Should we adopt the cache?", false)
	require.NoError(t, err)

	assert.Equal(t, "m2", res.LeaderID)
	assert.Equal(t, council.EndedByMajorityVote, res.EndedBy)
	assert.Equal(t, "adopt the cache", res.FinalResolution)
	require.Len(t, res.PhaseResults, 1)
	require.NotNil(t, res.PhaseResults[0].WinningMotion)
	assert.Equal(t, "motion-001", res.PhaseResults[0].WinningMotion.MotionID)

	events := loadEvents(t, res.SessionDir)

	// m3 never got a discussion turn: the passing vote closed the phase
	// mid-round.
	for _, ev := range eventsOfType(events, council.EventTurnAction) {
		assert.NotEqual(t, "m3", ev.ActorID)
	}

	// Ballots are emitted in member turn order after the blind join.
	casts := eventsOfType(events, council.EventVoteCast)
	require.Len(t, casts, 3)
	assert.Equal(t, "m1", casts[0].ActorID)
	assert.Equal(t, "m2", casts[1].ActorID)
	assert.Equal(t, "m3", casts[2].ActorID)
	for _, ev := range casts {
		assert.Equal(t, council.StateVoting, ev.State)
	}

	results := eventsOfType(events, council.EventVoteResult)
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0].Payload["passed"])
	assert.Equal(t, float64(3), results[0].Payload["yesVotes"])
	assert.Equal(t, float64(2), results[0].Payload["requiredYes"])

	// One seconding response per non-caller; first agreeing member in turn
	// order is the seconder.
	seconds := eventsOfType(events, council.EventSecondingResponse)
	require.Len(t, seconds, 2)
	seconded := eventsOfType(events, council.EventMotionSeconded)
	require.Len(t, seconded, 1)
	assert.Equal(t, "m1", seconded[0].ActorID)

	completed := eventsOfType(events, council.EventPhaseCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "MAJORITY_VOTE", completed[0].Payload["endedBy"])

	assert.FileExists(t, filepath.Join(res.SessionDir, "session.json"))
	assert.FileExists(t, filepath.Join(res.SessionDir, "transcript.md"))
	assert.FileExists(t, res.LeaderSummaryPath)
}

func TestRunMotionDiesWithoutSeconder(t *testing.T) {
	cfg := threeMemberConfig(t)
	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(
			voteForM2,
			`{"action":"CALL_VOTE","title":"Rewrite everything","text":"Full rewrite.","decisionIfPass":"rewrite"}`,
		),
		"m2": perception.NewScriptedClient(voteForM2, secondNo, passTurn, summaryOK),
		"m3": perception.NewScriptedClient(voteForM2, secondNo, passTurn),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "What should we do?", false)
	require.NoError(t, err)

	events := loadEvents(t, res.SessionDir)
	require.Len(t, eventsOfType(events, council.EventMotionNotSeconded), 1)
	assert.Empty(t, eventsOfType(events, council.EventVoteCast))

	// Discussion resumed: m2 and m3 still took their turns after the motion
	// died, then the round limit closed the phase.
	turns := eventsOfType(events, council.EventTurnAction)
	require.Len(t, turns, 3)
	assert.Equal(t, council.EndedByRoundLimit, res.EndedBy)
	assert.Equal(t, "No consensus reached.", res.FinalResolution)
	require.Len(t, eventsOfType(events, council.EventRoundLimitReached), 1)
}

func TestRunRoundLimitFallbackTransition(t *testing.T) {
	cfg := threeMemberConfig(t)
	cfg.Phases[0].Fallback = config.Fallback{
		Resolution:          "Debate stalled.",
		Action:              config.FallbackTransition,
		TransitionToPhaseID: "retrospective",
	}
	cfg.Phases = append(cfg.Phases, config.Phase{
		ID:             "retrospective",
		Goal:           "Capture lessons",
		Governance:     config.Governance{MajorityThreshold: 0.5},
		StopConditions: config.StopConditions{MaxRounds: 1},
		Fallback:       config.Fallback{Resolution: "Lessons recorded informally.", Action: config.FallbackEndSession},
	})

	// Everyone passes every turn; the default scripted response is PASS.
	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(voteForM2),
		"m2": perception.NewScriptedClient(voteForM2).Queue(passTurn, passTurn, summaryOK),
		"m3": perception.NewScriptedClient(voteForM2),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Topic", false)
	require.NoError(t, err)

	require.Len(t, res.PhaseResults, 2)
	assert.Equal(t, "debate", res.PhaseResults[0].PhaseID)
	assert.Equal(t, council.EndedByRoundLimit, res.PhaseResults[0].EndedBy)
	assert.Equal(t, "Debate stalled.", res.PhaseResults[0].FinalResolution)
	assert.Equal(t, "retrospective", res.PhaseResults[1].PhaseID)

	events := loadEvents(t, res.SessionDir)
	completed := eventsOfType(events, council.EventPhaseCompleted)
	require.Len(t, completed, 2)

	limits := eventsOfType(events, council.EventRoundLimitReached)
	require.Len(t, limits, 2)
	assert.Equal(t, "TRANSITION", limits[0].Payload["fallbackAction"])
	assert.Equal(t, "retrospective", limits[0].Payload["fallbackTransitionTo"])
}

func TestRunPhaseBudgetBreaksCycle(t *testing.T) {
	cfg := threeMemberConfig(t)
	cfg.SessionPolicy.MaxPhaseTransitions = 3
	cfg.Phases[0].Transitions = []config.TransitionRule{
		{To: "debate", When: config.TriggerAlways, Priority: 1},
	}

	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(voteForM2),
		"m2": perception.NewScriptedClient(voteForM2).Queue(passTurn, passTurn, passTurn, summaryOK),
		"m3": perception.NewScriptedClient(voteForM2),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Topic", false)
	require.NoError(t, err)

	assert.Len(t, res.PhaseResults, 3)
	assert.Equal(t, council.EndedByRoundLimit, res.EndedBy)
	assert.Contains(t, res.StopReason, "maxPhaseTransitions (3)")
}

func TestRunParseFallbackRecordsRiskPattern(t *testing.T) {
	cfg := threeMemberConfig(t)
	cfg.Phases[0].MemoryPolicy = config.MemoryPolicy{
		WriteMemberMemory:  true,
		WriteCouncilMemory: true,
	}

	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(voteForM2, passTurn),
		"m2": perception.NewScriptedClient(voteForM2, passTurn, summaryOK),
		"m3": perception.NewScriptedClient(voteForM2, "I will not answer in JSON, sorry."),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Topic", false)
	require.NoError(t, err)

	// The garbage turn became a deterministic PASS.
	events := loadEvents(t, res.SessionDir)
	var m3Pass *council.Event
	for _, ev := range eventsOfType(events, council.EventPassRecorded) {
		if ev.ActorID == "m3" {
			m3Pass = &ev
			break
		}
	}
	require.NotNil(t, m3Pass)
	reason, _ := m3Pass.Payload["reason"].(string)
	assert.True(t, strings.HasPrefix(reason, "Model JSON parse error: "), reason)

	// Memory writes were enabled, so m3 carries the risk-pattern record and
	// the council carries the lesson.
	data, err := os.ReadFile(filepath.Join(cfg.Storage.MemoryDir, "m3", "MEMORY.json"))
	require.NoError(t, err)
	var mem memory.MemberMemory
	require.NoError(t, json.Unmarshal(data, &mem))
	found := false
	for _, r := range mem.Records {
		if r.ID == "risk_pattern:parse_fallback:m3" {
			found = true
		}
	}
	assert.True(t, found)

	data, err = os.ReadFile(filepath.Join(cfg.Storage.MemoryDir, "COUNCIL.json"))
	require.NoError(t, err)
	var cm memory.CouncilMemory
	require.NoError(t, json.Unmarshal(data, &cm))
	found = false
	for _, r := range cm.Records {
		if r.Kind == memory.KindLesson {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunNoMemoryWritesWhenDisabled(t *testing.T) {
	cfg := threeMemberConfig(t)

	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(voteForM2),
		"m2": perception.NewScriptedClient(voteForM2).Queue(passTurn, summaryOK),
		"m3": perception.NewScriptedClient(voteForM2),
	}

	o := newTestOrchestrator(t, cfg, clients)
	_, err := o.Run(context.Background(), "Topic", false)
	require.NoError(t, err)

	// Member memory stays at the seeded empty state and the council file is
	// never created.
	data, err := os.ReadFile(filepath.Join(cfg.Storage.MemoryDir, "m1", "MEMORY.json"))
	require.NoError(t, err)
	var mem memory.MemberMemory
	require.NoError(t, json.Unmarshal(data, &mem))
	assert.Empty(t, mem.Records)
	assert.NoFileExists(t, filepath.Join(cfg.Storage.MemoryDir, "COUNCIL.json"))
}

func TestRunDocumentationApprovedOnRevision(t *testing.T) {
	cfg := threeMemberConfig(t)
	cfg.Output.Type = config.OutputDocumentation
	cfg.DocumentationReview.MaxRevisionRounds = 1

	leaderSummary := `{"summaryMarkdown":"## Summary\nDone.","finalResolution":"publish the guide","requiresExecution":false}`
	feedback := `{"criticalBlockers":[{"id":"B1","section":"intro","problem":"missing scope","impact":"readers lost","requiredChange":"add scope","severity":"high"}],"suggestedChanges":["shorten intro"]}`

	clients := map[string]perception.ModelClient{
		// m1 leads: election, turn, summary, draft v1, approve v1, draft v2,
		// approve v2.
		"m1": perception.NewScriptedClient(
			`{"candidateId":"m1","rationale":"I volunteer"}`,
			passTurn,
			leaderSummary,
			"# Guide v1\n\nFirst attempt.",
			yesVote,
			"# Guide v2\n\nRevised with scope section.",
			yesVote,
		),
		"m2": perception.NewScriptedClient(
			`{"candidateId":"m1","rationale":"agreed"}`,
			passTurn,
			noVote,
			feedback,
			yesVote,
		),
		"m3": perception.NewScriptedClient(
			`{"candidateId":"m1","rationale":"agreed"}`,
			passTurn,
			noVote,
			feedback,
			yesVote,
		),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Write the onboarding guide", false)
	require.NoError(t, err)

	require.NotNil(t, res.DocumentationApproved)
	assert.True(t, *res.DocumentationApproved)
	require.FileExists(t, res.DocumentationPath)
	doc, err := os.ReadFile(res.DocumentationPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Guide v2")

	events := loadEvents(t, res.SessionDir)
	assert.Len(t, eventsOfType(events, council.EventDocumentDraftWritten), 1)
	assert.Len(t, eventsOfType(events, council.EventDocumentRevisionWritten), 1)

	called := eventsOfType(events, council.EventDocumentApprovalVoteCalled)
	results := eventsOfType(events, council.EventDocumentApprovalVoteResult)
	require.Len(t, called, 2)
	require.Len(t, results, 2)
	assert.Equal(t, false, results[0].Payload["passed"])
	assert.Equal(t, true, results[1].Payload["passed"])

	assert.Len(t, eventsOfType(events, council.EventDocumentFeedbackCollected), 1)
	assert.FileExists(t, filepath.Join(res.SessionDir, "documentation.draft.v1.md"))
	assert.FileExists(t, filepath.Join(res.SessionDir, "documentation.draft.v2.md"))
	assert.FileExists(t, filepath.Join(res.SessionDir, "documentation.review.v1.json"))
}

func TestRunDocumentationNeverApproved(t *testing.T) {
	cfg := threeMemberConfig(t)
	cfg.Output.Type = config.OutputDocumentation
	cfg.DocumentationReview.MaxRevisionRounds = 0

	leaderSummary := `{"summaryMarkdown":"## Summary\nDone.","finalResolution":"publish","requiresExecution":false}`

	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(
			`{"candidateId":"m1","rationale":"I volunteer"}`,
			passTurn,
			leaderSummary,
			"# Draft\n\nOnly attempt.",
			yesVote,
		),
		"m2": perception.NewScriptedClient(`{"candidateId":"m1","rationale":"ok"}`, passTurn, noVote),
		"m3": perception.NewScriptedClient(`{"candidateId":"m1","rationale":"ok"}`, passTurn, noVote),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Topic", false)
	require.NoError(t, err)

	require.NotNil(t, res.DocumentationApproved)
	assert.False(t, *res.DocumentationApproved)
	assert.FileExists(t, filepath.Join(res.SessionDir, "documentation.unapproved.md"))
	assert.FileExists(t, filepath.Join(res.SessionDir, "documentation.unresolved-blockers.json"))

	// With zero revision rounds there is exactly one vote and no feedback
	// collection.
	events := loadEvents(t, res.SessionDir)
	assert.Len(t, eventsOfType(events, council.EventDocumentApprovalVoteCalled), 1)
	assert.Empty(t, eventsOfType(events, council.EventDocumentFeedbackCollected))
}

func TestRunExecutionHandoffApprovalGate(t *testing.T) {
	summaryWithExec := `{"summaryMarkdown":"## Summary\nBuild it.","finalResolution":"build the service","requiresExecution":true,"executionBrief":"Scaffold the service and wire CI."}`

	mkClients := func() map[string]perception.ModelClient {
		return map[string]perception.ModelClient{
			"m1": perception.NewScriptedClient(voteForM2),
			"m2": perception.NewScriptedClient(voteForM2).Queue(passTurn, summaryWithExec),
			"m3": perception.NewScriptedClient(voteForM2),
		}
	}

	readHandoff := func(path string) map[string]any {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var v map[string]any
		require.NoError(t, json.Unmarshal(data, &v))
		return v
	}

	t.Run("approval required and not given", func(t *testing.T) {
		cfg := threeMemberConfig(t)
		cfg.Execution.RequireHumanApproval = true
		o := newTestOrchestrator(t, cfg, mkClients())
		res, err := o.Run(context.Background(), "Topic", false)
		require.NoError(t, err)

		require.NotEmpty(t, res.HandoffPath)
		h := readHandoff(res.HandoffPath)
		assert.Equal(t, false, h["approved"])
		assert.Equal(t, true, h["approvalRequired"])
		assert.Equal(t, "build the service", h["finalResolution"])
	})

	t.Run("approval required and given", func(t *testing.T) {
		cfg := threeMemberConfig(t)
		cfg.Execution.RequireHumanApproval = true
		o := newTestOrchestrator(t, cfg, mkClients())
		res, err := o.Run(context.Background(), "Topic", true)
		require.NoError(t, err)

		h := readHandoff(res.HandoffPath)
		assert.Equal(t, true, h["approved"])
	})

	t.Run("approval not required", func(t *testing.T) {
		cfg := threeMemberConfig(t)
		o := newTestOrchestrator(t, cfg, mkClients())
		res, err := o.Run(context.Background(), "Topic", false)
		require.NoError(t, err)

		h := readHandoff(res.HandoffPath)
		assert.Equal(t, true, h["approved"])
	})
}

func TestRunIsDeterministicWithFixedInputs(t *testing.T) {
	run := func() []council.Event {
		cfg := threeMemberConfig(t)
		clients := map[string]perception.ModelClient{
			"m1": perception.NewScriptedClient(
				voteForM2,
				`{"action":"CONTRIBUTE","message":"first point"}`,
				secondYes,
				yesVote,
			),
			"m2": perception.NewScriptedClient(
				voteForM2,
				`{"action":"CALL_VOTE","title":"Decide","text":"Decide now.","decisionIfPass":"decided"}`,
				yesVote,
				summaryOK,
			),
			"m3": perception.NewScriptedClient(voteForM2, secondNo, yesVote),
		}
		o := newTestOrchestrator(t, cfg, clients)
		res, err := o.Run(context.Background(), "Same topic", false)
		require.NoError(t, err)
		return loadEvents(t, res.SessionDir)
	}

	first, second := run(), run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("event streams differ between identical runs:\n%s", diff)
	}
}

func TestRunTranscriptOrderIsBlindToBallotTiming(t *testing.T) {
	// m3's ballot arrives well before m1's; emission order must still be
	// member turn order because the fan-out joins before anything is logged.
	cfg := threeMemberConfig(t)

	slowVote := func(inner perception.ModelClient, delay time.Duration) perception.ModelClient {
		return perception.ClientFunc(func(ctx context.Context, system, user string, opts perception.CompleteOptions) (string, error) {
			if strings.Contains(user, "Cast your ballot") {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			return inner.CompleteText(ctx, system, user, opts)
		})
	}

	clients := map[string]perception.ModelClient{
		"m1": slowVote(perception.NewScriptedClient(
			voteForM2,
			`{"action":"CALL_VOTE","title":"Decide","text":"Decide now.","decisionIfPass":"decided"}`,
			yesVote,
		), 60*time.Millisecond),
		"m2": perception.NewScriptedClient(voteForM2, secondYes, yesVote, summaryOK),
		"m3": perception.NewScriptedClient(voteForM2, secondYes, yesVote),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Topic", false)
	require.NoError(t, err)

	casts := eventsOfType(loadEvents(t, res.SessionDir), council.EventVoteCast)
	require.Len(t, casts, 3)
	assert.Equal(t, "m1", casts[0].ActorID)
	assert.Equal(t, "m2", casts[1].ActorID)
	assert.Equal(t, "m3", casts[2].ActorID)
}

func TestNewRejectsMissingClient(t *testing.T) {
	cfg := threeMemberConfig(t)
	_, err := New(context.Background(), cfg, WithClients(map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(),
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model client")
}

func TestRunEventStreamShape(t *testing.T) {
	cfg := threeMemberConfig(t)
	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(voteForM2, passTurn),
		"m2": perception.NewScriptedClient(voteForM2, passTurn, summaryOK),
		"m3": perception.NewScriptedClient(voteForM2, passTurn),
	}

	o := newTestOrchestrator(t, cfg, clients)
	res, err := o.Run(context.Background(), "Topic", false)
	require.NoError(t, err)

	events := loadEvents(t, res.SessionDir)
	want := []council.EventType{
		council.EventSessionStarted,
		council.EventLeaderElectionBallot, council.EventLeaderElectionBallot, council.EventLeaderElectionBallot,
		council.EventLeaderElected,
		council.EventPhaseStarted,
		council.EventRoundStarted,
		council.EventTurnAction, council.EventPassRecorded,
		council.EventTurnAction, council.EventPassRecorded,
		council.EventTurnAction, council.EventPassRecorded,
		council.EventRoundLimitReached,
		council.EventPhaseCompleted,
		council.EventLeaderSummaryCreated,
		council.EventSessionClosed,
	}
	assert.Equal(t, want, eventTypes(events))

	// Seq is dense and 1-based.
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Seq)
	}
}
