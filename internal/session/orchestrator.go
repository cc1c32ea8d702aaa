// Package session drives one deliberation session end to end: leader
// election, the phase sequence, the leader summary, the optional
// documentation review loop, the execution handoff, and finalization.
//
// The orchestrator is single-threaded on the sequencing axis. The only
// parallelism is the three structured fan-outs (election ballots,
// seconding responses, voting ballots); fan-out workers return values and
// never touch shared state, and their results are re-ordered to member
// turn order before any event is emitted.
package session

import (
	"context"
	"fmt"

	"quorum/internal/config"
	"quorum/internal/council"
	"quorum/internal/eventlog"
	"quorum/internal/logging"
	"quorum/internal/memory"
	"quorum/internal/perception"
)

// Orchestrator owns all mutable state of a session run.
type Orchestrator struct {
	cfg     *config.Config
	clients map[string]perception.ModelClient
	store   *memory.Store
	clock   council.Clock
	ids     council.IDGenerator
}

// Option customizes an Orchestrator; used by tests to plug deterministic
// clocks, id generators, and scripted clients.
type Option func(*Orchestrator)

// WithClock replaces the wall clock.
func WithClock(c council.Clock) Option { return func(o *Orchestrator) { o.clock = c } }

// WithIDGenerator replaces the uuid-based id source.
func WithIDGenerator(g council.IDGenerator) Option { return func(o *Orchestrator) { o.ids = g } }

// WithClients replaces the provider-built model clients wholesale.
func WithClients(clients map[string]perception.ModelClient) Option {
	return func(o *Orchestrator) { o.clients = clients }
}

// WithMemoryStore replaces the memory store.
func WithMemoryStore(s *memory.Store) Option { return func(o *Orchestrator) { o.store = s } }

// New builds an orchestrator for the given validated config, constructing
// one model client per member unless WithClients overrides them.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		cfg:   cfg,
		clock: council.SystemClock{},
		ids:   council.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.store == nil {
		o.store = memory.NewStore(cfg.Storage.MemoryDir, o.clock)
	}
	if o.clients == nil {
		o.clients = make(map[string]perception.ModelClient, len(cfg.Members))
		for _, m := range cfg.Members {
			client, err := perception.NewClient(ctx, m.Model)
			if err != nil {
				return nil, fmt.Errorf("member %s: %w", m.ID, err)
			}
			o.clients[m.ID] = client
		}
	}
	for _, m := range cfg.Members {
		if _, ok := o.clients[m.ID]; !ok {
			return nil, fmt.Errorf("no model client for member %s", m.ID)
		}
	}
	return o, nil
}

// SessionResult is what Run hands back to the CLI.
type SessionResult struct {
	SessionID       string
	SessionDir      string
	LeaderID        string
	PhaseResults    []council.PhaseResult
	EndedBy         council.EndedBy
	StopReason      string
	FinalResolution string

	LeaderSummaryPath     string
	DocumentationApproved *bool
	DocumentationPath     string
	HandoffPath           string
}

// sessionRun is the per-run mutable state; everything is owned by the
// sequencer goroutine.
type sessionRun struct {
	o   *Orchestrator
	rec *eventlog.Recorder

	sessionID        string
	humanPrompt      string
	approveExecution bool
	startedAt        string

	turnIndex    int
	leaderID     string
	phaseResults []council.PhaseResult
	stopReason   string

	parseFallbacks   map[string]bool
	lastContribution map[string]string
	memorySnapshots  map[string]string
	artifacts        map[string]string
}

// Run executes one full session.
func (o *Orchestrator) Run(ctx context.Context, humanPrompt string, approveExecution bool) (*SessionResult, error) {
	sessionID := o.ids.NewSessionID()
	log := logging.Get(logging.CategorySession)
	log.Infow("session starting", "sessionId", sessionID, "council", o.cfg.CouncilName)

	rec, err := eventlog.NewRecorder(o.cfg.Storage.RootDir, sessionID, o.clock)
	if err != nil {
		return nil, err
	}

	r := &sessionRun{
		o:                o,
		rec:              rec,
		sessionID:        sessionID,
		humanPrompt:      humanPrompt,
		approveExecution: approveExecution,
		startedAt:        o.clock.Now().Format("2006-01-02T15:04:05.000Z07:00"),
		parseFallbacks:   map[string]bool{},
		lastContribution: map[string]string{},
		memorySnapshots:  map[string]string{},
		artifacts:        map[string]string{},
	}

	if err := r.prepareMemory(); err != nil {
		return nil, err
	}

	if _, err := rec.Append(council.EventSessionStarted, eventlog.AppendOptions{
		Payload: map[string]any{"humanPrompt": humanPrompt, "councilName": o.cfg.CouncilName},
	}); err != nil {
		return nil, err
	}

	if err := r.runElection(ctx); err != nil {
		return nil, err
	}

	sessionEndedBy, err := r.runPhaseSequence(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := r.runLeaderSummary(ctx)
	if err != nil {
		return nil, err
	}

	var docApproved *bool
	if o.cfg.Output.Type == config.OutputDocumentation {
		approved, err := r.runDocumentationLoop(ctx, summary)
		if err != nil {
			return nil, err
		}
		docApproved = &approved
	}

	var execApproved *bool
	if summary.RequiresExecution && summary.ExecutionBrief != "" {
		approved, err := r.writeHandoff(summary)
		if err != nil {
			return nil, err
		}
		execApproved = &approved
	}

	if err := r.finalize(sessionEndedBy, summary, docApproved, execApproved); err != nil {
		return nil, err
	}

	res := &SessionResult{
		SessionID:             sessionID,
		SessionDir:            rec.Dir(),
		LeaderID:              r.leaderID,
		PhaseResults:          r.phaseResults,
		EndedBy:               sessionEndedBy,
		StopReason:            r.stopReason,
		FinalResolution:       r.finalResolution(),
		LeaderSummaryPath:     r.artifacts["leaderSummary"],
		DocumentationApproved: docApproved,
		DocumentationPath:     r.artifacts["documentation"],
		HandoffPath:           r.artifacts["executionHandoff"],
	}
	log.Infow("session complete", "sessionId", sessionID, "endedBy", string(sessionEndedBy))
	return res, nil
}

// prepareMemory seeds each member's memory directory and loads the
// pre-computed prompt-context snapshots. Snapshots are stable for the
// whole session; there are no mid-session memory writes.
func (r *sessionRun) prepareMemory() error {
	for _, m := range r.o.cfg.Members {
		if err := r.o.store.EnsureMember(m); err != nil {
			return err
		}
		snap, err := r.o.store.MemberPromptContext(m.ID)
		if err != nil {
			return err
		}
		r.memorySnapshots[m.ID] = snap
	}
	return nil
}

// runPhaseSequence walks the phase graph from the entry phase until the
// resolver terminates or the transition budget runs out.
func (r *sessionRun) runPhaseSequence(ctx context.Context) (council.EndedBy, error) {
	cfg := r.o.cfg
	phaseID := cfg.SessionPolicy.EntryPhaseID
	completed := 0

	for {
		phase := cfg.PhaseByID(phaseID)
		if phase == nil {
			panic(fmt.Sprintf("unknown phase id %q reached the sequencer", phaseID))
		}

		result, err := r.runPhase(ctx, phase)
		if err != nil {
			return "", err
		}
		r.phaseResults = append(r.phaseResults, result)
		completed++

		next, ok := council.ResolveTransition(phase, result.EndedBy)
		if !ok {
			return result.EndedBy, nil
		}
		if completed >= cfg.SessionPolicy.MaxPhaseTransitions {
			// Mis-configured graphs can cycle forever; the budget forces a
			// synthetic round-limit termination instead.
			r.stopReason = fmt.Sprintf("maxPhaseTransitions (%d) exhausted before the graph terminated", cfg.SessionPolicy.MaxPhaseTransitions)
			logging.Get(logging.CategorySession).Warnw("phase budget exhausted",
				"sessionId", r.sessionID, "completed", completed, "next", next)
			return council.EndedByRoundLimit, nil
		}
		phaseID = next
	}
}

// finalResolution is the resolution of the last completed phase.
func (r *sessionRun) finalResolution() string {
	if len(r.phaseResults) == 0 {
		return ""
	}
	return r.phaseResults[len(r.phaseResults)-1].FinalResolution
}

// lastWinningMotion returns the most recent winning motion, if any phase
// closed on one.
func (r *sessionRun) lastWinningMotion() *council.Motion {
	for i := len(r.phaseResults) - 1; i >= 0; i-- {
		if r.phaseResults[i].WinningMotion != nil {
			return r.phaseResults[i].WinningMotion
		}
	}
	return nil
}

func (r *sessionRun) member(id string) *config.Member {
	m := r.o.cfg.MemberByID(id)
	if m == nil {
		panic(fmt.Sprintf("unknown member id %q reached the sequencer", id))
	}
	return m
}

func (r *sessionRun) client(id string) perception.ModelClient {
	c, ok := r.o.clients[id]
	if !ok {
		panic(fmt.Sprintf("no client for member id %q", id))
	}
	return c
}

func (r *sessionRun) opts(id string) perception.CompleteOptions {
	m := r.member(id)
	return perception.CompleteOptions{
		Temperature: m.Model.Temperature,
		MaxTokens:   m.Model.MaxTokens,
	}
}
