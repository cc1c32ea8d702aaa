// Package eventlog persists the session's ordered event stream and its
// derived artifacts. The recorder is append-only: every append assigns the
// next sequence number and rewrites events.json and transcript.md, so the
// log is recoverable in order after any crash that survives the last
// successful write. Only the orchestrator sequencer appends; fan-out
// workers return values instead of touching the log.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quorum/internal/council"
	"quorum/internal/logging"
)

// Recorder owns the artifact directory of one session.
type Recorder struct {
	mu        sync.Mutex
	dir       string
	sessionID string
	clock     council.Clock
	events    []council.Event
	seq       int
}

// AppendOptions carries the per-event fields.
type AppendOptions struct {
	State     council.TurnState
	PhaseID   string
	Round     int
	TurnIndex int
	ActorID   string
	Payload   map[string]any
}

// NewRecorder creates the session directory under
// <rootDir>/sessions/<sessionID>/ and returns an empty recorder.
func NewRecorder(rootDir, sessionID string, clock council.Clock) (*Recorder, error) {
	dir := filepath.Join(rootDir, "sessions", sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &Recorder{dir: dir, sessionID: sessionID, clock: clock}, nil
}

// Dir returns the session artifact directory.
func (r *Recorder) Dir() string { return r.dir }

// Append adds one event to the log and flushes both artifacts.
func (r *Recorder) Append(t council.EventType, opts AppendOptions) (council.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	state := opts.State
	if state == "" {
		state = council.StateSession
	}
	ev := council.Event{
		Seq:       r.seq,
		SessionID: r.sessionID,
		Timestamp: r.clock.Now().Format(time.RFC3339Nano),
		State:     state,
		Type:      t,
		PhaseID:   opts.PhaseID,
		Round:     opts.Round,
		TurnIndex: opts.TurnIndex,
		ActorID:   opts.ActorID,
		Payload:   opts.Payload,
	}
	r.events = append(r.events, ev)

	if err := r.flushLocked(); err != nil {
		return council.Event{}, err
	}
	logging.Get(logging.CategorySession).Debugw("event appended",
		"seq", ev.Seq, "type", string(ev.Type), "actor", ev.ActorID)
	return ev, nil
}

// Events returns a copy of the ordered event list.
func (r *Recorder) Events() []council.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]council.Event, len(r.events))
	copy(out, r.events)
	return out
}

// WriteArtifact writes an auxiliary artifact (drafts, summaries, handoff
// descriptors) into the session directory.
func (r *Recorder) WriteArtifact(name string, data []byte) (string, error) {
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	return path, nil
}

// WriteJSONArtifact marshals v and writes it as an artifact.
func (r *Recorder) WriteJSONArtifact(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact %s: %w", name, err)
	}
	return r.WriteArtifact(name, append(data, '\n'))
}

func (r *Recorder) flushLocked() error {
	data, err := json.MarshalIndent(r.events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "events.json"), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("flush events: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "transcript.md"), []byte(renderTranscript(r.sessionID, r.events)), 0o644); err != nil {
		return fmt.Errorf("flush transcript: %w", err)
	}
	return nil
}
