package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate checks the configuration before any session activity.
// Schema violations surface via struct tags; graph-level and council-level
// rules are checked explicitly.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	if len(c.Members)%2 == 0 {
		return fmt.Errorf("council size must be odd, got %d members", len(c.Members))
	}

	memberIDs := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		if memberIDs[m.ID] {
			return fmt.Errorf("duplicate member id %q", m.ID)
		}
		memberIDs[m.ID] = true
	}

	phaseIDs := make(map[string]bool, len(c.Phases))
	for _, p := range c.Phases {
		if phaseIDs[p.ID] {
			return fmt.Errorf("duplicate phase id %q", p.ID)
		}
		phaseIDs[p.ID] = true
	}

	if !phaseIDs[c.SessionPolicy.EntryPhaseID] {
		return fmt.Errorf("entryPhaseId %q is not a declared phase", c.SessionPolicy.EntryPhaseID)
	}

	for _, p := range c.Phases {
		for _, tr := range p.Transitions {
			if !phaseIDs[tr.To] {
				return fmt.Errorf("phase %q transition targets unknown phase %q", p.ID, tr.To)
			}
		}
		if p.Fallback.Action == FallbackTransition {
			if p.Fallback.TransitionToPhaseID == "" {
				return fmt.Errorf("phase %q fallback action TRANSITION requires transitionToPhaseId", p.ID)
			}
			if !phaseIDs[p.Fallback.TransitionToPhaseID] {
				return fmt.Errorf("phase %q fallback targets unknown phase %q", p.ID, p.Fallback.TransitionToPhaseID)
			}
		}
	}

	if err := c.checkReachability(); err != nil {
		return err
	}

	if len(c.TurnOrder) > 0 {
		if len(c.TurnOrder) != len(c.Members) {
			return fmt.Errorf("turnOrder has %d entries, council has %d members", len(c.TurnOrder), len(c.Members))
		}
		seen := make(map[string]bool, len(c.TurnOrder))
		for _, id := range c.TurnOrder {
			if !memberIDs[id] {
				return fmt.Errorf("turnOrder references unknown member %q", id)
			}
			if seen[id] {
				return fmt.Errorf("turnOrder repeats member %q", id)
			}
			seen[id] = true
		}
	}

	return nil
}

// checkReachability verifies every declared phase is reachable from the
// entry phase, following both transition edges and fallback transitions.
func (c *Config) checkReachability() error {
	reached := map[string]bool{}
	queue := []string{c.SessionPolicy.EntryPhaseID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reached[id] {
			continue
		}
		reached[id] = true
		p := c.PhaseByID(id)
		if p == nil {
			continue
		}
		for _, tr := range p.Transitions {
			queue = append(queue, tr.To)
		}
		if p.Fallback.Action == FallbackTransition {
			queue = append(queue, p.Fallback.TransitionToPhaseID)
		}
	}
	for _, p := range c.Phases {
		if !reached[p.ID] {
			return fmt.Errorf("phase %q is unreachable from entry phase %q", p.ID, c.SessionPolicy.EntryPhaseID)
		}
	}
	return nil
}
