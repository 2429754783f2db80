package probe

import (
	"fmt"
	"slices"
	"strings"
)

// Scenario is one probe request: a thinking toggle plus the event types
// worth printing.
type Scenario struct {
	Name     string
	Title    string
	Thinking bool

	// Types restricts printed events to these "type" values. Empty prints
	// every event. Filtering never affects what is counted in a Result.
	Types []string
}

// Wants reports whether events of the given type are printed.
func (s Scenario) Wants(eventType string) bool {
	return len(s.Types) == 0 || slices.Contains(s.Types, eventType)
}

var (
	// ThinkingScenario prints the whole stream of a request with thinking
	// enabled.
	ThinkingScenario = Scenario{
		Name:     "thinking",
		Title:    "With thinking enabled",
		Thinking: true,
	}

	// PlainScenario prints only the content blocks of a request without
	// thinking.
	PlainScenario = Scenario{
		Name:  "plain",
		Title: "Without thinking",
		Types: []string{"content_block_start", "content_block_delta"},
	}
)

// DefaultScenarios returns the built-in scenarios in run order.
func DefaultScenarios() []Scenario {
	return []Scenario{ThinkingScenario, PlainScenario}
}

// ScenarioNames returns the names of the built-in scenarios.
func ScenarioNames() []string {
	defaults := DefaultScenarios()
	names := make([]string, 0, len(defaults))
	for _, s := range defaults {
		names = append(names, s.Name)
	}
	return names
}

// LookupScenarios resolves built-in scenario names in the given order.
// No names selects every built-in scenario.
func LookupScenarios(names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return DefaultScenarios(), nil
	}

	scenarios := make([]Scenario, 0, len(names))
	for _, name := range names {
		idx := slices.IndexFunc(DefaultScenarios(), func(s Scenario) bool {
			return strings.EqualFold(s.Name, name)
		})
		if idx < 0 {
			return nil, fmt.Errorf("unknown scenario: %q (available: %s)",
				name, strings.Join(ScenarioNames(), ", "))
		}
		scenarios = append(scenarios, DefaultScenarios()[idx])
	}
	return scenarios, nil
}
