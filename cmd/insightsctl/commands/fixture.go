// Package commands implements the insightsctl subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/benvon/goal-insights/internal/cache"
	"github.com/benvon/goal-insights/internal/engine"
	"github.com/benvon/goal-insights/internal/models"
	"gopkg.in/yaml.v3"
)

// Fixture is an offline record set. JSON files parse too, JSON being YAML.
// Timestamps may be RFC3339 or date-only, quoted or not.
type Fixture struct {
	EntityID string           `yaml:"entity_id"`
	Goal     *models.Goal     `yaml:"goal"`
	Goals    []models.Goal    `yaml:"goals"`
	Subgoals []models.Subgoal `yaml:"subgoals"`
	Todos    []models.Todo    `yaml:"todos"`
}

// LoadFixture reads a record fixture from path
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	if doc.Kind == 0 {
		return &Fixture{}, nil
	}
	expandDates(&doc)

	var f Fixture
	if err := doc.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// expandDates rewrites date-only values of *_date and *_at keys to midnight
// UTC RFC3339. A quoted date reaches time.Time as text, which only takes
// RFC3339.
func expandDates(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if val.Kind != yaml.ScalarNode || !isTimestampKey(key.Value) {
				continue
			}
			if d, err := time.Parse(time.DateOnly, val.Value); err == nil {
				val.Value = d.Format(time.RFC3339)
			}
		}
	}
	for _, child := range n.Content {
		expandDates(child)
	}
}

func isTimestampKey(key string) bool {
	return strings.HasSuffix(key, "_date") || strings.HasSuffix(key, "_at")
}

// request turns the fixture into an engine request
func (f *Fixture) request(timeframe string) engine.Request {
	entityID := f.EntityID
	if entityID == "" {
		entityID = "fixture"
		if f.Goal != nil {
			entityID = engine.GoalEntityID(f.Goal.ID)
		}
	}
	return engine.Request{
		EntityID:  entityID,
		Timeframe: timeframe,
		Goal:      f.Goal,
		Goals:     f.Goals,
		Subgoals:  f.Subgoals,
		Todos:     f.Todos,
	}
}

// offlineEngine computes against a throwaway in-memory cache at a fixed time
func offlineEngine(now time.Time) *engine.Engine {
	clock := func() time.Time { return now }
	return engine.New(cache.NewMemoryStore(clock), clock, nil)
}

// parseNow reads --now, defaulting to the wall clock
func parseNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now must be RFC3339: %w", err)
	}
	return t, nil
}

// outputFormats are the values --output accepts
var outputFormats = []string{"json", "yaml", "text"}

func checkOutput(output string) error {
	if slices.Contains(outputFormats, output) {
		return nil
	}
	return fmt.Errorf("--output must be one of %s, got %q", strings.Join(outputFormats, ", "), output)
}

// writeOutput encodes v as indented JSON or YAML
func writeOutput(w io.Writer, output string, v any) error {
	switch output {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("--output must be json or yaml, got %q", output)
	}
}
