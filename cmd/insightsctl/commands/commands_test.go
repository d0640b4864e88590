package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benvon/goal-insights/internal/models"
	"github.com/benvon/goal-insights/internal/queue"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testNow = "2024-06-15T12:00:00Z"

const fixtureYAML = `
goal:
  id: 1
  name: Launch
  status: In Progress
  end_date: 2024-07-05T00:00:00Z
subgoals:
  - id: 10
    goal_id: 1
    name: Docs
todos:
  - {id: 1, name: Outline, is_done: true, priority: High, goal_id: 1, start_date: 2024-06-13T09:00:00Z, end_date: 2024-06-14T09:00:00Z}
  - {id: 2, name: Draft, is_done: true, priority: High, goal_id: 1, start_date: 2024-06-13T09:00:00Z, end_date: 2024-06-14T09:00:00Z}
  - {id: 3, name: Review, is_done: true, priority: Medium, goal_id: 1, subgoal_id: 10, start_date: 2024-06-13T09:00:00Z, end_date: 2024-06-14T09:00:00Z}
  - {id: 4, name: Announce, is_done: false, priority: Low, goal_id: 1, start_date: 2024-06-13T09:00:00Z}
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// nil would make cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	f, err := LoadFixture(writeFixture(t, fixtureYAML))
	require.NoError(t, err)
	require.NotNil(t, f.Goal)
	assert.Equal(t, "Launch", f.Goal.Name)
	assert.Len(t, f.Todos, 4)
	assert.Equal(t, models.PriorityHigh, f.Todos[0].Priority)
	require.NotNil(t, f.Todos[2].SubgoalID)
	assert.Equal(t, int64(10), *f.Todos[2].SubgoalID)
	assert.Nil(t, f.Todos[3].EndDate)
	assert.Equal(t, "1", f.request("week").EntityID)
}

func TestLoadFixture_JSON(t *testing.T) {
	t.Parallel()

	f, err := LoadFixture(writeFixture(t, `{"entity_id": "team-7", "todos": [{"id": 1, "name": "a", "is_done": true}]}`))
	require.NoError(t, err)
	assert.Nil(t, f.Goal)
	assert.Equal(t, "team-7", f.request("month").EntityID)
}

func TestLoadFixture_DateOnlyTimestamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "json",
			content: `{"goal": {"id": 3, "name": "Ship", "end_date": "2024-07-05"}, "todos": [{"id": 1, "name": "a", "is_done": true, "start_date": "2024-06-13", "end_date": "2024-06-14"}, {"id": 2, "name": "b", "start_date": "2024-06-01T08:30:00Z"}]}`,
		},
		{
			name: "yaml",
			content: `
goal: {id: 3, name: Ship, end_date: "2024-07-05"}
todos:
  - {id: 1, name: a, is_done: true, start_date: 2024-06-13, end_date: '2024-06-14'}
  - {id: 2, name: b, start_date: 2024-06-01T08:30:00Z}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := LoadFixture(writeFixture(t, tt.content))
			require.NoError(t, err)
			require.NotNil(t, f.Goal)
			require.NotNil(t, f.Goal.EndDate)
			assert.True(t, f.Goal.EndDate.Equal(time.Date(2024, time.July, 5, 0, 0, 0, 0, time.UTC)))
			require.Len(t, f.Todos, 2)
			require.NotNil(t, f.Todos[0].StartDate)
			require.NotNil(t, f.Todos[0].EndDate)
			assert.True(t, f.Todos[0].StartDate.Equal(time.Date(2024, time.June, 13, 0, 0, 0, 0, time.UTC)))
			assert.True(t, f.Todos[0].EndDate.Equal(time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC)))
			require.NotNil(t, f.Todos[1].StartDate)
			assert.True(t, f.Todos[1].StartDate.Equal(time.Date(2024, time.June, 1, 8, 30, 0, 0, time.UTC)))
		})
	}
}

func TestLoadFixture_DateLikeNamesUntouched(t *testing.T) {
	t.Parallel()

	f, err := LoadFixture(writeFixture(t, `{"todos": [{"id": 1, "name": "2024-06-14"}]}`))
	require.NoError(t, err)
	require.Len(t, f.Todos, 1)
	assert.Equal(t, "2024-06-14", f.Todos[0].Name)
}

func TestLoadFixture_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFixture(writeFixture(t, "todos: [unterminated"))
	assert.Error(t, err)
}

func TestComputeCmd(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, fixtureYAML)

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, NewComputeCmd(), "--file", path, "--timeframe", "month", "--now", testNow)
		require.NoError(t, err)

		var bundle models.InsightBundle
		require.NoError(t, json.Unmarshal([]byte(out), &bundle))
		assert.Equal(t, "1", bundle.EntityID)
		assert.Equal(t, "month", bundle.Timeframe)
		assert.Equal(t, 4, bundle.Metrics.Summary.Total)
		assert.Equal(t, 75.0, bundle.Metrics.Summary.CompletionRate)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, NewComputeCmd(), "--file", path, "--now", testNow, "--output", "yaml")
		require.NoError(t, err)

		var bundle models.InsightBundle
		require.NoError(t, yaml.Unmarshal([]byte(out), &bundle))
		assert.Equal(t, 3, bundle.Metrics.Summary.Completed)
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, NewComputeCmd(), "--file", path, "--now", testNow, "--output", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "Completion Rate: 75.0%")
	})

	t.Run("priority filter", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, NewComputeCmd(), "--file", path, "--now", testNow, "--priority", "high")
		require.NoError(t, err)

		var bundle models.InsightBundle
		require.NoError(t, json.Unmarshal([]byte(out), &bundle))
		for _, in := range bundle.Insights {
			assert.Equal(t, models.InsightPriorityHigh, in.Priority)
		}
	})
}

func TestComputeCmd_Errors(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, fixtureYAML)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no file", args: nil, want: "--file is required"},
		{name: "bad timeframe", args: []string{"--file", path, "--timeframe", "decade"}, want: "invalid timeframe"},
		{name: "bad now", args: []string{"--file", path, "--now", "yesterday"}, want: "RFC3339"},
		{name: "bad output", args: []string{"--file", path, "--output", "xml"}, want: "--output must be one of json, yaml, text"},
		{name: "bad output before reading", args: []string{"--file", "missing.yaml", "--output", "xml"}, want: "--output"},
		{name: "bad priority", args: []string{"--file", path, "--priority", "urgent"}, want: "invalid priority filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := run(t, NewComputeCmd(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExportCmd(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, fixtureYAML)

	t.Run("csv to stdout", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, NewExportCmd(), "--file", path, "--now", testNow, "--format", "csv")
		require.NoError(t, err)

		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, "Task Name", rows[0][0])
		assert.Equal(t, []string{"Review", "Completed", "Medium"}, rows[3][:3])
		assert.Equal(t, "Docs", rows[3][7])
		assert.Equal(t, "75.0%", rows[1][8])
	})

	t.Run("json to file", func(t *testing.T) {
		t.Parallel()
		dest := filepath.Join(t.TempDir(), "export.json")
		out, err := run(t, NewExportCmd(), "--file", path, "--now", testNow, "--out", dest)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		var export struct {
			Timeframe string `json:"timeframe"`
			Metrics   struct {
				TotalTasks     int `json:"total_tasks"`
				CompletedTasks int `json:"completed_tasks"`
			} `json:"metrics"`
		}
		require.NoError(t, json.Unmarshal(data, &export))
		assert.Equal(t, "month", export.Timeframe)
		assert.Equal(t, 4, export.Metrics.TotalTasks)
		assert.Equal(t, 3, export.Metrics.CompletedTasks)
	})

	t.Run("bad format", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, NewExportCmd(), "--file", path, "--format", "xlsx")
		assert.Error(t, err)
	})
}

func TestBuildJob(t *testing.T) {
	t.Parallel()

	job, err := buildJob(5, false, "week")
	require.NoError(t, err)
	assert.Equal(t, queue.JobTypeRecomputeInsights, job.Type)
	require.NotNil(t, job.GoalID)
	assert.Equal(t, int64(5), *job.GoalID)
	assert.Equal(t, "week", job.Timeframe)
	assert.True(t, job.ForceRefresh)

	job, err = buildJob(0, true, "")
	require.NoError(t, err)
	assert.Equal(t, queue.JobTypeRefreshAll, job.Type)
	assert.Nil(t, job.GoalID)
	assert.NoError(t, job.Validate())

	_, err = buildJob(0, false, "")
	assert.ErrorContains(t, err, "--goal or --all")

	_, err = buildJob(5, false, "fortnight")
	assert.Error(t, err)
}

func TestInvalidateCmd_RequiresGoal(t *testing.T) {
	t.Parallel()

	_, err := run(t, NewInvalidateCmd())
	assert.ErrorContains(t, err, "--goal is required")
}
