package models

// Summary holds the headline KPIs for the evaluated period
type Summary struct {
	Total                 int     `json:"total" yaml:"total"`
	Completed             int     `json:"completed" yaml:"completed"`
	InProgress            int     `json:"in_progress" yaml:"in_progress"`
	Overdue               int     `json:"overdue" yaml:"overdue"`
	CompletionRate        float64 `json:"completion_rate" yaml:"completion_rate"`
	OverdueRate           float64 `json:"overdue_rate" yaml:"overdue_rate"`
	AverageCompletionDays float64 `json:"average_completion_days" yaml:"average_completion_days"`
	DaysToGoal            *int    `json:"days_to_goal,omitempty" yaml:"days_to_goal,omitempty"`
	PrioritizedRecords    int     `json:"prioritized_records" yaml:"prioritized_records"`
}

// Streaks holds current and longest completion-day runs
type Streaks struct {
	Current int `json:"current" yaml:"current"`
	Longest int `json:"longest" yaml:"longest"`
}

// VelocityPoint is one weekly bucket of completions
type VelocityPoint struct {
	Period string `json:"period" yaml:"period"`
	Value  int    `json:"value" yaml:"value"`
	Date   string `json:"date" yaml:"date"`
}

// VelocityComparison compares the current period to the previous one
type VelocityComparison struct {
	Period    string `json:"period" yaml:"period"`
	Current   int    `json:"current" yaml:"current"`
	Previous  int    `json:"previous" yaml:"previous"`
	Change    int    `json:"change" yaml:"change"`
	Projected int    `json:"projected" yaml:"projected"`
}

// BurndownPoint is one weekly checkpoint of remaining work
type BurndownPoint struct {
	Date      string `json:"date" yaml:"date"`
	Remaining int    `json:"remaining" yaml:"remaining"`
	Ideal     int    `json:"ideal" yaml:"ideal"`
}

// ForecastPoint is one weekly point of the forecast timeline
type ForecastPoint struct {
	Date     string `json:"date" yaml:"date"`
	Actual   int    `json:"actual" yaml:"actual"`
	Forecast int    `json:"forecast" yaml:"forecast"`
}

// Forecast estimates when the open work will be done. EstimatedCompletion is
// empty when no record has been completed yet.
type Forecast struct {
	EstimatedCompletion string          `json:"estimated_completion,omitempty" yaml:"estimated_completion,omitempty"`
	AverageDurationDays float64         `json:"average_duration_days" yaml:"average_duration_days"`
	DaysRemaining       float64         `json:"days_remaining" yaml:"days_remaining"`
	Confidence          int             `json:"confidence" yaml:"confidence"`
	Timeline            []ForecastPoint `json:"timeline" yaml:"timeline"`
}

// RiskLevel buckets a risk score
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// RiskAssessment is the additive goal risk model output
type RiskAssessment struct {
	Score           int       `json:"score" yaml:"score"`
	Level           RiskLevel `json:"level" yaml:"level"`
	Factors         []string  `json:"factors" yaml:"factors"`
	Recommendations []string  `json:"recommendations" yaml:"recommendations"`
}

// PriorityStat is completion statistics for one priority tier
type PriorityStat struct {
	Priority       Priority `json:"priority" yaml:"priority"`
	Total          int      `json:"total" yaml:"total"`
	Completed      int      `json:"completed" yaml:"completed"`
	CompletionRate int      `json:"completion_rate" yaml:"completion_rate"`
}

// PriorityEffectiveness summarises how well high-priority work gets done
type PriorityEffectiveness struct {
	Tiers           []PriorityStat `json:"tiers" yaml:"tiers"`
	AlignmentScore  int            `json:"alignment_score" yaml:"alignment_score"`
	Recommendation  string         `json:"recommendation" yaml:"recommendation"`
	Recommendations []string       `json:"recommendations" yaml:"recommendations"`
}

// DurationBucket counts completed records in a duration range
type DurationBucket struct {
	Range string `json:"range" yaml:"range"`
	Count int    `json:"count" yaml:"count"`
}

// FocusTime summarises realistic work sessions (0h < duration < 24h)
type FocusTime struct {
	AverageHours       float64 `json:"average_hours" yaml:"average_hours"`
	LongestHours       float64 `json:"longest_hours" yaml:"longest_hours"`
	ShortestHours      float64 `json:"shortest_hours" yaml:"shortest_hours"`
	DeepWorkSessions   int     `json:"deep_work_sessions" yaml:"deep_work_sessions"`
	DeepWorkPercentage int     `json:"deep_work_percentage" yaml:"deep_work_percentage"`
	TotalHours         float64 `json:"total_hours" yaml:"total_hours"`
	SessionCount       int     `json:"session_count" yaml:"session_count"`
}

// HeatmapDay is one cell of the trailing productivity heatmap
type HeatmapDay struct {
	Date        string  `json:"date" yaml:"date"`
	Completions int     `json:"completions" yaml:"completions"`
	Intensity   float64 `json:"intensity" yaml:"intensity"`
}

// Collaboration is the keyword-based collaboration heuristic output
type Collaboration struct {
	SharedGoals        int `json:"shared_goals" yaml:"shared_goals"`
	IndividualGoals    int `json:"individual_goals" yaml:"individual_goals"`
	CollaborativeTasks int `json:"collaborative_tasks" yaml:"collaborative_tasks"`
	CollaborationRate  int `json:"collaboration_rate" yaml:"collaboration_rate"`
	TeamEfficiency     int `json:"team_efficiency" yaml:"team_efficiency"`
}

// MilestoneStatus is the rollup state of a subgoal
type MilestoneStatus string

const (
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneNotStarted MilestoneStatus = "not-started"
)

// Milestone is the progress rollup of one subgoal
type Milestone struct {
	SubgoalID      int64           `json:"subgoal_id" yaml:"subgoal_id"`
	Name           string          `json:"name" yaml:"name"`
	Progress       int             `json:"progress" yaml:"progress"`
	Status         MilestoneStatus `json:"status" yaml:"status"`
	TotalTasks     int             `json:"total_tasks" yaml:"total_tasks"`
	CompletedTasks int             `json:"completed_tasks" yaml:"completed_tasks"`
}

// Milestones aggregates all subgoal rollups
type Milestones struct {
	Items          []Milestone `json:"items" yaml:"items"`
	Completed      int         `json:"completed" yaml:"completed"`
	Total          int         `json:"total" yaml:"total"`
	CompletionRate float64     `json:"completion_rate" yaml:"completion_rate"`
}

// WeekdayCount is completions grouped by day of week
type WeekdayCount struct {
	Day         string `json:"day" yaml:"day"`
	Completions int    `json:"completions" yaml:"completions"`
}

// CategoryStat is completion statistics for one category
type CategoryStat struct {
	Name           string `json:"name" yaml:"name"`
	Total          int    `json:"total" yaml:"total"`
	Completed      int    `json:"completed" yaml:"completed"`
	CompletionRate int    `json:"completion_rate" yaml:"completion_rate"`
}

// GoalHealth is a 0..100 health score for one goal
type GoalHealth struct {
	GoalID int64  `json:"goal_id" yaml:"goal_id"`
	Name   string `json:"name" yaml:"name"`
	Score  int    `json:"score" yaml:"score"`
}

// ProgressPoint is the completion rate of records started in one week
type ProgressPoint struct {
	Period         string `json:"period" yaml:"period"`
	CompletionRate int    `json:"completion_rate" yaml:"completion_rate"`
	Completed      int    `json:"completed" yaml:"completed"`
	Total          int    `json:"total" yaml:"total"`
}

// Sprint is one fixed-length iteration
type Sprint struct {
	Name      string `json:"name" yaml:"name"`
	Velocity  int    `json:"velocity" yaml:"velocity"`
	Quality   int    `json:"quality" yaml:"quality"`
	Planned   int    `json:"planned" yaml:"planned"`
	Completed int    `json:"completed" yaml:"completed"`
}

// SprintAnalytics summarises recent sprints
type SprintAnalytics struct {
	Sprints         []Sprint `json:"sprints" yaml:"sprints"`
	AverageVelocity int      `json:"average_velocity" yaml:"average_velocity"`
	AverageQuality  int      `json:"average_quality" yaml:"average_quality"`
}

// HourStat is completions and weighted output for one hour of day
type HourStat struct {
	Hour         int `json:"hour" yaml:"hour"`
	Completions  int `json:"completions" yaml:"completions"`
	Productivity int `json:"productivity" yaml:"productivity"`
}

// EnergyPatterns is the hourly completion histogram
type EnergyPatterns struct {
	Hours     []HourStat `json:"hours" yaml:"hours"`
	PeakHour  int        `json:"peak_hour" yaml:"peak_hour"`
	LowHours  []int      `json:"low_hours" yaml:"low_hours"`
	Morning   int        `json:"morning" yaml:"morning"`
	Afternoon int        `json:"afternoon" yaml:"afternoon"`
	Evening   int        `json:"evening" yaml:"evening"`
}

// DifficultyCorrelation weighs tier completion by tier difficulty
type DifficultyCorrelation struct {
	Correlation int            `json:"correlation" yaml:"correlation"`
	Tiers       []PriorityStat `json:"tiers" yaml:"tiers"`
}

// MetricBundle is the full set of derived analytics for one computation
type MetricBundle struct {
	Window                WindowInfo            `json:"window" yaml:"window"`
	Summary               Summary               `json:"summary" yaml:"summary"`
	Streaks               Streaks               `json:"streaks" yaml:"streaks"`
	Velocity              []VelocityPoint       `json:"velocity" yaml:"velocity"`
	VelocityComparison    VelocityComparison    `json:"velocity_comparison" yaml:"velocity_comparison"`
	Burndown              []BurndownPoint       `json:"burndown" yaml:"burndown"`
	Forecast              Forecast              `json:"forecast" yaml:"forecast"`
	Risk                  RiskAssessment        `json:"risk" yaml:"risk"`
	PriorityEffectiveness PriorityEffectiveness `json:"priority_effectiveness" yaml:"priority_effectiveness"`
	TimeDistribution      []DurationBucket      `json:"time_distribution" yaml:"time_distribution"`
	FocusTime             FocusTime             `json:"focus_time" yaml:"focus_time"`
	Heatmap               []HeatmapDay          `json:"heatmap" yaml:"heatmap"`
	Collaboration         Collaboration         `json:"collaboration" yaml:"collaboration"`
	Milestones            Milestones            `json:"milestones" yaml:"milestones"`
	Weekdays              []WeekdayCount        `json:"weekdays" yaml:"weekdays"`
	Categories            []CategoryStat        `json:"categories" yaml:"categories"`
	GoalHealth            []GoalHealth          `json:"goal_health" yaml:"goal_health"`
	ProgressTrends        []ProgressPoint       `json:"progress_trends" yaml:"progress_trends"`
	Sprints               SprintAnalytics       `json:"sprints" yaml:"sprints"`
	Energy                EnergyPatterns        `json:"energy" yaml:"energy"`
	Difficulty            DifficultyCorrelation `json:"difficulty" yaml:"difficulty"`
}

// WindowInfo echoes the evaluated period
type WindowInfo struct {
	Label string `json:"label" yaml:"label"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}
