package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type TaskRow struct {
	RepresentativeID   int64   `json:"representative_id"`
	Name               string  `json:"rep_name"`
	Total              int     `json:"total_tasks"`
	Completed          int     `json:"completed_tasks"`
	Pending            int     `json:"pending_tasks"`
	Overdue            int     `json:"overdue_tasks"`
	CompletionRate     float64 `json:"completion_rate"`
	AvgCompletionHours float64 `json:"avg_completion_hours"`
}

// TaskStats is the task_performance result.
type TaskStats struct {
	Representatives []TaskRow `json:"representatives"`
}

func (TaskStats) isResult() {}

func (s TaskStats) Tables() []domain.Table {
	t := domain.Table{Name: "task_performance", Columns: []string{
		"representative_id", "rep_name", "total_tasks", "completed_tasks", "pending_tasks", "overdue_tasks",
		"completion_rate", "avg_completion_hours",
	}}
	for _, r := range s.Representatives {
		t.Rows = append(t.Rows, []any{r.RepresentativeID, r.Name, r.Total, r.Completed, r.Pending, r.Overdue,
			r.CompletionRate, r.AvgCompletionHours})
	}
	return []domain.Table{t}
}

// aggregateTaskPerformance averages completion time over completed tasks only.
func aggregateTaskPerformance(pred domain.Predicate, snap *domain.Snapshot, _ Env) Result {
	byRep := make(map[int64][]*domain.Task)
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if pred.InRange(t.CreatedAt) {
			byRep[t.RepresentativeID] = append(byRep[t.RepresentativeID], t)
		}
	}

	reps := activeRepresentatives(snap)
	rows := make([]TaskRow, 0, len(reps))
	for _, r := range reps {
		row := TaskRow{RepresentativeID: r.ID, Name: r.Label()}
		var (
			hours float64
			timed int
		)
		for _, t := range byRep[r.ID] {
			row.Total++
			switch t.Status {
			case domain.TaskCompleted:
				row.Completed++
				if h, ok := t.CompletionHours(); ok {
					hours += h
					timed++
				}
			case domain.TaskPending:
				row.Pending++
			case domain.TaskOverdue:
				row.Overdue++
			}
		}
		row.CompletionRate = percent(float64(row.Completed), float64(row.Total))
		row.AvgCompletionHours = round2(ratio(hours, float64(timed)))
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CompletionRate != b.CompletionRate {
			return a.CompletionRate > b.CompletionRate
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.RepresentativeID < b.RepresentativeID
	})
	return TaskStats{Representatives: rows}
}
