package policy

import "github.com/teamtasks/task-management-api/internal/models"

// statusTransitions lists the legal moves out of each status. Every status
// can currently reach every other one; tightening the workflow means
// editing this table.
var statusTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusPending:    {models.TaskStatusInProgress, models.TaskStatusCompleted},
	models.TaskStatusInProgress: {models.TaskStatusPending, models.TaskStatusCompleted},
	models.TaskStatusCompleted:  {models.TaskStatusPending, models.TaskStatusInProgress},
}

// CanChangeStatus reports whether a task may move from one status to
// another. Staying on the same status is a permitted no-op. Unknown
// statuses never transition.
func CanChangeStatus(from, to models.TaskStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
