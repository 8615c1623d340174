package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teamtasks/task-management-api/internal/constants"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/policy"
	"github.com/teamtasks/task-management-api/internal/repository"
	"github.com/teamtasks/task-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskViewForbidden      = errors.New("you can only view your assigned tasks")
	ErrTaskCreateForbidden    = errors.New("only admins can create tasks")
	ErrTaskDeleteForbidden    = errors.New("only admins can delete tasks")
	ErrTaskGenerateForbidden  = errors.New("only admins can generate tasks")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService runs every task mutation as authorize, validate, mutate and
// then notify. A notification problem never fails the mutation.
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	notifier  *notification.Notifier
	aiService *AIService
	validate  *validator.Validate
	now       func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, notifier *notification.Notifier, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		aiService: aiService,
		validate:  newValidator(),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for deadline validation.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// ListTasks returns every task for an admin and the assigned tasks for
// anyone else. A nil page returns the whole list.
func (s *TaskService) ListTasks(actor models.User, page *utils.PaginationParams) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{Pagination: page}
	if !policy.CanViewAll(actor) {
		filter.AssignedTo = &actor.ID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// MyTasks returns the tasks assigned to the actor, whatever their role.
func (s *TaskService) MyTasks(actor models.User) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListAssignedTo(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task the actor may view.
func (s *TaskService) GetTask(actor models.User, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, *task) {
		return nil, ErrTaskViewForbidden
	}
	return task, nil
}

// CreateTask creates a task and tells the assignee about it.
func (s *TaskService) CreateTask(ctx context.Context, actor models.User, input TaskInput) (*models.Task, error) {
	if !policy.CanCreate(actor) {
		return nil, ErrTaskCreateForbidden
	}

	values, err := s.decode(input, true)
	if err != nil {
		return nil, err
	}

	task := &models.Task{Status: models.TaskStatusPending}
	values.apply(task)

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.findTask(task.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.TaskAssigned(ctx, created.User, *created)

	return created, nil
}

// UpdateTask changes the requested fields of a task. Requesting a field
// the actor may not edit fails the whole update.
func (s *TaskService) UpdateTask(ctx context.Context, actor models.User, taskID uint64, input TaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckUpdate(actor, *task, input.Fields()); err != nil {
		return nil, err
	}

	values, err := s.decode(input, false)
	if err != nil {
		return nil, err
	}

	if values.fields.Has(policy.FieldStatus) && !policy.CanChangeStatus(task.Status, values.status) {
		return nil, &ValidationError{Fields: map[string][]string{
			"status": {fmt.Sprintf("Status cannot change from %s to %s", task.Status, values.status)},
		}}
	}

	before := *task
	values.apply(task)

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	updated, err := s.findTask(task.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.TaskUpdated(ctx, updated.User, *updated, diffTask(before, *updated, values.fields))

	return updated, nil
}

// UpdateTaskStatus is UpdateTask restricted to the status field, which
// must be present.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, actor models.User, taskID uint64, input TaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdate(actor, *task) {
		return nil, policy.ErrUpdateForbidden
	}

	input = input.Only(policy.FieldStatus)
	if !input.has(policy.FieldStatus) {
		return nil, &ValidationError{Fields: map[string][]string{
			"status": {requiredMessage(policy.FieldStatus)},
		}}
	}

	return s.UpdateTask(ctx, actor, taskID, input)
}

// DeleteTask removes a task. Only admins may delete.
func (s *TaskService) DeleteTask(actor models.User, taskID uint64) error {
	if !policy.CanDelete(actor) {
		return ErrTaskDeleteForbidden
	}

	if _, err := s.findTask(taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text string
}

// GenerateTasks drafts tasks from free text. Drafts are not saved.
func (s *TaskService) GenerateTasks(ctx context.Context, actor models.User, input GenerateTasksInput) ([]GeneratedTask, error) {
	if !policy.CanCreate(actor) {
		return nil, ErrTaskGenerateForbidden
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	return filterDrafts(aiTasks, s.now())
}

// filterDrafts drops untitled drafts and deadlines that are already past.
func filterDrafts(drafts []GeneratedTask, now time.Time) ([]GeneratedTask, error) {
	valid := make([]GeneratedTask, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}
		if runes := []rune(draft.Title); len(runes) > constants.MaxTitleLength {
			draft.Title = string(runes[:constants.MaxTitleLength])
		}
		if draft.Deadline != nil && !draft.Deadline.After(now) {
			draft.Deadline = nil
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}
	return valid, nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// diffTask reports the requested fields whose value changed.
func diffTask(before, after models.Task, requested policy.FieldSet) notification.Changes {
	changes := notification.Changes{}
	for _, f := range requested.Sorted() {
		old, updated := fieldValue(before, f), fieldValue(after, f)
		if old != updated {
			changes[string(f)] = notification.Change{Old: old, New: updated}
		}
	}
	return changes
}

// fieldValue returns a comparable form of a task field. Absent optional
// values are nil.
func fieldValue(task models.Task, f policy.Field) any {
	switch f {
	case policy.FieldTitle:
		return task.Title
	case policy.FieldDescription:
		if task.Description == nil {
			return nil
		}
		return *task.Description
	case policy.FieldStatus:
		return string(task.Status)
	case policy.FieldAssignedTo:
		return task.AssignedTo
	case policy.FieldDeadline:
		if task.Deadline == nil {
			return nil
		}
		return task.Deadline.UTC().Format(time.RFC3339)
	}
	return nil
}
