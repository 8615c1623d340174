package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/policy"
)

type TaskServiceTestSuite struct {
	suite.Suite
	env     serviceEnv
	service *TaskService
	admin   models.User
	alice   models.User
	bob     models.User
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.env = setupServiceEnv(suite.T())
	suite.service = NewTaskService(suite.env.taskRepo, suite.env.userRepo, suite.env.notifier, nil).WithClock(clock)

	suite.admin = suite.env.createUser(suite.T(), "Admin", "admin@example.com", models.RoleAdmin, nil)
	suite.alice = suite.env.createUser(suite.T(), "Alice", "alice@example.com", models.RoleUser, nil)
	suite.bob = suite.env.createUser(suite.T(), "Bob", "bob@example.com", models.RoleUser, nil)
}

func (suite *TaskServiceTestSuite) input(body string) TaskInput {
	in, err := ParseTaskInput([]byte(body))
	suite.Require().NoError(err)
	return in
}

func (suite *TaskServiceTestSuite) TestCreateTask_NotifiesAssignee() {
	task, err := suite.service.CreateTask(context.Background(), suite.admin, suite.input(
		`{"title":"Write docs","description":"API reference","status":"Pending","assigned_to":2,"deadline":"2026-03-12T17:00:00Z"}`))
	suite.Require().NoError(err)

	suite.Equal("Write docs", task.Title)
	suite.Equal(suite.alice.ID, task.AssignedTo)
	suite.Equal("alice@example.com", task.User.Email)
	suite.Require().NotNil(task.Deadline)

	messages := suite.env.transport.Messages()
	suite.Require().Len(messages, 1)
	suite.Equal("alice@example.com", messages[0].To)
	suite.Equal("New Task Assigned: Write docs", messages[0].Subject)
}

func (suite *TaskServiceTestSuite) TestCreateTask_RespectsOptOut() {
	optedOut := suite.env.createUser(suite.T(), "Carol", "carol@example.com", models.RoleUser,
		models.Preferences{models.NotificationTaskAssigned: false})

	task, err := suite.service.CreateTask(context.Background(), suite.admin, suite.input(
		`{"title":"Quiet task","status":"Pending","assigned_to":`+itoa(optedOut.ID)+`}`))
	suite.Require().NoError(err)
	suite.NotZero(task.ID)
	suite.Empty(suite.env.transport.Messages())
}

func (suite *TaskServiceTestSuite) TestCreateTask_TransportFailureDoesNotFail() {
	suite.env.transport.Err = errors.New("smtp down")

	task, err := suite.service.CreateTask(context.Background(), suite.admin, suite.input(
		`{"title":"Still saved","status":"In Progress","assigned_to":2}`))
	suite.Require().NoError(err)

	stored, err := suite.env.taskRepo.FindByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, stored.Status)
}

func (suite *TaskServiceTestSuite) TestCreateTask_ForbiddenForUser() {
	_, err := suite.service.CreateTask(context.Background(), suite.alice, suite.input(
		`{"title":"Nope","status":"Pending","assigned_to":2}`))
	suite.ErrorIs(err, ErrTaskCreateForbidden)
}

func (suite *TaskServiceTestSuite) TestCreateTask_ReportsEveryFailingField() {
	_, err := suite.service.CreateTask(context.Background(), suite.admin, suite.input(
		`{"title":"","status":"Done","assigned_to":999,"deadline":"2020-01-01"}`))

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Len(verr.Fields, 4)
	suite.Equal([]string{"Task title is required"}, verr.Fields["title"])
	suite.Equal([]string{"Status must be one of: Pending, In Progress, Completed"}, verr.Fields["status"])
	suite.Equal([]string{"The selected user does not exist"}, verr.Fields["assigned_to"])
	suite.Equal([]string{"Deadline must be a future date"}, verr.Fields["deadline"])
}

func (suite *TaskServiceTestSuite) TestCreateTask_RequiresFields() {
	_, err := suite.service.CreateTask(context.Background(), suite.admin, suite.input(`{}`))

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Contains(verr.Fields, "title")
	suite.Contains(verr.Fields, "status")
	suite.Contains(verr.Fields, "assigned_to")
	suite.NotContains(verr.Fields, "deadline")
}

func (suite *TaskServiceTestSuite) TestCreateTask_DeadlineStoredInUTC() {
	task, err := suite.service.CreateTask(context.Background(), suite.admin, suite.input(
		`{"title":"Offset","status":"Pending","assigned_to":2,"deadline":"2026-03-11T05:00:00+09:00"}`))
	suite.Require().NoError(err)

	suite.Require().NotNil(task.Deadline)
	suite.Equal(time.UTC, task.Deadline.Location())
	suite.True(task.Deadline.Equal(time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)))
}

func (suite *TaskServiceTestSuite) TestUpdateTask_AdminPastDeadlineRejected() {
	deadline := fixedNow.Add(48 * time.Hour)
	task := suite.env.createTask(suite.T(), "Original", models.TaskStatusPending, suite.alice, &deadline)

	_, err := suite.service.UpdateTask(context.Background(), suite.admin, task.ID, suite.input(
		`{"title":"Renamed","deadline":"2020-01-01"}`))

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal(map[string][]string{"deadline": {"Deadline must be a future date"}}, verr.Fields)

	stored, err := suite.env.taskRepo.FindByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal("Original", stored.Title)
	suite.Require().NotNil(stored.Deadline)
	suite.True(stored.Deadline.Equal(deadline))
	suite.Empty(suite.env.transport.Messages())
}

func (suite *TaskServiceTestSuite) TestUpdateTask_AssigneeCannotEditTitle() {
	task := suite.env.createTask(suite.T(), "Original", models.TaskStatusPending, suite.alice, nil)

	_, err := suite.service.UpdateTask(context.Background(), suite.alice, task.ID, suite.input(
		`{"title":"Hijacked","status":"Completed"}`))
	suite.ErrorIs(err, policy.ErrFieldsForbidden)

	stored, err := suite.env.taskRepo.FindByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal("Original", stored.Title)
	suite.Equal(models.TaskStatusPending, stored.Status)
	suite.Empty(suite.env.transport.Messages())
}

func (suite *TaskServiceTestSuite) TestUpdateTask_NonAssigneeForbidden() {
	task := suite.env.createTask(suite.T(), "Alice's", models.TaskStatusPending, suite.alice, nil)

	_, err := suite.service.UpdateTask(context.Background(), suite.bob, task.ID, suite.input(`{"status":"Completed"}`))
	suite.ErrorIs(err, policy.ErrUpdateForbidden)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_AssigneeChangesStatus() {
	task := suite.env.createTask(suite.T(), "Mine", models.TaskStatusPending, suite.alice, nil)

	updated, err := suite.service.UpdateTask(context.Background(), suite.alice, task.ID, suite.input(`{"status":"In Progress"}`))
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, updated.Status)

	messages := suite.env.transport.Messages()
	suite.Require().Len(messages, 1)
	suite.Equal("Task Updated: Mine", messages[0].Subject)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_InvalidStatusRejected() {
	task := suite.env.createTask(suite.T(), "Mine", models.TaskStatusPending, suite.alice, nil)

	_, err := suite.service.UpdateTask(context.Background(), suite.alice, task.ID, suite.input(`{"status":"Archived"}`))

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Contains(verr.Fields, "status")
}

func (suite *TaskServiceTestSuite) TestUpdateTask_AdminReassigns() {
	task := suite.env.createTask(suite.T(), "Move me", models.TaskStatusPending, suite.alice, nil)

	updated, err := suite.service.UpdateTask(context.Background(), suite.admin, task.ID, suite.input(
		`{"assigned_to":`+itoa(suite.bob.ID)+`,"description":null}`))
	suite.Require().NoError(err)
	suite.Equal(suite.bob.ID, updated.AssignedTo)
	suite.Equal("bob@example.com", updated.User.Email)

	messages := suite.env.transport.Messages()
	suite.Require().Len(messages, 1)
	suite.Equal("bob@example.com", messages[0].To)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_UnchangedValuesSendNothing() {
	task := suite.env.createTask(suite.T(), "Same", models.TaskStatusPending, suite.alice, nil)

	_, err := suite.service.UpdateTask(context.Background(), suite.admin, task.ID, suite.input(
		`{"title":"Same","status":"Pending"}`))
	suite.Require().NoError(err)
	suite.Empty(suite.env.transport.Messages())
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus() {
	task := suite.env.createTask(suite.T(), "Status only", models.TaskStatusPending, suite.alice, nil)

	_, err := suite.service.UpdateTaskStatus(context.Background(), suite.alice, task.ID, suite.input(`{}`))
	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal([]string{"The status field is required."}, verr.Fields["status"])

	updated, err := suite.service.UpdateTaskStatus(context.Background(), suite.alice, task.ID, suite.input(
		`{"status":"Completed","title":"ignored here"}`))
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
	suite.Equal("Status only", updated.Title)

	_, err = suite.service.UpdateTaskStatus(context.Background(), suite.bob, task.ID, suite.input(`{"status":"Pending"}`))
	suite.ErrorIs(err, policy.ErrUpdateForbidden)
}

func (suite *TaskServiceTestSuite) TestGetTask() {
	task := suite.env.createTask(suite.T(), "Private", models.TaskStatusPending, suite.alice, nil)

	_, err := suite.service.GetTask(suite.alice, task.ID)
	suite.NoError(err)
	_, err = suite.service.GetTask(suite.admin, task.ID)
	suite.NoError(err)
	_, err = suite.service.GetTask(suite.bob, task.ID)
	suite.ErrorIs(err, ErrTaskViewForbidden)
	_, err = suite.service.GetTask(suite.admin, 9999)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDeleteTask() {
	task := suite.env.createTask(suite.T(), "Doomed", models.TaskStatusPending, suite.alice, nil)

	suite.ErrorIs(suite.service.DeleteTask(suite.alice, task.ID), ErrTaskDeleteForbidden)
	suite.NoError(suite.service.DeleteTask(suite.admin, task.ID))
	suite.ErrorIs(suite.service.DeleteTask(suite.admin, task.ID), ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestListTasks() {
	suite.env.createTask(suite.T(), "A1", models.TaskStatusPending, suite.alice, nil)
	suite.env.createTask(suite.T(), "A2", models.TaskStatusPending, suite.alice, nil)
	suite.env.createTask(suite.T(), "B1", models.TaskStatusPending, suite.bob, nil)

	all, total, err := suite.service.ListTasks(suite.admin, nil)
	suite.Require().NoError(err)
	suite.Len(all, 3)
	suite.EqualValues(3, total)

	mine, _, err := suite.service.ListTasks(suite.alice, nil)
	suite.Require().NoError(err)
	suite.Len(mine, 2)
	for _, task := range mine {
		suite.Equal(suite.alice.ID, task.AssignedTo)
	}

	adminOwn, err := suite.service.MyTasks(suite.admin)
	suite.Require().NoError(err)
	suite.Empty(adminOwn)
}

func (suite *TaskServiceTestSuite) TestGenerateTasks_RequiresAdminAndAI() {
	_, err := suite.service.GenerateTasks(context.Background(), suite.alice, GenerateTasksInput{Text: "x"})
	suite.ErrorIs(err, ErrTaskGenerateForbidden)

	_, err = suite.service.GenerateTasks(context.Background(), suite.admin, GenerateTasksInput{Text: "x"})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

func TestDiffTask_ReportsOnlyChangedRequestedFields(t *testing.T) {
	deadline := fixedNow.Add(24 * time.Hour)
	before := models.Task{Title: "Old", Status: models.TaskStatusPending, AssignedTo: 2, Deadline: &deadline}
	after := before
	after.Title = "New"
	after.Status = models.TaskStatusInProgress

	changes := diffTask(before, after, policy.NewFieldSet(policy.FieldTitle, policy.FieldStatus, policy.FieldAssignedTo))

	assert.Len(t, changes, 2)
	assert.Equal(t, notification.Change{Old: "Old", New: "New"}, changes["title"])
	assert.Equal(t, notification.Change{Old: "Pending", New: "In Progress"}, changes["status"])
}
