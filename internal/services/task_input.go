package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teamtasks/task-management-api/internal/constants"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/policy"
)

// ErrInvalidTaskBody is returned when a task request body is not a JSON object.
var ErrInvalidTaskBody = errors.New("request body must be a JSON object")

// deadlineLayouts are the accepted deadline formats, most specific first.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TaskInput holds the task attributes present in a request body, still
// undecoded. Keys that are not task attributes are ignored.
type TaskInput struct {
	raw map[policy.Field]json.RawMessage
}

// ParseTaskInput reads a JSON object body into a TaskInput.
func ParseTaskInput(body []byte) (TaskInput, error) {
	var all map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&all); err != nil || all == nil {
		return TaskInput{}, ErrInvalidTaskBody
	}

	raw := make(map[policy.Field]json.RawMessage, len(policy.AllFields))
	for _, f := range policy.AllFields {
		if v, ok := all[string(f)]; ok {
			raw[f] = v
		}
	}
	return TaskInput{raw: raw}, nil
}

// Fields returns the task attributes present in the request.
func (in TaskInput) Fields() policy.FieldSet {
	set := make(policy.FieldSet, len(in.raw))
	for f := range in.raw {
		set[f] = struct{}{}
	}
	return set
}

// Only narrows the input to the given fields.
func (in TaskInput) Only(fields ...policy.Field) TaskInput {
	raw := make(map[policy.Field]json.RawMessage, len(fields))
	for _, f := range fields {
		if v, ok := in.raw[f]; ok {
			raw[f] = v
		}
	}
	return TaskInput{raw: raw}
}

func (in TaskInput) has(f policy.Field) bool {
	_, ok := in.raw[f]
	return ok
}

func (in TaskInput) isNull(f policy.Field) bool {
	v, ok := in.raw[f]
	return ok && bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// taskValues are decoded and validated task attributes.
type taskValues struct {
	fields      policy.FieldSet
	title       string
	description *string
	status      models.TaskStatus
	assignedTo  uint64
	deadline    *time.Time
}

// apply copies the present values onto the task.
func (v taskValues) apply(task *models.Task) {
	if v.fields.Has(policy.FieldTitle) {
		task.Title = v.title
	}
	if v.fields.Has(policy.FieldDescription) {
		task.Description = v.description
	}
	if v.fields.Has(policy.FieldStatus) {
		task.Status = v.status
	}
	if v.fields.Has(policy.FieldAssignedTo) {
		task.AssignedTo = v.assignedTo
		task.User = models.User{}
	}
	if v.fields.Has(policy.FieldDeadline) {
		task.Deadline = v.deadline
	}
}

// decode checks every present attribute and, when required is set, the
// presence of the create-time attributes. Assignees must exist.
func (s *TaskService) decode(in TaskInput, required bool) (taskValues, error) {
	errs := fieldErrors{}
	out := taskValues{fields: in.Fields()}
	now := s.now()

	if required {
		for _, f := range []policy.Field{policy.FieldTitle, policy.FieldStatus, policy.FieldAssignedTo} {
			if !in.has(f) {
				errs.add(string(f), requiredMessage(f))
			}
		}
	}

	if in.has(policy.FieldTitle) {
		title, ok := decodeString(in.raw[policy.FieldTitle])
		title = strings.TrimSpace(title)
		switch {
		case in.isNull(policy.FieldTitle):
			errs.add("title", requiredMessage(policy.FieldTitle))
		case !ok:
			errs.add("title", "The title field must be a string.")
		case errs.check(s.validate, "title", title, "required", requiredMessage(policy.FieldTitle)):
			errs.check(s.validate, "title", title, fmt.Sprintf("max=%d", constants.MaxTitleLength),
				fmt.Sprintf("The title field must not be greater than %d characters.", constants.MaxTitleLength))
		}
		out.title = title
	}

	if in.has(policy.FieldDescription) && !in.isNull(policy.FieldDescription) {
		desc, ok := decodeString(in.raw[policy.FieldDescription])
		if !ok {
			errs.add("description", "The description field must be a string.")
		} else if errs.check(s.validate, "description", desc, fmt.Sprintf("max=%d", constants.MaxDescriptionLength),
			fmt.Sprintf("The description field must not be greater than %d characters.", constants.MaxDescriptionLength)) {
			out.description = &desc
		}
	}

	if in.has(policy.FieldStatus) {
		raw, ok := decodeString(in.raw[policy.FieldStatus])
		if in.isNull(policy.FieldStatus) || (ok && raw == "") {
			errs.add("status", requiredMessage(policy.FieldStatus))
		} else if status, err := models.ParseTaskStatus(raw); !ok || err != nil {
			errs.add("status", "Status must be one of: Pending, In Progress, Completed")
		} else {
			out.status = status
		}
	}

	if in.has(policy.FieldAssignedTo) {
		id, ok := decodeID(in.raw[policy.FieldAssignedTo])
		switch {
		case in.isNull(policy.FieldAssignedTo):
			errs.add("assigned_to", requiredMessage(policy.FieldAssignedTo))
		case !ok:
			errs.add("assigned_to", "The selected user does not exist")
		case !errs.check(s.validate, "assigned_to", id, "required,gt=0", "The selected user does not exist"):
		default:
			exists, err := s.userRepo.Exists(id)
			if err != nil {
				return taskValues{}, fmt.Errorf("failed to verify assignee: %w", err)
			}
			if !exists {
				errs.add("assigned_to", "The selected user does not exist")
			}
			out.assignedTo = id
		}
	}

	if in.has(policy.FieldDeadline) && !in.isNull(policy.FieldDeadline) {
		raw, ok := decodeString(in.raw[policy.FieldDeadline])
		deadline, err := parseDeadline(raw)
		switch {
		case !ok || err != nil:
			errs.add("deadline", "The deadline field must be a valid date.")
		case !deadline.After(now):
			errs.add("deadline", "Deadline must be a future date")
		default:
			out.deadline = &deadline
		}
	}

	if err := errs.err(); err != nil {
		return taskValues{}, err
	}
	return out, nil
}

func requiredMessage(f policy.Field) string {
	if f == policy.FieldTitle {
		return "Task title is required"
	}
	return fmt.Sprintf("The %s field is required.", strings.ReplaceAll(string(f), "_", " "))
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeID accepts a JSON number or a numeric string.
func decodeID(raw json.RawMessage) (uint64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		id, err := strconv.ParseUint(n.String(), 10, 64)
		return id, err == nil
	}
	s, ok := decodeString(raw)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return id, err == nil
}

// parseDeadline normalizes to UTC so stored deadlines compare as instants
// on every driver, including SQLite where they are stored as text.
func parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
