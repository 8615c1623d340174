// Package policy decides who may see and change tasks.
//
// Every function here is a pure decision over its arguments: no storage
// access, no clock, no shared state. Handlers and services call these
// before touching the database.
package policy

import (
	"errors"
	"sort"
	"strings"

	"github.com/teamtasks/task-management-api/internal/models"
)

// Field names a mutable task attribute, using its wire name.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldAssignedTo  Field = "assigned_to"
	FieldDeadline    Field = "deadline"
)

// AllFields lists every mutable task field in a stable order.
var AllFields = []Field{FieldTitle, FieldDescription, FieldStatus, FieldAssignedTo, FieldDeadline}

var (
	// ErrUpdateForbidden is returned when the actor may not update the task at all.
	ErrUpdateForbidden = errors.New("you can only update your assigned tasks")
	// ErrFieldsForbidden is returned when the request touches fields outside the editable set.
	ErrFieldsForbidden = errors.New("you are not allowed to modify one or more of the requested fields")
)

// FieldSet is a set of task fields.
type FieldSet map[Field]struct{}

// NewFieldSet builds a set from the given fields.
func NewFieldSet(fields ...Field) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

func (s FieldSet) Empty() bool {
	return len(s) == 0
}

// Sorted returns the fields in AllFields order, which keeps error messages
// and logs deterministic.
func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	order := make(map[Field]int, len(AllFields))
	for i, f := range AllFields {
		order[f] = i
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iok := order[out[i]]
		oj, jok := order[out[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return out[i] < out[j]
	})
	return out
}

// Minus returns the fields in s that are not in other.
func (s FieldSet) Minus(other FieldSet) FieldSet {
	out := FieldSet{}
	for f := range s {
		if !other.Has(f) {
			out[f] = struct{}{}
		}
	}
	return out
}

func isAssignee(actor models.User, task models.Task) bool {
	return actor.ID != 0 && actor.ID == task.AssignedTo
}

// CanView reports whether the actor may read the task.
func CanView(actor models.User, task models.Task) bool {
	return actor.IsAdmin() || isAssignee(actor, task)
}

// CanCreate reports whether the actor may create tasks.
func CanCreate(actor models.User) bool {
	return actor.IsAdmin()
}

// CanDelete reports whether the actor may delete tasks.
func CanDelete(actor models.User) bool {
	return actor.IsAdmin()
}

// CanAssign reports whether the actor may choose a task's assignee. This
// only happens through create or an admin update.
func CanAssign(actor models.User) bool {
	return actor.IsAdmin()
}

// CanViewAll reports whether the actor sees every task rather than only
// their own.
func CanViewAll(actor models.User) bool {
	return actor.IsAdmin()
}

// EditableFields returns the fields the actor may change on the task. An
// empty set means the request must be rejected outright.
func EditableFields(actor models.User, task models.Task) FieldSet {
	switch {
	case actor.IsAdmin():
		return NewFieldSet(AllFields...)
	case isAssignee(actor, task):
		return NewFieldSet(FieldStatus)
	default:
		return FieldSet{}
	}
}

// CanUpdate reports whether the actor may edit at least one field of the task.
func CanUpdate(actor models.User, task models.Task) bool {
	return !EditableFields(actor, task).Empty()
}

// FieldsError lists the requested fields the actor may not modify.
type FieldsError struct {
	Fields []Field
}

func (e *FieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return ErrFieldsForbidden.Error() + ": " + strings.Join(names, ", ")
}

func (e *FieldsError) Unwrap() error {
	return ErrFieldsForbidden
}

// CheckUpdate authorizes an update touching the requested fields. Fields
// outside the editable set are an error, never silently dropped.
func CheckUpdate(actor models.User, task models.Task, requested FieldSet) error {
	editable := EditableFields(actor, task)
	if editable.Empty() {
		return ErrUpdateForbidden
	}
	if denied := requested.Minus(editable); !denied.Empty() {
		return &FieldsError{Fields: denied.Sorted()}
	}
	return nil
}
