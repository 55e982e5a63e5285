package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
)

const (
	FieldTitle       = "tasklist"
	FieldDescription = "description"
	FieldDeadline    = "deadline"
	FieldStatus      = "status"
	FieldBody        = "body"
)

var statusRule = "oneof=" + joinStatuses(models.TaskStatuses)

// validate is safe for concurrent use and caches nothing per call.
var validate = validator.New()

// TaskInput holds the validated, normalized fields of a request. A nil
// pointer means the field was absent.
type TaskInput struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Status      *models.TaskStatus
}

// Columns maps the present fields onto store columns.
func (in *TaskInput) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if in.Title != nil {
		cols["title"] = *in.Title
	}
	if in.Description != nil {
		cols["description"] = *in.Description
	}
	if in.Deadline != nil {
		cols["deadline"] = *in.Deadline
	}
	if in.Status != nil {
		cols["status"] = *in.Status
	}
	return cols
}

// ValidateCreate checks a create body. today is the current calendar date
// and loc the timezone RFC 3339 deadlines are read in.
func ValidateCreate(body []byte, today time.Time, loc *time.Location) (*TaskInput, error) {
	raw, verr := decodeObject(body)
	if verr != nil {
		return nil, verr
	}

	errs := newErrors()
	in := &TaskInput{
		Title:       stringField(raw, FieldTitle, true, "required,max=255", errs),
		Description: stringField(raw, FieldDescription, true, "required", errs),
		Deadline:    deadlineField(raw, true, today, loc, errs),
		Status:      statusField(raw, false, errs),
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	if in.Status == nil {
		status := models.StatusPending
		in.Status = &status
	}
	return in, nil
}

// ValidateUpdate checks a partial update body. Only present fields are
// validated and returned.
func ValidateUpdate(body []byte, today time.Time, loc *time.Location) (*TaskInput, error) {
	raw, verr := decodeObject(body)
	if verr != nil {
		return nil, verr
	}

	errs := newErrors()
	in := &TaskInput{
		Title:       stringField(raw, FieldTitle, false, "required,max=255", errs),
		Description: stringField(raw, FieldDescription, false, "required", errs),
		Deadline:    deadlineField(raw, false, today, loc, errs),
		Status:      statusField(raw, false, errs),
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return in, nil
}

// ValidateStatus checks a status-only body.
func ValidateStatus(body []byte) (models.TaskStatus, error) {
	raw, verr := decodeObject(body)
	if verr != nil {
		return "", verr
	}

	errs := newErrors()
	status := statusField(raw, true, errs)
	if err := errs.orNil(); err != nil {
		return "", err
	}
	return *status, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, *Errors) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, BodyError("The request body must be a JSON object.")
	}
	return raw, nil
}

// lookup reports the raw value of a key and whether it carried a non-null value.
func lookup(raw map[string]json.RawMessage, field string) (value json.RawMessage, present, null bool) {
	value, present = raw[field]
	if !present {
		return nil, false, false
	}
	return value, true, bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func stringField(raw map[string]json.RawMessage, field string, required bool, rules string, errs *Errors) *string {
	value, present, null := lookup(raw, field)
	if !present && !required {
		return nil
	}
	if !present || null {
		errs.Add(field, message(field, "required", ""))
		return nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		errs.Add(field, fmt.Sprintf("The %s field must be a string.", field))
		return nil
	}
	s = strings.TrimSpace(s)

	if !check(field, s, rules, errs) {
		return nil
	}
	return &s
}

func statusField(raw map[string]json.RawMessage, required bool, errs *Errors) *models.TaskStatus {
	value, present, null := lookup(raw, FieldStatus)
	if !present {
		if required {
			errs.Add(FieldStatus, message(FieldStatus, "required", ""))
		}
		return nil
	}
	if null {
		if required {
			errs.Add(FieldStatus, message(FieldStatus, "required", ""))
		} else {
			errs.Add(FieldStatus, message(FieldStatus, "oneof", ""))
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		errs.Add(FieldStatus, message(FieldStatus, "oneof", ""))
		return nil
	}
	s = strings.TrimSpace(s)

	rules := statusRule
	if required {
		rules = "required," + statusRule
	}
	if !check(FieldStatus, s, rules, errs) {
		return nil
	}
	status := models.TaskStatus(s)
	return &status
}

func deadlineField(raw map[string]json.RawMessage, required bool, today time.Time, loc *time.Location, errs *Errors) *time.Time {
	value, present, null := lookup(raw, FieldDeadline)
	if !present && !required {
		return nil
	}
	if !present || null {
		errs.Add(FieldDeadline, message(FieldDeadline, "required", ""))
		return nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		errs.Add(FieldDeadline, fmt.Sprintf("The %s field must be a valid date.", FieldDeadline))
		return nil
	}
	s = strings.TrimSpace(s)
	if !check(FieldDeadline, s, "required", errs) {
		return nil
	}

	deadline, ok := ParseDate(s, loc)
	if !ok {
		errs.Add(FieldDeadline, fmt.Sprintf("The %s field must be a valid date.", FieldDeadline))
		return nil
	}
	if deadline.Before(models.CalendarDate(today, time.UTC)) {
		errs.Add(FieldDeadline, fmt.Sprintf("The %s field must be a date after or equal to today.", FieldDeadline))
		return nil
	}
	return &deadline
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date,
// read in loc, anchored at midnight UTC.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return models.CalendarDate(t, loc), true
	}
	return time.Time{}, false
}

// check runs validator rules against a single value and records the first
// failing rule.
func check(field, value, rules string, errs *Errors) bool {
	err := validate.Var(value, rules)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		errs.Add(field, message(field, fe.Tag(), fe.Param()))
		return false
	}
	errs.Add(field, fmt.Sprintf("The %s field is invalid.", field))
	return false
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, param)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

func joinStatuses(statuses []models.TaskStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}
