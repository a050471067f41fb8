package services

import (
	"sort"
	"strings"
	"time"

	"github.com/manthanm991/Task-Management/internal/models"
)

// TaskInput is the client-supplied portion of a task. Ownership is never
// part of it: the authenticated requester always becomes the owner, so an
// attacker-supplied user_id has nothing to bind to.
type TaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

// ValidationErrors maps a field name to the message for its first
// violation. All violated fields are reported together.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

const (
	msgTitleRequired   = "Title is required."
	msgTitleTooLong    = "Title must be 200 characters or fewer."
	msgPriorityInvalid = "Priority must be one of: low, medium, high."
	msgStatusInvalid   = "Status must be one of: todo, in_progress, done."
	msgDueDateRequired = "Due date is required."
	msgDueDateFormat   = "Due date must be a valid date in YYYY-MM-DD format."
	msgDueDatePast     = "Due date cannot be in the past."
)

// ValidateNewTask checks a full create payload and returns the normalized
// task with defaults applied. The returned task has no ID or owner; the
// caller assigns both.
func ValidateNewTask(in TaskInput, now time.Time) (models.Task, ValidationErrors) {
	errs := ValidationErrors{}
	task := models.Task{
		Priority: models.PriorityMedium,
		Status:   models.StatusTodo,
	}

	if in.Title == nil {
		errs["title"] = msgTitleRequired
	} else if msg := checkTitle(*in.Title, &task); msg != "" {
		errs["title"] = msg
	}

	if in.Description != nil {
		task.Description = *in.Description
	}

	if in.Priority != nil {
		if msg := checkPriority(*in.Priority, &task); msg != "" {
			errs["priority"] = msg
		}
	}

	if in.Status != nil {
		if msg := checkStatus(*in.Status, &task); msg != "" {
			errs["status"] = msg
		}
	}

	if in.DueDate == nil {
		errs["due_date"] = msgDueDateRequired
	} else if msg := checkDueDate(*in.DueDate, now, &task); msg != "" {
		errs["due_date"] = msg
	}

	if len(errs) > 0 {
		return models.Task{}, errs
	}
	return task, nil
}

// ApplyTaskUpdate validates the fields present in a partial update payload
// and applies them to task. Absent fields are left untouched. A submitted
// due date is always re-checked against the current date, even when the
// client resubmits the stored value.
func ApplyTaskUpdate(task *models.Task, in TaskInput, now time.Time) ValidationErrors {
	errs := ValidationErrors{}
	updated := *task

	if in.Title != nil {
		if msg := checkTitle(*in.Title, &updated); msg != "" {
			errs["title"] = msg
		}
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Priority != nil {
		if msg := checkPriority(*in.Priority, &updated); msg != "" {
			errs["priority"] = msg
		}
	}
	if in.Status != nil {
		if msg := checkStatus(*in.Status, &updated); msg != "" {
			errs["status"] = msg
		}
	}
	if in.DueDate != nil {
		if msg := checkDueDate(*in.DueDate, now, &updated); msg != "" {
			errs["due_date"] = msg
		}
	}

	if len(errs) > 0 {
		return errs
	}
	*task = updated
	return nil
}

func checkTitle(title string, task *models.Task) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return msgTitleRequired
	}
	if len([]rune(title)) > 200 {
		return msgTitleTooLong
	}
	task.Title = title
	return ""
}

func checkPriority(priority string, task *models.Task) string {
	priority = strings.ToLower(strings.TrimSpace(priority))
	if !models.IsValidPriority(priority) {
		return msgPriorityInvalid
	}
	task.Priority = priority
	return ""
}

func checkStatus(status string, task *models.Task) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidStatus(status) {
		return msgStatusInvalid
	}
	task.Status = status
	return ""
}

func checkDueDate(value string, now time.Time, task *models.Task) string {
	due, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return msgDueDateFormat
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if due.Before(today) {
		return msgDueDatePast
	}
	task.DueDate = due
	return ""
}
