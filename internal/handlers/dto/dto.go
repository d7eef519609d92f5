// Package dto holds the JSON shapes of the dashboard API.
package dto

import (
	"time"

	"github.com/google/uuid"

	"taskboard/internal/models"
	"taskboard/internal/present"
)

const dateLayout = "2006-01-02"

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"` // YYYY-MM-DD
	AssignedTo  *string `json:"assigned_to,omitempty"`
}

type StatusChangeRequest struct {
	Status string `json:"status"`
}

type AssigneeChangeRequest struct {
	// Empty string means unassign.
	AssignedTo string `json:"assigned_to"`
}

type AssigneeResponse struct {
	ID          uuid.UUID `json:"id"`
	Role        string    `json:"role"`
	DisplayName *string   `json:"display_name,omitempty"`
	Label       string    `json:"label"`
}

type TaskResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Status      string            `json:"status"`
	Badge       string            `json:"badge"`
	IsOverdue   bool              `json:"is_overdue"`
	DueDate     *string           `json:"due_date,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Assignee    *AssigneeResponse `json:"assignee,omitempty"`
}

type BoardResponse struct {
	Filter string         `json:"filter"`
	Tasks  []TaskResponse `json:"tasks"`
	Counts models.Counts  `json:"counts"`
	Error  string         `json:"error,omitempty"`
}

type HistoryEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	ChangedBy uuid.UUID `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

type SessionResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName *string   `json:"display_name,omitempty"`
	Label       string    `json:"label"`
}

type StaffUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Role  string    `json:"role"`
	Label string    `json:"label"`
}

func FromTask(t *models.Task, dir present.ProfileLookup, today time.Time) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Badge:       present.Badge(t, today),
		IsOverdue:   present.IsOverdue(t, today),
		CreatedAt:   t.CreatedAt,
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(dateLayout)
		resp.DueDate = &due
	}
	if t.AssignedTo != nil {
		assignee := &AssigneeResponse{
			ID:    *t.AssignedTo,
			Label: present.DisplayLabel(*t.AssignedTo, dir),
		}
		if t.Assignee != nil {
			assignee.Role = string(t.Assignee.Role)
			assignee.DisplayName = t.Assignee.DisplayName
		}
		resp.Assignee = assignee
	}
	return resp
}

func FromTaskList(tasks []*models.Task, dir present.ProfileLookup, today time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, dir, today)
	}
	return result
}

func FromHistory(entries []*models.HistoryEntry, dir present.ProfileLookup) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = HistoryEntryResponse{
			ID:        e.ID,
			Message:   present.RenderHistory(e, dir),
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		}
	}
	return result
}

// ParseDueDate accepts the wire format of due dates.
func ParseDueDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}
