package handlers

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/repositories"
)

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type TaskResponse struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	Title         string            `json:"tasklist"`
	Description   string            `json:"description"`
	Deadline      string            `json:"deadline"`
	Status        models.TaskStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	RemainingDays string            `json:"remaining_days"`
	User          *UserResponse     `json:"user,omitempty"`
}

type TaskPageResponse struct {
	CurrentPage int            `json:"current_page"`
	Data        []TaskResponse `json:"data"`
	PerPage     int            `json:"per_page"`
	Total       int64          `json:"total"`
	LastPage    int            `json:"last_page"`
	From        *int           `json:"from"`
	To          *int           `json:"to"`
}

func newTaskResponse(task *models.Task, clock models.Clock) TaskResponse {
	resp := TaskResponse{
		ID:            task.ID,
		UserID:        task.UserID,
		Title:         task.Title,
		Description:   task.Description,
		Deadline:      task.Deadline.UTC().Format(models.DateLayout),
		Status:        task.Status,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
		RemainingDays: clock.RemainingDays(task.Deadline),
	}
	if task.User != nil {
		resp.User = &UserResponse{ID: task.User.ID, Name: task.User.Name, Email: task.User.Email}
	}
	return resp
}

func newTaskPageResponse(page *repositories.TaskPage, clock models.Clock) TaskPageResponse {
	items := make([]TaskResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newTaskResponse(&page.Items[i], clock))
	}

	resp := TaskPageResponse{
		CurrentPage: page.Page,
		Data:        items,
		PerPage:     page.PerPage,
		Total:       page.Total,
		LastPage:    page.LastPage,
	}
	if len(items) > 0 {
		from, to := page.From(), page.To()
		resp.From, resp.To = &from, &to
	}
	return resp
}
