package services

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/repositories"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/validation"
)

// TaskService works on one owner's tasks. Every call names the owner
// explicitly; a task of another owner is reported as ErrTaskNotFound.
type TaskService interface {
	ListTasks(ctx context.Context, ownerID uuid.UUID, q repositories.TaskQuery) (*repositories.TaskPage, error)
	CreateTask(ctx context.Context, ownerID uuid.UUID, in *validation.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, ownerID, id uuid.UUID) (*models.Task, error)
	UpdateTask(ctx context.Context, ownerID, id uuid.UUID, in *validation.TaskInput) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, ownerID, id uuid.UUID, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error
	GetStatistics(ctx context.Context, ownerID uuid.UUID) (*TaskStatistics, error)
}

type TaskStatistics struct {
	TotalTasks int64 `json:"total_tasks"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

type TaskServiceImpl struct {
	repo  repositories.TaskRepository
	clock models.Clock
}

func NewTaskService(repo repositories.TaskRepository, clock models.Clock) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo, clock: clock}
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID, q repositories.TaskQuery) (*repositories.TaskPage, error) {
	return s.repo.Query(ctx, ownerID, q)
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, ownerID uuid.UUID, in *validation.TaskInput) (*models.Task, error) {
	if in == nil || in.Title == nil || in.Description == nil || in.Deadline == nil {
		return nil, fmt.Errorf("incomplete task input")
	}

	task := &models.Task{
		UserID:      ownerID,
		Title:       *in.Title,
		Description: *in.Description,
		Deadline:    *in.Deadline,
		Status:      models.StatusPending,
	}
	if in.Status != nil {
		task.Status = *in.Status
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, ownerID, task.ID)
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, ownerID, id uuid.UUID) (*models.Task, error) {
	return s.repo.Find(ctx, ownerID, id)
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, ownerID, id uuid.UUID, in *validation.TaskInput) (*models.Task, error) {
	var fields map[string]interface{}
	if in != nil {
		fields = in.Columns()
	}
	if err := s.repo.Update(ctx, ownerID, id, fields); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, ownerID, id)
}

func (s *TaskServiceImpl) UpdateTaskStatus(ctx context.Context, ownerID, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid task status %q", status)
	}
	if err := s.repo.Update(ctx, ownerID, id, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, ownerID, id)
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// GetStatistics runs five independent counts; they need not share a snapshot.
func (s *TaskServiceImpl) GetStatistics(ctx context.Context, ownerID uuid.UUID) (*TaskStatistics, error) {
	stats := &TaskStatistics{}
	counts := []struct {
		dest   *int64
		filter repositories.CountFilter
	}{
		{&stats.TotalTasks, repositories.CountFilter{}},
		{&stats.Pending, repositories.CountFilter{Status: models.StatusPending}},
		{&stats.InProgress, repositories.CountFilter{Status: models.StatusInProgress}},
		{&stats.Completed, repositories.CountFilter{Status: models.StatusCompleted}},
		{&stats.Overdue, repositories.CountFilter{ExcludeStatus: models.StatusCompleted, DeadlineBefore: s.clock.Instant()}},
	}

	for _, c := range counts {
		n, err := s.repo.Count(ctx, ownerID, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}
	return stats, nil
}
