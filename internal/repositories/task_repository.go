package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
)

// ErrTaskNotFound covers both missing tasks and tasks owned by someone else.
var ErrTaskNotFound = errors.New("task not found")

// CountFilter narrows a scoped count. Zero values are ignored.
type CountFilter struct {
	Status         models.TaskStatus
	ExcludeStatus  models.TaskStatus
	DeadlineBefore time.Time
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Find(ctx context.Context, ownerID, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Query(ctx context.Context, ownerID uuid.UUID, q TaskQuery) (*TaskPage, error)
	Count(ctx context.Context, ownerID uuid.UUID, filter CountFilter) (int64, error)
}

type GormTaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// owned starts every statement from the caller's tasks.
func (r *GormTaskRepository) owned(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Task{}).Where("user_id = ?", ownerID)
}

func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) Find(ctx context.Context, ownerID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		_, err := r.Find(ctx, ownerID, id)
		return err
	}

	updates := make(map[string]interface{}, len(fields)+1)
	for column, value := range fields {
		updates[column] = value
	}
	updates["updated_at"] = r.db.NowFunc()

	result := r.owned(ctx, ownerID).Where("id = ?", id).Updates(updates)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Task{})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) Query(ctx context.Context, ownerID uuid.UUID, q TaskQuery) (*TaskPage, error) {
	q = q.Normalize()

	var total int64
	if err := q.filter(r.owned(ctx, ownerID)).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	var tasks []models.Task
	err := q.order(q.filter(r.owned(ctx, ownerID))).
		Offset(q.Offset()).
		Limit(q.PerPage).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return newTaskPage(tasks, total, q), nil
}

func (r *GormTaskRepository) Count(ctx context.Context, ownerID uuid.UUID, filter CountFilter) (int64, error) {
	db := r.owned(ctx, ownerID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.ExcludeStatus != "" {
		db = db.Where("status <> ?", filter.ExcludeStatus)
	}
	if !filter.DeadlineBefore.IsZero() {
		db = db.Where("deadline < ?", filter.DeadlineBefore)
	}

	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}
