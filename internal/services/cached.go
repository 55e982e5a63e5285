package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/cache"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/repositories"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/validation"
)

// CachedTaskService caches single-task reads and statistics per owner.
// Any write by an owner drops every cached entry of that owner.
type CachedTaskService struct {
	next  TaskService
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedTaskService(next TaskService, c cache.Cache, ttl time.Duration) *CachedTaskService {
	return &CachedTaskService{next: next, cache: c, ttl: ttl}
}

func ownerPattern(ownerID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s:*", ownerID)
}

func taskKey(ownerID, id uuid.UUID) string {
	return fmt.Sprintf("tasks:%s:task:%s", ownerID, id)
}

func statsKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s:stats", ownerID)
}

// Lists are not cached: the parameter space is unbounded.
func (s *CachedTaskService) ListTasks(ctx context.Context, ownerID uuid.UUID, q repositories.TaskQuery) (*repositories.TaskPage, error) {
	return s.next.ListTasks(ctx, ownerID, q)
}

func (s *CachedTaskService) GetTask(ctx context.Context, ownerID, id uuid.UUID) (*models.Task, error) {
	key := taskKey(ownerID, id)

	var task models.Task
	if err := s.cache.Get(key, &task); err == nil {
		return &task, nil
	}

	// The load is shared by every waiter; one caller going away must not
	// fail the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		t, err := s.next.GetTask(loadCtx, ownerID, id)
		if err != nil {
			return nil, err
		}
		s.store(key, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Task), nil
}

func (s *CachedTaskService) GetStatistics(ctx context.Context, ownerID uuid.UUID) (*TaskStatistics, error) {
	key := statsKey(ownerID)

	var stats TaskStatistics
	if err := s.cache.Get(key, &stats); err == nil {
		return &stats, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		st, err := s.next.GetStatistics(loadCtx, ownerID)
		if err != nil {
			return nil, err
		}
		s.store(key, st)
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TaskStatistics), nil
}

func (s *CachedTaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, in *validation.TaskInput) (*models.Task, error) {
	task, err := s.next.CreateTask(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ownerID)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, ownerID, id uuid.UUID, in *validation.TaskInput) (*models.Task, error) {
	task, err := s.next.UpdateTask(ctx, ownerID, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ownerID)
	return task, nil
}

func (s *CachedTaskService) UpdateTaskStatus(ctx context.Context, ownerID, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	task, err := s.next.UpdateTaskStatus(ctx, ownerID, id, status)
	if err != nil {
		return nil, err
	}
	s.invalidate(ownerID)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.next.DeleteTask(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

func (s *CachedTaskService) store(key string, value interface{}) {
	if err := s.cache.Set(key, value, s.ttl); err != nil {
		log.Printf("⚠️  Failed to cache %s: %v", key, err)
	}
}

func (s *CachedTaskService) invalidate(ownerID uuid.UUID) {
	if err := s.cache.DeletePattern(ownerPattern(ownerID)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("⚠️  Failed to invalidate cache for owner %s: %v", ownerID, err)
	}
}
