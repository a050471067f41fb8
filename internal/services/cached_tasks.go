package services

import (
	"fmt"
	"time"

	"github.com/manthanm991/Task-Management/internal/cache"
	"github.com/manthanm991/Task-Management/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const taskCacheTTL = 30 * time.Minute

// CachedTaskService layers read caching on top of a TaskService. Cache keys
// always embed the owner ID, so a cache hit can never cross user boundaries.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
}

func NewCachedTaskService(taskService TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func taskKey(ownerID, id uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", ownerID.String(), id.String())
}

func ownerListPattern(ownerID uuid.UUID) string {
	return fmt.Sprintf("user_tasks:%s:*", ownerID.String())
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task *models.Task) error {
	if err := s.taskService.CreateTask(db, task); err != nil {
		return err
	}

	s.cache.Set(taskKey(task.UserID, task.ID), task, taskCacheTTL)
	s.cache.DeletePattern(ownerListPattern(task.UserID))

	return nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	key := taskKey(ownerID, id)

	var cached models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	task, err := s.taskService.GetTaskByID(db, ownerID, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(key, task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) GetTasksByOwner(db *gorm.DB, ownerID uuid.UUID, sortBy, order string) ([]models.Task, error) {
	key := fmt.Sprintf("user_tasks:%s:%s:%s", ownerID.String(), sortBy, order)

	var cached []models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.taskService.GetTasksByOwner(db, ownerID, sortBy, order)
	if err != nil {
		return tasks, err
	}

	s.cache.Set(key, tasks, taskCacheTTL)
	return tasks, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, task models.Task) error {
	if err := s.taskService.UpdateTask(db, task); err != nil {
		return err
	}

	s.cache.Delete(taskKey(task.UserID, task.ID))
	s.cache.DeletePattern(ownerListPattern(task.UserID))

	return nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	if err := s.taskService.DeleteTask(db, ownerID, id); err != nil {
		return err
	}

	s.cache.Delete(taskKey(ownerID, id))
	s.cache.DeletePattern(ownerListPattern(ownerID))

	return nil
}
