package services

import (
	"errors"

	"github.com/manthanm991/Task-Management/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// ErrTaskNotFound covers both a genuinely missing task and a task owned by
// someone else. Handlers answer 404 in both cases so that task IDs of other
// users cannot be probed.
var ErrTaskNotFound = errors.New("task not found")

type TaskService interface {
	CreateTask(db *gorm.DB, task *models.Task) error
	GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error)
	GetTasksByOwner(db *gorm.DB, ownerID uuid.UUID, sortBy, order string) ([]models.Task, error)
	UpdateTask(db *gorm.DB, task models.Task) error
	DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

// CreateTask inserts the task in place so the timestamps gorm assigns are
// visible to the caller.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task *models.Task) error {
	return db.Create(task).Error
}

// GetTaskByID is the single access-check path for retrieve, update and
// delete: every lookup is scoped to the owner, so a foreign task behaves
// exactly like an absent one.
func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, ErrTaskNotFound
	}
	return task, err
}

func (s *TaskServiceImpl) GetTasksByOwner(db *gorm.DB, ownerID uuid.UUID, sortBy, order string) ([]models.Task, error) {
	allowedSort := map[string]bool{"created_at": true, "updated_at": true, "due_date": true, "title": true, "priority": true, "status": true}
	if !allowedSort[sortBy] {
		sortBy = "created_at"
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	tasks := []models.Task{}
	result := db.Where("user_id = ?", ownerID).Order(sortBy + " " + order).Find(&tasks)
	return tasks, result.Error
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, task models.Task) error {
	result := db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"priority":    task.Priority,
			"status":      task.Status,
			"due_date":    task.DueDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
