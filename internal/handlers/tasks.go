package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/manthanm991/Task-Management/internal/models"
	"github.com/manthanm991/Task-Management/internal/services"
	"github.com/manthanm991/Task-Management/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	reminders   *worker.JobQueue
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

// WithReminderQueue enables due-date reminder jobs for newly created tasks.
func (h *TaskHandler) WithReminderQueue(queue *worker.JobQueue) *TaskHandler {
	h.reminders = queue
	return h
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
	UserID      string `json:"user_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newTaskResponse(task models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate.Format(models.DateLayout),
		UserID:      task.UserID.String(),
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
}

// requesterID returns the authenticated user set by the auth middleware.
func requesterID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, validationErrs := services.ValidateNewTask(input, time.Now())
	if validationErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationErrs})
		return
	}

	taskID, err := uuid.NewV4()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to generate task ID",
			"details": err.Error(),
		})
		return
	}
	task.ID = taskID
	task.UserID = userID

	if err := h.taskService.CreateTask(h.db, &task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to create task",
			"details": err.Error(),
		})
		return
	}

	h.enqueueReminder(task)

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	sortBy := c.DefaultQuery("sortBy", "created_at")
	order := c.DefaultQuery("order", "desc")

	tasks, err := h.taskService.GetTasksByOwner(h.db, userID, sortBy, order)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	response := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, response)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	task, err := h.taskService.GetTaskByID(h.db, userID, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Fetch before validating: a foreign task must come back 404 without
	// revealing whether the payload would have been acceptable.
	task, err := h.taskService.GetTaskByID(h.db, userID, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if validationErrs := services.ApplyTaskUpdate(&task, input, time.Now()); validationErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationErrs})
		return
	}

	if err := h.taskService.UpdateTask(h.db, task); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			handleTaskError(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to update task",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.taskService.GetTaskByID(h.db, userID, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(updated))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if err := h.taskService.DeleteTask(h.db, userID, id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) enqueueReminder(task models.Task) {
	if h.reminders == nil {
		return
	}

	err := h.reminders.EnqueueAt(worker.QueueReminders, worker.JobTypeTaskReminder, map[string]interface{}{
		"task_id": task.ID.String(),
		"user_id": task.UserID.String(),
		"title":   task.Title,
	}, task.DueDate)
	if err != nil {
		log.Printf("⚠️  Failed to enqueue reminder for task %s: %v", task.ID, err)
	}
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrTaskNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "task not found",
		})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to process task request",
		})
	}
}
