package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/manthanm991/Task-Management/internal/cache"
	"github.com/manthanm991/Task-Management/internal/models"
	"github.com/manthanm991/Task-Management/internal/services"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// countingTaskService records how often the backing store is hit.
type countingTaskService struct {
	tasks    map[uuid.UUID]models.Task
	getCalls int
	lists    int
}

func newCountingTaskService() *countingTaskService {
	return &countingTaskService{tasks: make(map[uuid.UUID]models.Task)}
}

func (m *countingTaskService) CreateTask(db *gorm.DB, task *models.Task) error {
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	m.tasks[task.ID] = *task
	return nil
}

func (m *countingTaskService) GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	m.getCalls++
	task, ok := m.tasks[id]
	if !ok || task.UserID != ownerID {
		return models.Task{}, services.ErrTaskNotFound
	}
	return task, nil
}

func (m *countingTaskService) GetTasksByOwner(db *gorm.DB, ownerID uuid.UUID, sortBy, order string) ([]models.Task, error) {
	m.lists++
	var tasks []models.Task
	for _, task := range m.tasks {
		if task.UserID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (m *countingTaskService) UpdateTask(db *gorm.DB, task models.Task) error {
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return services.ErrTaskNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *countingTaskService) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	task, ok := m.tasks[id]
	if !ok || task.UserID != ownerID {
		return services.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func newCachedFixture() (*services.CachedTaskService, *countingTaskService, uuid.UUID, models.Task) {
	inner := newCountingTaskService()
	cached := services.NewCachedTaskService(inner, cache.NewMemoryCache())

	owner := uuid.Must(uuid.NewV4())
	task := models.Task{
		ID:       uuid.Must(uuid.NewV4()),
		UserID:   owner,
		Title:    "Cached task",
		Priority: models.PriorityMedium,
		Status:   models.StatusTodo,
		DueDate:  time.Now().AddDate(0, 0, 7).UTC().Truncate(24 * time.Hour),
	}

	return cached, inner, owner, task
}

func TestCachedGetTaskByIDServesFromCache(t *testing.T) {
	cached, inner, owner, task := newCachedFixture()

	if err := cached.CreateTask(nil, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := cached.GetTaskByID(nil, owner, task.ID)
		if err != nil {
			t.Fatalf("GetTaskByID failed: %v", err)
		}
		if got.Title != task.Title {
			t.Errorf("Expected title %q, got %q", task.Title, got.Title)
		}
	}

	if inner.getCalls != 0 {
		t.Errorf("Expected 0 store reads after create warmed the cache, got %d", inner.getCalls)
	}
}

func TestCachedCreateWarmsCacheWithStoreTimestamps(t *testing.T) {
	cached, inner, owner, task := newCachedFixture()

	if err := cached.CreateTask(nil, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("Create should fill the caller's task with the insert timestamps")
	}

	// The warmed cache entry must match the persisted row, not a stale copy.
	got, err := cached.GetTaskByID(nil, owner, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if inner.getCalls != 0 {
		t.Fatalf("Expected the read to come from the cache, store reads = %d", inner.getCalls)
	}
	stored := inner.tasks[task.ID]
	if !got.CreatedAt.Equal(stored.CreatedAt) || !got.UpdatedAt.Equal(stored.UpdatedAt) {
		t.Errorf("Cached timestamps %v/%v diverge from stored %v/%v",
			got.CreatedAt, got.UpdatedAt, stored.CreatedAt, stored.UpdatedAt)
	}
}

func TestCachedGetTaskByIDIsOwnerScoped(t *testing.T) {
	cached, _, owner, task := newCachedFixture()

	if err := cached.CreateTask(nil, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// A cached entry belonging to the owner must not leak to another user.
	other := uuid.Must(uuid.NewV4())
	_, err := cached.GetTaskByID(nil, other, task.ID)
	if !errors.Is(err, services.ErrTaskNotFound) {
		t.Fatalf("Expected ErrTaskNotFound for foreign requester, got %v", err)
	}

	if _, err := cached.GetTaskByID(nil, owner, task.ID); err != nil {
		t.Fatalf("Owner read failed: %v", err)
	}
}

func TestCachedUpdateInvalidates(t *testing.T) {
	cached, inner, owner, task := newCachedFixture()

	if err := cached.CreateTask(nil, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	task.Title = "Updated title"
	if err := cached.UpdateTask(nil, task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got, err := cached.GetTaskByID(nil, owner, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Title != "Updated title" {
		t.Errorf("Expected the updated title, got %q", got.Title)
	}
	if inner.getCalls == 0 {
		t.Error("Expected a store read after update invalidated the cache")
	}
}

func TestCachedListInvalidatedByDelete(t *testing.T) {
	cached, inner, owner, task := newCachedFixture()

	if err := cached.CreateTask(nil, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tasks, err := cached.GetTasksByOwner(nil, owner, "created_at", "desc")
	if err != nil {
		t.Fatalf("GetTasksByOwner failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}

	if err := cached.DeleteTask(nil, owner, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	tasks, err = cached.GetTasksByOwner(nil, owner, "created_at", "desc")
	if err != nil {
		t.Fatalf("GetTasksByOwner failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected the deleted task to disappear from listings, got %d tasks", len(tasks))
	}
	if inner.lists != 2 {
		t.Errorf("Expected 2 store listings (cache invalidated by delete), got %d", inner.lists)
	}
}
