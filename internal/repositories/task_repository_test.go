package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.Must(uuid.NewV4()),
		Name:  name,
		Email: name + "@example.com",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func newTask(owner uuid.UUID, title string) *models.Task {
	return &models.Task{
		UserID:      owner,
		Title:       title,
		Description: "description of " + title,
		Deadline:    time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:      models.StatusPending,
	}
}

func TestTaskRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "alice")

	task := newTask(owner.ID, "Write report")
	task.Status = ""
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}

	found, err := repo.Find(ctx, owner.ID, task.ID)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found.Title != "Write report" {
		t.Errorf("expected title %q, got %q", "Write report", found.Title)
	}
	if found.Status != models.StatusPending {
		t.Errorf("expected default status pending, got %q", found.Status)
	}
	if got := found.Deadline.UTC().Format(models.DateLayout); got != "2030-01-15" {
		t.Errorf("expected deadline 2030-01-15, got %s", got)
	}
	if found.User == nil || found.User.Email != "alice@example.com" {
		t.Errorf("expected owner to be preloaded, got %+v", found.User)
	}
}

func TestTaskRepository_OwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	task := newTask(alice.ID, "Private")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := repo.Find(ctx, bob.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Find() by other owner: expected ErrTaskNotFound, got %v", err)
	}
	if err := repo.Update(ctx, bob.ID, task.ID, map[string]interface{}{"title": "Hijacked"}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Update() by other owner: expected ErrTaskNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, bob.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Delete() by other owner: expected ErrTaskNotFound, got %v", err)
	}

	found, err := repo.Find(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found.Title != "Private" {
		t.Errorf("task was modified by another owner: %q", found.Title)
	}
}

func TestTaskRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "alice")

	task := newTask(owner.ID, "Draft")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Update(ctx, owner.ID, task.ID, map[string]interface{}{"status": models.StatusCompleted}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := repo.Find(ctx, owner.ID, task.ID)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found.Status != models.StatusCompleted {
		t.Errorf("expected status completed, got %q", found.Status)
	}
	if found.Title != "Draft" || found.Description != task.Description {
		t.Errorf("unrelated fields changed: %+v", found)
	}

	// An empty update only checks existence.
	if err := repo.Update(ctx, owner.ID, task.ID, nil); err != nil {
		t.Errorf("empty Update() error = %v", err)
	}
	if err := repo.Update(ctx, owner.ID, uuid.Must(uuid.NewV4()), nil); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("empty Update() of missing task: expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "alice")

	task := newTask(owner.ID, "Disposable")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, owner.ID, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, owner.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second Delete(): expected ErrTaskNotFound, got %v", err)
	}
	if _, err := repo.Find(ctx, owner.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Find() after delete: expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskRepository_QueryPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "alice")

	for i := 1; i <= 12; i++ {
		if err := repo.Create(ctx, newTask(owner.ID, fmt.Sprintf("Task %02d", i))); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, err := repo.Query(ctx, owner.ID, TaskQuery{SortBy: "tasklist", SortOrder: "asc", Page: 2, PerPage: 5})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if page.Total != 12 {
		t.Errorf("expected total 12, got %d", page.Total)
	}
	if page.LastPage != 3 {
		t.Errorf("expected last page 3, got %d", page.LastPage)
	}
	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(page.Items))
	}
	for i, task := range page.Items {
		want := fmt.Sprintf("Task %02d", i+6)
		if task.Title != want {
			t.Errorf("item %d: expected %q, got %q", i, want, task.Title)
		}
	}
	if page.From() != 6 || page.To() != 10 {
		t.Errorf("expected from 6 to 10, got %d to %d", page.From(), page.To())
	}

	beyond, err := repo.Query(ctx, owner.ID, TaskQuery{Page: 9, PerPage: 5})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(beyond.Items) != 0 || beyond.Total != 12 {
		t.Errorf("expected empty page with total 12, got %d items total %d", len(beyond.Items), beyond.Total)
	}
	if beyond.From() != 0 || beyond.To() != 0 {
		t.Errorf("expected empty bounds, got %d to %d", beyond.From(), beyond.To())
	}
}

func TestTaskRepository_QuerySearchAndStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	fixtures := []struct {
		owner  uuid.UUID
		title  string
		desc   string
		status models.TaskStatus
	}{
		{alice.ID, "Buy milk", "groceries", models.StatusPending},
		{alice.ID, "Pay rent", "100% due", models.StatusCompleted},
		{alice.ID, "Read book", "MILKY WAY chapter", models.StatusInProgress},
		{alice.ID, "Café Élan", "menu", models.StatusPending},
		{bob.ID, "Buy milk too", "groceries", models.StatusPending},
	}
	for _, f := range fixtures {
		task := newTask(f.owner, f.title)
		task.Description = f.desc
		task.Status = f.status
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name  string
		query TaskQuery
		want  int64
	}{
		{"no filter", TaskQuery{}, 4},
		{"search title and description case-insensitively", TaskQuery{Search: "milk"}, 2},
		{"search with wildcard literal", TaskQuery{Search: "100%"}, 1},
		{"underscore is literal", TaskQuery{Search: "_"}, 0},
		{"ASCII letters fold around accented ones", TaskQuery{Search: "ÉLAN"}, 1},
		{"status filter", TaskQuery{Status: "completed"}, 1},
		{"search and status", TaskQuery{Search: "milk", Status: "in-progress"}, 1},
		{"unknown status matches nothing", TaskQuery{Status: "archived"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.Query(ctx, alice.ID, tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if page.Total != tt.want {
				t.Errorf("expected total %d, got %d", tt.want, page.Total)
			}
			for _, task := range page.Items {
				if task.UserID != alice.ID {
					t.Errorf("query leaked task %q of another owner", task.Title)
				}
			}
		})
	}
}

func TestTaskRepository_Count(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "alice")

	past := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2099, 3, 1, 0, 0, 0, 0, time.UTC)
	fixtures := []struct {
		status   models.TaskStatus
		deadline time.Time
	}{
		{models.StatusPending, past},
		{models.StatusPending, future},
		{models.StatusCompleted, past},
		{models.StatusInProgress, future},
	}
	for i, f := range fixtures {
		task := newTask(owner.ID, fmt.Sprintf("task %d", i))
		task.Status = f.status
		task.Deadline = f.deadline
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		filter CountFilter
		want   int64
	}{
		{"all", CountFilter{}, 4},
		{"pending", CountFilter{Status: models.StatusPending}, 2},
		{"overdue", CountFilter{ExcludeStatus: models.StatusCompleted, DeadlineBefore: now}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := repo.Count(ctx, owner.ID, tt.filter)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != tt.want {
				t.Errorf("expected %d, got %d", tt.want, n)
			}
		})
	}
}

func TestLowerASCII(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"MILK", "milk"},
		{"ÉLAN", "Élan"},
		{"100% Due_Date", "100% due_date"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := lowerASCII(tt.in); got != tt.want {
			t.Errorf("lowerASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
