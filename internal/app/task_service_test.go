package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tasknest/internal/model"
	"tasknest/internal/repository"
)

func newTaskService(db *gorm.DB) *TaskService {
	return NewTaskService(repository.NewTaskRepository(db))
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{Name: "Test", Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestTaskCreate(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)
	user := seedUser(t, db, "a@x.com")

	task, err := svc.Create(user.ID, CreateTaskInput{Description: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, task.UserID)
	assert.False(t, task.Completed)

	_, err = svc.Create(user.ID, CreateTaskInput{Description: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskGet_OwnershipHidden(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)
	owner := seedUser(t, db, "owner@x.com")
	other := seedUser(t, db, "other@x.com")

	task, err := svc.Create(owner.ID, CreateTaskInput{Description: "private"})
	require.NoError(t, err)

	got, err := svc.Get(task.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	// Someone else's task answers the same way as a missing one.
	_, err = svc.Get(task.ID, other.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.Get(9999, owner.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskList(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)
	user := seedUser(t, db, "a@x.com")
	other := seedUser(t, db, "b@x.com")

	first, err := svc.Create(user.ID, CreateTaskInput{Description: "alpha"})
	require.NoError(t, err)
	_, err = svc.Create(user.ID, CreateTaskInput{Description: "bravo", Completed: true})
	require.NoError(t, err)
	_, err = svc.Create(other.ID, CreateTaskInput{Description: "charlie"})
	require.NoError(t, err)

	tasks, err := svc.List(user.ID, ListTasksInput{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	completed := true
	tasks, err = svc.List(user.ID, ListTasksInput{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "bravo", tasks[0].Description)

	incomplete := false
	tasks, err = svc.List(user.ID, ListTasksInput{Completed: &incomplete})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, first.ID, tasks[0].ID)
}

func TestTaskList_Sort(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)
	user := seedUser(t, db, "a@x.com")

	for _, description := range []string{"bravo", "alpha", "charlie"} {
		_, err := svc.Create(user.ID, CreateTaskInput{Description: description})
		require.NoError(t, err)
	}

	tasks, err := svc.List(user.ID, ListTasksInput{SortBy: "description:asc"})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "alpha", tasks[0].Description)
	assert.Equal(t, "charlie", tasks[2].Description)

	tasks, err = svc.List(user.ID, ListTasksInput{SortBy: "description:desc"})
	require.NoError(t, err)
	assert.Equal(t, "charlie", tasks[0].Description)

	// Unknown field or direction falls back to insertion order.
	tasks, err = svc.List(user.ID, ListTasksInput{SortBy: "priority:desc"})
	require.NoError(t, err)
	assert.Equal(t, "bravo", tasks[0].Description)

	tasks, err = svc.List(user.ID, ListTasksInput{SortBy: "description:sideways"})
	require.NoError(t, err)
	assert.Equal(t, "bravo", tasks[0].Description)
}

func TestTaskList_Pagination(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)
	user := seedUser(t, db, "a@x.com")

	for _, description := range []string{"one", "two", "three"} {
		_, err := svc.Create(user.ID, CreateTaskInput{Description: description})
		require.NoError(t, err)
	}

	tasks, err := svc.List(user.ID, ListTasksInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "one", tasks[0].Description)

	tasks, err = svc.List(user.ID, ListTasksInput{Limit: 2, Skip: 2})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "three", tasks[0].Description)

	tasks, err = svc.List(user.ID, ListTasksInput{Skip: 1})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "two", tasks[0].Description)
}

func TestTaskUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)
	owner := seedUser(t, db, "owner@x.com")
	other := seedUser(t, db, "other@x.com")

	task, err := svc.Create(owner.ID, CreateTaskInput{Description: "initial"})
	require.NoError(t, err)

	description := "updated"
	completed := true
	updated, err := svc.Update(task.ID, owner.ID, UpdateTaskInput{Description: &description, Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)
	assert.True(t, updated.Completed)

	empty := ""
	_, err = svc.Update(task.ID, owner.ID, UpdateTaskInput{Description: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(task.ID, other.ID, UpdateTaskInput{Completed: &completed})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskDelete(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)
	owner := seedUser(t, db, "owner@x.com")
	other := seedUser(t, db, "other@x.com")

	task, err := svc.Create(owner.ID, CreateTaskInput{Description: "doomed"})
	require.NoError(t, err)

	_, err = svc.Delete(task.ID, other.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	deleted, err := svc.Delete(task.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)

	_, err = svc.Get(task.ID, owner.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
