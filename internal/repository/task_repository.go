package repository

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"tasknest/internal/model"
)

// TaskListOptions narrows an owner-scoped task listing. Zero values mean "no
// filter / no sort / no pagination".
type TaskListOptions struct {
	Completed *bool
	SortBy    string // column name, already mapped from the API field
	SortDesc  bool
	Limit     int
	Skip      int
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByUserID(userID uint, opts TaskListOptions) ([]model.Task, error) {
	query := r.db.Where("user_id = ?", userID)

	if opts.Completed != nil {
		query = query.Where("completed = ?", *opts.Completed)
	}
	if opts.SortBy != "" {
		direction := "ASC"
		if opts.SortDesc {
			direction = "DESC"
		}
		query = query.Order(opts.SortBy + " " + direction)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	} else if opts.Skip > 0 {
		// OFFSET is only valid alongside a LIMIT.
		query = query.Limit(math.MaxInt32)
	}
	if opts.Skip > 0 {
		query = query.Offset(opts.Skip)
	}

	tasks := make([]model.Task, 0)
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

// GetByIDAndUserID returns nil when the task does not exist or belongs to a
// different user; callers cannot tell the two apart.
func (r *TaskRepository) GetByIDAndUserID(taskID, userID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Save(task *model.Task) error {
	if err := r.db.Save(task).Error; err != nil {
		return fmt.Errorf("save task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(task *model.Task) error {
	if err := r.db.Delete(task).Error; err != nil {
		return fmt.Errorf("delete task failed: %w", err)
	}
	return nil
}
