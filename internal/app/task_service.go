package app

import (
	"errors"
	"strings"

	"tasknest/internal/model"
	"tasknest/internal/repository"
)

var ErrTaskNotFound = errors.New("task not found")

// Columns a task listing may sort on, keyed by the API field name.
var taskSortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

type TaskService struct {
	taskRepo *repository.TaskRepository
}

type CreateTaskInput struct {
	Description string
	Completed   bool
}

type UpdateTaskInput struct {
	Description *string
	Completed   *bool
}

type ListTasksInput struct {
	Completed *bool
	SortBy    string // "field:direction" from the query string
	Limit     int
	Skip      int
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) Create(userID uint, input CreateTaskInput) (*model.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrInvalidInput
	}

	task := &model.Task{
		UserID:      userID,
		Description: description,
		Completed:   input.Completed,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the requester's tasks. An unrecognized sortBy field or
// direction is ignored rather than rejected, and zero matches is an empty
// array, never an error.
func (s *TaskService) List(userID uint, input ListTasksInput) ([]model.Task, error) {
	opts := repository.TaskListOptions{
		Completed: input.Completed,
		Limit:     input.Limit,
		Skip:      input.Skip,
	}

	if field, desc, ok := parseSortBy(input.SortBy); ok {
		opts.SortBy = field
		opts.SortDesc = desc
	}

	return s.taskRepo.ListByUserID(userID, opts)
}

// Get looks a task up within the requester's scope. A task owned by someone
// else reports not-found, same as a missing id.
func (s *TaskService) Get(taskID, userID uint) (*model.Task, error) {
	task, err := s.taskRepo.GetByIDAndUserID(taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) Update(taskID, userID uint, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.Get(taskID, userID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, ErrInvalidInput
		}
		task.Description = description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	if err := s.taskRepo.Save(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(taskID, userID uint) (*model.Task, error) {
	task, err := s.Get(taskID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Delete(task); err != nil {
		return nil, err
	}
	return task, nil
}

func parseSortBy(raw string) (column string, desc bool, ok bool) {
	if raw == "" {
		return "", false, false
	}

	parts := strings.SplitN(raw, ":", 2)
	column, found := taskSortColumns[parts[0]]
	if !found {
		return "", false, false
	}

	direction := "asc"
	if len(parts) == 2 {
		direction = parts[1]
	}
	switch direction {
	case "asc":
		return column, false, true
	case "desc":
		return column, true, true
	default:
		return "", false, false
	}
}
