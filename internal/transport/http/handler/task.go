package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasknest/internal/app"
	"tasknest/internal/transport/http/middleware"
	"tasknest/internal/transport/http/response"
)

type TaskHandler struct {
	taskService *app.TaskService
}

type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
}

func NewTaskHandler(taskService *app.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Covers non-boolean "completed" values as well as malformed JSON.
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	input := app.CreateTaskInput{Description: req.Description}
	if req.Completed != nil {
		input.Completed = *req.Completed
	}

	task, err := h.taskService.Create(user.ID, input)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "create task failed")
		return
	}

	c.JSON(http.StatusCreated, task)
}

// List returns the requester's tasks, honoring completed/sortBy/limit/skip
// query parameters. Unparseable values are ignored, never an error.
func (h *TaskHandler) List(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	input := app.ListTasksInput{SortBy: c.Query("sortBy")}

	switch c.Query("completed") {
	case "true":
		value := true
		input.Completed = &value
	case "false":
		value := false
		input.Completed = &value
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		input.Limit = limit
	}
	if skip, err := strconv.Atoi(c.Query("skip")); err == nil {
		input.Skip = skip
	}

	tasks, err := h.taskService.List(user.ID, input)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list tasks failed")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		response.Error(c, http.StatusNotFound, app.ErrTaskNotFound.Error())
		return
	}

	task, err := h.taskService.Get(taskID, user.ID)
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		response.Error(c, http.StatusNotFound, app.ErrTaskNotFound.Error())
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	allowed := map[string]bool{"description": true, "completed": true}
	for key := range raw {
		if !allowed[key] {
			response.Error(c, http.StatusBadRequest, "invalid updates")
			return
		}
	}

	var input app.UpdateTaskInput
	if value, present := raw["description"]; present {
		input.Description = new(string)
		if err := json.Unmarshal(value, input.Description); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid updates")
			return
		}
	}
	if value, present := raw["completed"]; present {
		input.Completed = new(bool)
		if err := json.Unmarshal(value, input.Completed); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid updates")
			return
		}
	}

	task, err := h.taskService.Update(taskID, user.ID, input)
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		response.Error(c, http.StatusNotFound, app.ErrTaskNotFound.Error())
		return
	}

	task, err := h.taskService.Delete(taskID, user.ID)
	if err != nil {
		h.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) writeTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "task operation failed")
	}
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
