package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasknest/internal/app"
	"tasknest/internal/transport/http/middleware"
	"tasknest/internal/transport/http/response"
)

type UserHandler struct {
	authService *app.AuthService
	userService *app.UserService
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewUserHandler(authService *app.AuthService, userService *app.UserService) *UserHandler {
	return &UserHandler{authService: authService, userService: userService}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), app.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "signup failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		// Unknown email and wrong password share one answer.
		if errors.Is(err, app.ErrInvalidCredential) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}
	token, ok := middleware.TokenFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	if err := h.authService.Logout(user.ID, token); err != nil {
		response.Error(c, http.StatusInternalServerError, "logout failed")
		return
	}
	c.Status(http.StatusOK)
}

func (h *UserHandler) LogoutAll(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	if err := h.authService.LogoutAll(user.ID); err != nil {
		response.Error(c, http.StatusInternalServerError, "logout failed")
		return
	}
	c.Status(http.StatusOK)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update. The request keys are checked
// against the allow-list before any field is touched, so an unknown key
// rejects the whole request.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	allowed := map[string]bool{"name": true, "email": true, "password": true}
	for key := range raw {
		if !allowed[key] {
			response.Error(c, http.StatusBadRequest, "invalid updates")
			return
		}
	}

	var input app.UpdateProfileInput
	if value, present := raw["name"]; present {
		input.Name = new(string)
		if err := json.Unmarshal(value, input.Name); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid updates")
			return
		}
	}
	if value, present := raw["email"]; present {
		input.Email = new(string)
		if err := json.Unmarshal(value, input.Email); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid updates")
			return
		}
	}
	if value, present := raw["password"]; present {
		input.Password = new(string)
		if err := json.Unmarshal(value, input.Password); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid updates")
			return
		}
	}

	updated, err := h.userService.UpdateProfile(user, input)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "update profile failed")
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), user); err != nil {
		response.Error(c, http.StatusInternalServerError, "delete account failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar accepts a multipart form with an "avatar" image file. The body
// is capped before any buffering so oversized uploads fail early.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	maxBytes := h.userService.AvatarMaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+4096)

	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing avatar file (form field 'avatar')")
		return
	}
	if file.Size > maxBytes {
		response.Error(c, http.StatusBadRequest, "avatar too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to read avatar")
		return
	}

	if err := h.userService.SetAvatar(user, data); err != nil {
		switch {
		case errors.Is(err, app.ErrAvatarInvalid), errors.Is(err, app.ErrAvatarTooLarge):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "store avatar failed")
		}
		return
	}
	c.Status(http.StatusOK)
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "please authenticate")
		return
	}

	if err := h.userService.ClearAvatar(user); err != nil {
		response.Error(c, http.StatusInternalServerError, "clear avatar failed")
		return
	}
	c.Status(http.StatusOK)
}

// Avatar serves any user's stored avatar bytes with the content type sniffed
// at upload. No auth: the route is public in the original contract.
func (h *UserHandler) Avatar(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, app.ErrAvatarNotFound.Error())
		return
	}

	data, contentType, err := h.userService.AvatarByUserID(uint(userID))
	if err != nil {
		if errors.Is(err, app.ErrAvatarNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "fetch avatar failed")
		return
	}

	c.Data(http.StatusOK, contentType, data)
}
