package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tasknest/internal/bootstrap"
	"tasknest/internal/config"
	"tasknest/internal/model"
)

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.SessionToken{},
		&model.Task{},
		&model.Notification{},
	))

	cfg := &config.Config{
		App: config.AppConfig{
			Name:    "tasknest-test",
			Env:     "test",
			GinMode: gin.TestMode,
		},
		Auth:   config.AuthConfig{JWTSecret: "test-secret"},
		Avatar: config.AvatarConfig{MaxBytes: 1 << 20},
	}

	app := &bootstrap.App{
		Config:    cfg,
		DB:        db,
		StartedAt: time.Now(),
	}
	return NewRouter(app), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

type authResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func signup(t *testing.T, router *gin.Engine, name, email, password string) authResponse {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/users", "", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var result authResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result
}

func createTask(t *testing.T, router *gin.Engine, token, description string) model.Task {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/tasks", token, gin.H{"description": description})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var task model.Task
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &task))
	return task
}

func uploadFile(t *testing.T, router *gin.Engine, path, token, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}
