package http

import (
	"github.com/gin-gonic/gin"

	appsvc "tasknest/internal/app"
	"tasknest/internal/bootstrap"
	"tasknest/internal/platform/rabbitmq"
	"tasknest/internal/repository"
	"tasknest/internal/transport/http/handler"
	"tasknest/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.DB)
	tokenRepo := repository.NewTokenRepository(app.DB)
	taskRepo := repository.NewTaskRepository(app.DB)

	var publisher appsvc.EventPublisher
	if app.MQConn != nil {
		publisher = rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.UserEventQueue)
	}

	authService := appsvc.NewAuthService(userRepo, tokenRepo, publisher, app.Config.Auth.JWTSecret)
	userService := appsvc.NewUserService(userRepo, publisher, app.Config.Avatar.MaxBytes)
	taskService := appsvc.NewTaskService(taskRepo)

	userHandler := handler.NewUserHandler(authService, userService)
	taskHandler := handler.NewTaskHandler(taskService)

	authRequired := middleware.Auth(authService)

	users := router.Group("/users")
	users.POST("", userHandler.Signup)
	users.POST("/login", userHandler.Login)
	users.POST("/logout", authRequired, userHandler.Logout)
	users.POST("/logoutAll", authRequired, userHandler.LogoutAll)
	users.GET("/me", authRequired, userHandler.Me)
	users.PATCH("/me", authRequired, userHandler.UpdateMe)
	users.DELETE("/me", authRequired, userHandler.DeleteMe)
	users.POST("/me/avatar", authRequired, userHandler.UploadAvatar)
	users.DELETE("/me/avatar", authRequired, userHandler.DeleteAvatar)
	users.GET("/:id/avatar", userHandler.Avatar)

	tasks := router.Group("/tasks")
	tasks.Use(authRequired)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	return router
}
