package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"tasknest/internal/config"
	"tasknest/internal/model"
	mysqlClient "tasknest/internal/platform/mysql"
	rabbitmqClient "tasknest/internal/platform/rabbitmq"
	"tasknest/internal/repository"
	"tasknest/internal/worker"
)

type App struct {
	Config             *config.Config
	DB                 *gorm.DB
	MQConn             *amqp.Connection
	NotificationWorker *worker.NotificationWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.SessionToken{},
		&model.Task{},
		&model.Notification{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	notificationRepo := repository.NewNotificationRepository(db)
	notificationWorker := worker.NewNotificationWorker(mqConn, notificationRepo, cfg.RabbitMQ.UserEventQueue)
	if err := notificationWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start notification worker failed: %w", err)
	}

	return &App{
		Config:             cfg,
		DB:                 db,
		MQConn:             mqConn,
		NotificationWorker: notificationWorker,
		StartedAt:          time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.NotificationWorker != nil {
		a.NotificationWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
