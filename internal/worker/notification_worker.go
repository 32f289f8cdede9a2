package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"tasknest/internal/model"
	"tasknest/internal/repository"
)

// NotificationWorker consumes user lifecycle events (signup, account
// deletion) and records a notification for each. It stands in for the
// outbound email path of the original product.
type NotificationWorker struct {
	conn      *amqp.Connection
	repo      *repository.NotificationRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewNotificationWorker(conn *amqp.Connection, repo *repository.NotificationRepository, queueName string) *NotificationWorker {
	return &NotificationWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event model.UserEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode user event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				notification := &model.Notification{
					UserID: event.UserID,
					Email:  event.Email,
					Kind:   event.Kind,
				}
				if err := w.repo.Create(notification); err != nil {
					log.Printf("worker record notification failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *NotificationWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
