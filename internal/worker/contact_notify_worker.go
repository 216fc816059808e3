package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"plantid/internal/model"
	"plantid/internal/platform/rabbitmq"
)

var errUndecodable = errors.New("undecodable contact payload")

// Notifier delivers a contact message to whoever answers them.
type Notifier interface {
	Notify(ctx context.Context, msg model.ContactMessage) error
}

// LogNotifier writes contact messages to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, msg model.ContactMessage) error {
	log.Ctx(ctx).Info().
		Uint("contact_id", msg.ID).
		Str("from", msg.Email).
		Str("subject", msg.Subject).
		Msg("new contact message")
	return nil
}

type ContactNotifyWorker struct {
	conn      *amqp.Connection
	notifier  Notifier
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewContactNotifyWorker(conn *amqp.Connection, notifier Notifier, queueName string) *ContactNotifyWorker {
	return &ContactNotifyWorker{
		conn:      conn,
		notifier:  notifier,
		queueName: queueName,
	}
}

func (w *ContactNotifyWorker) Start(ctx context.Context) error {
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

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
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
					log.Warn().Str("queue", w.queueName).Msg("contact worker delivery channel closed")
					return
				}

				if err := w.handle(workerCtx, d.Body); err != nil {
					// Retry a failed notification once, drop undecodable payloads.
					requeue := !d.Redelivered && !errors.Is(err, errUndecodable)
					log.Error().Err(err).Bool("requeue", requeue).Msg("contact worker handle failed")
					_ = d.Nack(false, requeue)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ContactNotifyWorker) handle(ctx context.Context, body []byte) error {
	var msg model.ContactMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", errUndecodable, err)
	}
	if err := w.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("notify contact %d failed: %w", msg.ID, err)
	}
	return nil
}

func (w *ContactNotifyWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
