package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/unclebandit/campaign-mailer/internal/logger"
)

// AMQPQueue publishes and consumes campaign events through RabbitMQ.
// Each topic maps to a durable queue of the same name.
type AMQPQueue struct {
	conn *amqp.Connection

	mu        sync.Mutex
	publishCh *amqp.Channel
	declared  map[string]bool
}

func DialAMQP(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQPQueue{conn: conn, publishCh: ch, declared: map[string]bool{}}, nil
}

func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.declared[topic] {
		if err := declare(q.publishCh, topic); err != nil {
			return fmt.Errorf("declare queue %s: %w", topic, err)
		}
		q.declared[topic] = true
	}

	return q.publishCh.Publish(
		"",
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Subscribe consumes topic on a dedicated channel. Bodies are decoded
// into CampaignEvent before reaching handler. A failing handler gets the
// message redelivered once; a second failure drops it.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declare(ch, topic); err != nil {
		ch.Close()
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}

	msgs, err := ch.Consume(
		topic,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("register consumer: %w", err)
	}

	log := logger.Named("amqp").With(logger.String("topic", topic))
	go func() {
		defer ch.Close()
		for d := range msgs {
			evt, err := decodeEvent(d.Body)
			if err != nil {
				log.Warn("dropping invalid message", logger.Err(err))
				d.Ack(false)
				continue
			}
			if err := handler(evt); err != nil {
				log.Warn("handler failed", logger.CampaignID(evt.CampaignID), logger.Err(err))
				d.Nack(false, !d.Redelivered)
				continue
			}
			d.Ack(false)
		}
		log.Info("consumer stopped")
	}()
	return nil
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishCh != nil {
		q.publishCh.Close()
	}
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
