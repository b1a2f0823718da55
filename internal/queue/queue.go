package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/unclebandit/campaign-mailer/internal/logger"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers each published payload to every subscriber of the
// topic on its own goroutine, retrying a failing handler with linear backoff.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	wg       sync.WaitGroup

	MaxRetries int
	Backoff    time.Duration
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
	}
}

// job wraps a payload with retry info
type job struct {
	Topic      string
	Payload    any
	RetryCount int
}

// Publish hands the payload to all subscribers of topic.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go q.process(handler, job{Topic: topic, Payload: payload})
	}
	return nil
}

func (q *InMemoryQueue) process(handler func(payload any) error, j job) {
	defer q.wg.Done()
	log := logger.Named("queue").With(logger.String("topic", j.Topic))

	for {
		err := handler(j.Payload)
		if err == nil {
			return
		}

		j.RetryCount++
		if j.RetryCount > q.MaxRetries {
			log.Error("job permanently failed", logger.Int("attempts", j.RetryCount), logger.Err(err))
			return
		}
		log.Warn("job failed, retrying", logger.Int("attempt", j.RetryCount), logger.Err(err))
		time.Sleep(time.Duration(j.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every in-flight job has finished.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

var _ Queue = (*InMemoryQueue)(nil)
