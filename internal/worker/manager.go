package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"socialfeed/internal/queue"
)

const (
	readBatchSize = 10
	readBlockTime = 5 * time.Second
)

// Manager runs a pool of feed workers consuming from the feed stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewManager creates a worker manager with the given pool size.
func NewManager(consumer queue.Consumer, handler *Handler, workerCount int) *Manager {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: workerCount,
	}
}

// Start creates the consumer group and launches the worker goroutines.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, queue.StreamFeed, queue.ConsumerGroupFeed); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	for i := 0; i < m.workerCount; i++ {
		consumerName := fmt.Sprintf("worker-%d", i)
		m.wg.Add(1)
		go m.runWorker(workerCtx, consumerName)
	}

	log.Printf("[Worker] Started %d feed workers on stream=%s group=%s",
		m.workerCount, queue.StreamFeed, queue.ConsumerGroupFeed)
	return nil
}

// Stop signals all workers to exit and waits for them to drain.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	log.Printf("[Worker] All feed workers stopped")
}

func (m *Manager) runWorker(ctx context.Context, consumerName string) {
	defer m.wg.Done()

	log.Printf("[Worker] %s started", consumerName)

	// Recover messages this consumer read but never acknowledged before
	// a previous shutdown.
	m.processPending(ctx, consumerName)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Worker] %s stopping", consumerName)
			return
		default:
		}

		messages, err := m.consumer.Read(ctx, queue.StreamFeed, queue.ConsumerGroupFeed,
			consumerName, readBatchSize, readBlockTime)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Worker] %s read FAILED: err=%v", consumerName, err)
			time.Sleep(time.Second)
			continue
		}

		m.handleMessages(ctx, consumerName, messages)
	}
}

func (m *Manager) processPending(ctx context.Context, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(ctx, queue.StreamFeed, queue.ConsumerGroupFeed,
			consumerName, readBatchSize)
		if err != nil {
			log.Printf("[Worker] %s pending read FAILED: err=%v", consumerName, err)
			return
		}
		if len(messages) == 0 {
			return
		}

		log.Printf("[Worker] %s recovering %d pending messages", consumerName, len(messages))
		m.handleMessages(ctx, consumerName, messages)
	}
}

// handleMessages processes a batch of messages and acks each one. Messages
// whose handler errored are acked too, otherwise a poison message would be
// redelivered forever.
func (m *Manager) handleMessages(ctx context.Context, consumerName string, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(ctx, msg.Event); err != nil {
			log.Printf("[Worker] %s handle FAILED: id=%s err=%v", consumerName, msg.ID, err)
		}

		if err := m.consumer.Ack(ctx, queue.StreamFeed, queue.ConsumerGroupFeed, msg.ID); err != nil {
			log.Printf("[Worker] %s ack FAILED: id=%s err=%v", consumerName, msg.ID, err)
		}
	}
}
