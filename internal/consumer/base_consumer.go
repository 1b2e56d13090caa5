package consumer

import (
	"context"
	"fmt"
	"sync"

	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BaseConsumer owns the AMQP topology (exchange, queue, dead-letter queue) and
// the worker pool draining deliveries into a handler.
type BaseConsumer struct {
	conn        *amqp.Connection
	queue       string
	dlq         string
	prefetch    int
	workerCount int
	logger      *slog.Logger
	exchange    string
	routingKey  string
}

func NewBaseConsumer(conn *amqp.Connection, queue, dlq string, prefetch, workerCount int, logger *slog.Logger) *BaseConsumer {
	if prefetch <= 0 {
		prefetch = 50
	}
	if workerCount <= 0 {
		workerCount = 5
	}
	return &BaseConsumer{
		conn:        conn,
		queue:       queue,
		dlq:         dlq,
		prefetch:    prefetch,
		workerCount: workerCount,
		logger:      logger,
		exchange:    "liveactivity.direct",
		routingKey:  "live-activity",
	}
}

// Start declares the topology and consumes until the context is cancelled.
func (c *BaseConsumer) Start(ctx context.Context, handler func(context.Context, amqp.Delivery) error) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := c.declareTopology(ch); err != nil {
		return fmt.Errorf("topology setup failed: %w", err)
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("qos configuration failed: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-deliveries:
					if !ok {
						return
					}
					if err := handler(ctx, msg); err != nil {
						c.logger.Error("intent handler returned error", slog.Any("error", err))
					}
				}
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}

func (c *BaseConsumer) declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(c.exchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	args := amqp.Table{}
	if c.dlq != "" {
		args["x-dead-letter-exchange"] = ""
		args["x-dead-letter-routing-key"] = c.dlq
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, args); err != nil {
		return err
	}
	if err := ch.QueueBind(c.queue, c.routingKey, c.exchange, false, nil); err != nil {
		return err
	}

	if c.dlq != "" {
		if _, err := ch.QueueDeclare(c.dlq, true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}
