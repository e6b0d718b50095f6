// Package alertmq publishes alert payloads to a RabbitMQ queue
package alertmq

import (
	"context"

	"github.com/streadway/amqp"
)

// Publisher writes JSON bodies to one durable queue
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// Dial connects, opens a channel and declares the durable queue
func Dial(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publish sends one JSON body to the queue
func (p *Publisher) Publish(_ context.Context, body []byte) error {
	return p.ch.Publish(
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Close tears down the channel then the connection
func (p *Publisher) Close() error {
	cherr := p.ch.Close()
	if err := p.conn.Close(); err != nil {
		return err
	}
	return cherr
}
