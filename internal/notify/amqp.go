package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const routingKeyPaymentSettled = "payment.settled"

// AMQPPublisher pushes notifications onto a topic exchange; the mailer
// service consumes them and sends the actual emails.
type AMQPPublisher struct {
	ch       *amqp.Channel
	exchange string
}

// Setup dials the broker, opens a channel, and declares the exchange.
func Setup(url, exchange string) (*amqp.Connection, *AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}

	return conn, &AMQPPublisher{ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishPaymentSettled(ctx context.Context, n PaymentSettled) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange,
		routingKeyPaymentSettled,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
