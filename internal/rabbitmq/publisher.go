package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// NotificationsExchange — обменник для событий заявок и участков.
const NotificationsExchange = "notifications"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди уведомлений, объявляемые на старте.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.subscription.created", RoutingKey: "subscription.created"},
		{QueueName: "notifications.subscription.approved", RoutingKey: "subscription.approved"},
		{QueueName: "notifications.subscription.rejected", RoutingKey: "subscription.rejected"},
		{QueueName: "notifications.plot.status_updated", RoutingKey: "plot.status_updated"},
	}
}

// Publisher публикует JSON-сообщения в обменник уведомлений.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewPublisher создает Publisher поверх открытого канала.
func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish сериализует сообщение в JSON и публикует его с заданным ключом.
func (p *Publisher) Publish(routingKey string, message any) error {
	const op = "rabbitmq.Publish"

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
