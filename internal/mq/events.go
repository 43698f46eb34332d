// Package mq publishes delivery and failure events to RabbitMQ for
// external consumers. Publishing is fire-and-forget: it is enabled
// only when RABBITMQ_URL is set and a failure never affects delivery.
package mq

import (
	"TuneRelay/config"
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeEvents = "tunerelay.events"

	RoutingDelivery     = "delivery"
	RoutingFetchFailure = "fetch_failure"
)

type Client struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

var publisherMu sync.Mutex
var publisher *Client

// Dial opens a connection and channel to the configured broker.
func Dial() (*Client, error) {
	conn, err := amqp.Dial(config.AppConfig.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

func (c *Client) declareTopology() error {
	return c.Channel.ExchangeDeclare(
		ExchangeEvents,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
}

func getPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	client, err := Dial()
	if err != nil {
		return nil, err
	}
	if err := client.declareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	publisher = client
	return publisher, nil
}

// DeliveryEvent records one successful delivery.
type DeliveryEvent struct {
	SourceURL  string    `json:"source_url"`
	TelegramID int64     `json:"telegram_id"`
	FromCache  bool      `json:"from_cache"`
	At         time.Time `json:"at"`
}

// FetchFailureEvent records a failed fetch.
type FetchFailureEvent struct {
	SourceURL  string    `json:"source_url"`
	TelegramID int64     `json:"telegram_id"`
	Error      string    `json:"error"`
	At         time.Time `json:"at"`
}

// PublishDelivery emits a delivery event when a broker is configured.
func PublishDelivery(sourceURL string, telegramID int64, fromCache bool) {
	publish(RoutingDelivery, DeliveryEvent{
		SourceURL:  sourceURL,
		TelegramID: telegramID,
		FromCache:  fromCache,
		At:         time.Now(),
	})
}

// PublishFetchFailure emits a fetch failure event when a broker is
// configured.
func PublishFetchFailure(sourceURL string, telegramID int64, cause error) {
	publish(RoutingFetchFailure, FetchFailureEvent{
		SourceURL:  sourceURL,
		TelegramID: telegramID,
		Error:      cause.Error(),
		At:         time.Now(),
	})
}

func publish(routingKey string, event interface{}) {
	if config.AppConfig.RabbitMQURL == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("mq: marshal %s event failed: %v", routingKey, err)
		return
	}
	client, err := getPublisher()
	if err != nil {
		log.Printf("mq: broker unavailable: %v", err)
		return
	}
	err = client.Channel.PublishWithContext(
		context.Background(),
		ExchangeEvents,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		log.Printf("mq: publish %s failed: %v", routingKey, err)
	}
}
