// Package rabbitmq publishes lifecycle events to a RabbitMQ topic exchange.
package rabbitmq
