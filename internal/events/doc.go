// Package events carries lifecycle notifications out of the service layer.
//
// Services build an Event after a mutation commits and hand it to an
// EventEmitter. The InMemoryEventEmitter fans each event out to the registered
// handlers: the AuditLogHandler in every deployment, and the RabbitMQ
// publisher from internal/platform/rabbitmq when a broker is configured.
package events
