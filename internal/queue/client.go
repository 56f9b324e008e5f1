package queue

import "context"

// Client publishes job-saved events to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Backend names accepted by QUEUE_BACKEND.
const (
	BackendInline = "inline"
	BackendSQS    = "sqs"
	BackendAMQP   = "amqp"
)
