package kafka

import "time"

// Config describes the event stream the service publishes to. The loan
// service writes every domain event to a single topic.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}
