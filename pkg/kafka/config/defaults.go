package kafka_config

import "time"

const (
	DefaultKafkaEnabled = false
	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaTopic   = "booking.events"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
)
