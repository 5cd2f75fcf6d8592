package messaging

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverNATS selects the NATS backend.
	DriverNATS = "nats"
	// DriverKafka selects the Kafka backend.
	DriverKafka = "kafka"
	// DriverMemory selects the in-process bus. It is also used when no driver is configured.
	DriverMemory = "memory"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// Options carries the per-backend settings; only the selected driver's block is read.
type Options struct {
	NATS  NATSConfig
	Kafka KafkaConfig
}

// New opens the backend named by driver. Names are matched case-insensitively.
func New(driver string, opts Options) (Messaging, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = DriverMemory
	}

	var (
		m   Messaging
		err error
	)
	switch name {
	case DriverKafka:
		m, err = NewKafka(opts.Kafka)
	case DriverNATS:
		m, err = NewNATS(opts.NATS)
	case DriverMemory:
		m = NewMemory()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("messaging: open %s: %w", name, err)
	}

	return m, nil
}
