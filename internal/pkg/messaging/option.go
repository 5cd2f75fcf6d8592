package messaging

type consumeOptions struct {
	concurrency int
	group       string
}

// ConsumeOption configures Consume.
type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency < 1 {
		co.concurrency = 1
	}
	return co
}

// WithConcurrency sets how many handler goroutines process messages in parallel.
// Kafka consumers ignore it to keep per-partition order.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

// WithGroup sets the consumer group (Kafka) or queue group (NATS) so that each
// message is handled by one member only.
func WithGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.group = group }
}
