package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/shared/event"
)

// RegisterMQConsumer starts the notification consumers on routine. An empty
// modules.notification.consumer_names enables all of them.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	consumer messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	concurrency := max(cfg.GetInt("modules.notification.concurrency"), 1)

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // nats queue group / kafka consumer group
		handler messaging.Handler
	}{
		{
			name:    event.PasscodeIssuedDestinationConsumerNotification,
			topic:   event.PasscodeIssuedDestination,
			group:   event.PasscodeIssuedDestinationConsumerNotification,
			handler: mqHandler.PasscodeIssuedNotification,
		},
	}

	for _, c := range consumers {
		if len(enabled) > 0 && !slices.Contains(enabled, c.name) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", c.name)
			return consumer.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithGroup(c.group),
				messaging.WithConcurrency(concurrency),
			)
		})
	}
}
