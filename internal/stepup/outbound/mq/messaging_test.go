package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/messaging"
	"github.com/shandysiswandi/storefront/internal/shared/event"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
)

func TestMessaging_PublishPasscodeIssued(t *testing.T) {
	bus := messaging.NewMemory()
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan messaging.Message, 1)
	go func() {
		_ = bus.Consume(ctx, event.PasscodeIssuedDestination, func(_ context.Context, msg messaging.Message) error {
			got <- msg
			return nil
		})
	}()
	require.Eventually(t, func() bool { return bus.Subscribers(event.PasscodeIssuedDestination) == 1 }, time.Second, 5*time.Millisecond)

	exp := time.Date(2026, 5, 1, 12, 5, 0, 0, time.UTC)
	pub := NewMessaging(bus, instrument.NewNoop())
	err := pub.PublishPasscodeIssued(instrument.SetCorrelationID(context.Background(), "cid-9"), entity.Passcode{
		Identity:  "user@example.com",
		Code:      "482913",
		ExpiresAt: exp,
	})
	require.NoError(t, err)

	select {
	case msg := <-got:
		var body event.PasscodeIssuedMessage
		require.NoError(t, json.Unmarshal(msg.Body, &body))
		assert.Equal(t, event.PasscodeIssuedMessage{Identity: "user@example.com", Code: "482913", ExpiresAt: exp}, body)
		assert.Equal(t, "cid-9", msg.Header(event.HeaderCorrelationID))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}
