package entity

// Webhook event types sent by the payment processor.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventCheckoutFailed    = "checkout.failed"
)

type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// TargetStatus maps the event type to the checkout status it settles. ok is
// false for event types the app does not act on.
func (e WebhookEvent) TargetStatus() (status CheckoutStatus, ok bool) {
	switch e.Type {
	case EventCheckoutCompleted:
		return CheckoutStatusPaid, true
	case EventCheckoutFailed:
		return CheckoutStatusFailed, true
	default:
		return "", false
	}
}
