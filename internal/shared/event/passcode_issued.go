package event

import "time"

const PasscodeIssuedDestination string = "stepup.passcode.issued"
const PasscodeIssuedDestinationConsumerNotification string = "stepup.passcode.issued.notification"

// HeaderCorrelationID carries the request correlation id across the bus.
const HeaderCorrelationID string = "cID"

type PasscodeIssuedMessage struct {
	Identity  string    `json:"identity"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
