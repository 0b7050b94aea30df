// Package push dispatches call-invitation notifications.
//
// Exactly one push class fires per recipient in the canonical flow: a
// platform-native VoIP push for iOS recipients that registered a VoIP
// token, an FCM push otherwise. Transports are adapters behind the
// Sender interface; no SDK calls happen outside this package.
package push

import "context"

// Message is the transport-agnostic outbound push.
// Data values must already be stringified; the FCM data channel does
// not accept non-string values.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string

	// Platform selects delivery metadata on the general-push path
	// (APNs headers for "ios", priority/channel for everything else).
	Platform string
}

// Sender delivers one message and returns a transport message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type Status string

const (
	StatusSent         Status = "sent"
	StatusNotAttempted Status = "not_attempted"
	StatusFailed       Status = "failed"
)

// Outcome is the per-channel result surfaced in the response summary.
// Failures are recorded here instead of failing the request.
type Outcome struct {
	Status    Status `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Summary aggregates the two independent channel outcomes.
type Summary struct {
	VoIP Outcome `json:"voip"`
	FCM  Outcome `json:"fcm"`
}

func sent(id string) Outcome {
	return Outcome{Status: StatusSent, MessageID: id}
}

func notAttempted(reason string) Outcome {
	return Outcome{Status: StatusNotAttempted, Reason: reason}
}

func failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Error: err.Error()}
}
