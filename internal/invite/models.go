// Package invite implements the call-invitation pipeline:
// validate -> resolve recipient -> persist call record -> dispatch push.
package invite

import (
	"context"
	"errors"
)

var (
	// ErrInvalidArgument is returned before any side effect when a
	// required field is missing.
	ErrInvalidArgument = errors.New("invite: callId, channelName, callerUid and recipientId are required")

	// ErrRecipientNotFound is returned when no profile matches the
	// recipient identifier. No record is written in that case.
	ErrRecipientNotFound = errors.New("invite: recipient not found")
)

// Request is the inbound call-invitation payload.
type Request struct {
	CallID      string         `json:"callId" binding:"required"`
	ChannelName string         `json:"channelName" binding:"required"`
	CallerUID   string         `json:"callerUid" binding:"required"`
	CallerName  string         `json:"callerName"`
	RecipientID string         `json:"recipientId" binding:"required"`
	AgoraAppID  string         `json:"agoraAppId"`
	AgoraToken  string         `json:"agoraToken"`
	CallType    string         `json:"callType"`
	Payload     map[string]any `json:"payload"`
}

// Profile is a recipient record owned by an external system; this
// service only ever reads it. Absent tokens mean that push kind is not
// possible, never an error.
type Profile struct {
	UserID    string `bson:"_id" json:"userId"`
	Username  string `bson:"username" json:"username"`
	Name      string `bson:"name" json:"name"`
	ImageURL  string `bson:"imageUrl" json:"imageUrl"`
	Platform  string `bson:"platform" json:"platform"`
	FCMToken  string `bson:"fcmToken" json:"-"`
	VoIPToken string `bson:"voipToken" json:"-"`
}

// CallRecord is the room document written once per invitation, keyed by
// channel name. Writes are unconditional overwrites; lifecycle beyond
// creation belongs to a collaborator, not this service.
type CallRecord struct {
	ChannelName string `bson:"_id" json:"channelName"`
	CallID      string `bson:"callId" json:"callId"`
	CallerUID   string `bson:"callerUid" json:"callerUid"`
	CallerName  string `bson:"callerName" json:"callerName"`
	RecipientID string `bson:"recipientId" json:"recipientId"`
	CallType    string `bson:"callType" json:"callType"`
	AgoraAppID  string `bson:"agoraAppId,omitempty" json:"agoraAppId,omitempty"`
	AgoraToken  string `bson:"agoraToken,omitempty" json:"agoraToken,omitempty"`
	Active      bool   `bson:"active" json:"active"`
	CreatedAtMS int64  `bson:"createdAt" json:"createdAt"`
}

// ProfileStore resolves recipient profiles from the document store.
type ProfileStore interface {
	// GetProfile looks a profile up by document key.
	GetProfile(ctx context.Context, id string) (Profile, error)
	// FindProfileByField looks a profile up by field equality.
	FindProfileByField(ctx context.Context, field, value string) (Profile, error)
}

// CallStore persists call records.
type CallStore interface {
	// PutCall overwrites the record keyed by rec.ChannelName.
	PutCall(ctx context.Context, rec CallRecord) error
}
