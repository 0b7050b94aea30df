// Package store provides the document-store backends for profiles and
// call records.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"callbridge/internal/invite"
)

const (
	profilesCollection = "profiles"
	callsCollection    = "calls"
)

// Mongo implements invite.ProfileStore and invite.CallStore.
type Mongo struct {
	profiles *mongo.Collection
	calls    *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		profiles: db.Collection(profilesCollection),
		calls:    db.Collection(callsCollection),
	}
}

func (m *Mongo) GetProfile(ctx context.Context, id string) (invite.Profile, error) {
	var p invite.Profile
	err := m.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return invite.Profile{}, invite.ErrRecipientNotFound
	}
	if err != nil {
		return invite.Profile{}, fmt.Errorf("store: get profile: %w", err)
	}
	return p, nil
}

func (m *Mongo) FindProfileByField(ctx context.Context, field, value string) (invite.Profile, error) {
	var p invite.Profile
	err := m.profiles.FindOne(ctx, bson.M{field: value}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return invite.Profile{}, invite.ErrRecipientNotFound
	}
	if err != nil {
		return invite.Profile{}, fmt.Errorf("store: find profile by %s: %w", field, err)
	}
	return p, nil
}

// PutCall performs an unconditional overwrite keyed by channel name.
func (m *Mongo) PutCall(ctx context.Context, rec invite.CallRecord) error {
	_, err := m.calls.ReplaceOne(ctx,
		bson.M{"_id": rec.ChannelName},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: put call: %w", err)
	}
	return nil
}
