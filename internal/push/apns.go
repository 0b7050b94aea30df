package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/token"
)

// APNSKey is the token-auth key material for the VoIP transport.
type APNSKey struct {
	KeyID      string
	TeamID     string
	PrivateKey []byte // p8 PEM
	Topic      string // app bundle id
	Sandbox    bool
}

// VoIPSender delivers platform-native VoIP pushes over APNs.
// VoIP pushes carry no notification chrome; the receiving app wakes in
// the background and renders its own incoming-call UI.
type VoIPSender struct {
	client *apns2.Client
	topic  string
}

func NewVoIPSender(key APNSKey) (*VoIPSender, error) {
	if key.KeyID == "" || key.TeamID == "" || len(key.PrivateKey) == 0 || key.Topic == "" {
		return nil, errors.New("push: apns key id, team id, private key and topic are required")
	}
	authKey, err := token.AuthKeyFromBytes(key.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("push: parse apns key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   key.KeyID,
		TeamID:  key.TeamID,
	})
	if key.Sandbox {
		client = client.Development()
	} else {
		client = client.Production()
	}

	return &VoIPSender{client: client, topic: key.Topic + ".voip"}, nil
}

// voipPayload flattens the call metadata to the top level of the APNs
// payload so the app's PushKit handler can read it directly. The "aps"
// dictionary is reserved by APNs; a caller-merged key of that name is
// dropped rather than allowed to clobber delivery.
func voipPayload(msg Message) ([]byte, error) {
	body := map[string]any{
		"aps": map[string]any{
			"alert":             msg.Title,
			"content-available": 1,
		},
	}
	for k, v := range msg.Data {
		if k == "aps" {
			continue
		}
		body[k] = v
	}
	return json.Marshal(body)
}

func (s *VoIPSender) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := voipPayload(msg)
	if err != nil {
		return "", err
	}

	res, err := s.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: msg.Token,
		Topic:       s.topic,
		PushType:    apns2.PushTypeVOIP,
		Priority:    apns2.PriorityHigh,
		Payload:     payload,
	})
	if err != nil {
		return "", err
	}
	if !res.Sent() {
		return "", fmt.Errorf("push: apns rejected: %s", res.Reason)
	}
	return res.ApnsID, nil
}
