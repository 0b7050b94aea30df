// Package rtctoken mints short-lived access tokens for the Agora RTC SDK.
package rtctoken

import (
	"errors"
	"time"

	rtctokenbuilder "github.com/AgoraIO/Tools/DynamicKey/AgoraDynamicKey/go/src/rtctokenbuilder2"
)

type Role string

const (
	RolePublisher  Role = "publisher"
	RoleSubscriber Role = "subscriber"
)

// ParseRole maps a query-string role to a Role, defaulting to publisher.
func ParseRole(v string) Role {
	if v == string(RoleSubscriber) {
		return RoleSubscriber
	}
	return RolePublisher
}

// Builder signs channel access tokens. The concrete implementation is
// an external library; keep this interface narrow so handlers can be
// tested with a fake.
type Builder interface {
	Build(channel string, uid uint32, role Role, expiry time.Duration) (string, error)
}

// AgoraBuilder signs tokens with an Agora app certificate.
type AgoraBuilder struct {
	appID   string
	appCert string
}

func NewAgoraBuilder(appID, appCert string) (*AgoraBuilder, error) {
	if appID == "" || appCert == "" {
		return nil, errors.New("rtctoken: app id and certificate are required")
	}
	return &AgoraBuilder{appID: appID, appCert: appCert}, nil
}

func (b *AgoraBuilder) Build(channel string, uid uint32, role Role, expiry time.Duration) (string, error) {
	if channel == "" {
		return "", errors.New("rtctoken: channel is required")
	}
	if expiry <= 0 {
		return "", errors.New("rtctoken: expiry must be positive")
	}

	var r rtctokenbuilder.Role = rtctokenbuilder.RolePublisher
	if role == RoleSubscriber {
		r = rtctokenbuilder.RoleSubscriber
	}
	seconds := uint32(expiry / time.Second)
	return rtctokenbuilder.BuildTokenWithUid(b.appID, b.appCert, channel, uid, r, seconds, seconds)
}
