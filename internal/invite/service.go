package invite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"callbridge/internal/push"
	"callbridge/pkg/logger"
)

// Result is the success response body for an invitation.
// Success reflects the call-record write; push outcomes are reported
// per channel and never fail the request.
type Result struct {
	Success       bool         `json:"success"`
	ChannelName   string       `json:"channelName"`
	CallID        string       `json:"callId"`
	Platform      string       `json:"platform"`
	Notifications push.Summary `json:"notifications"`
}

// Service runs the invitation pipeline. Dependencies are injected so
// tests can substitute in-memory stores and fake transports.
type Service struct {
	profiles ProfileStore
	calls    CallStore
	dispatch *push.Dispatcher

	// lookupField selects the resolution strategy: empty means by
	// document key, non-empty means equality query on that field.
	lookupField string

	now func() time.Time
}

func NewService(profiles ProfileStore, calls CallStore, dispatch *push.Dispatcher, lookupField string) *Service {
	return &Service{
		profiles:    profiles,
		calls:       calls,
		dispatch:    dispatch,
		lookupField: lookupField,
		now:         time.Now,
	}
}

// Send executes one invitation. Ordering is fixed: the record write
// always completes before any push is attempted, and a write failure
// aborts the request. Concurrent invitations racing on the same
// channel are last-writer-wins; the write is an overwrite by contract.
func (s *Service) Send(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	callerName := req.CallerName
	if callerName == "" {
		callerName = req.CallerUID
	}
	callType := strings.ToLower(strings.TrimSpace(req.CallType))
	if callType != "audio" {
		callType = "video"
	}

	prof, err := s.resolve(ctx, req.RecipientID)
	if err != nil {
		return Result{}, err
	}

	platform := strings.ToLower(strings.TrimSpace(prof.Platform))
	if platform == "" {
		platform = "android"
	}

	rec := CallRecord{
		ChannelName: req.ChannelName,
		CallID:      req.CallID,
		CallerUID:   req.CallerUID,
		CallerName:  callerName,
		RecipientID: req.RecipientID,
		CallType:    callType,
		AgoraAppID:  req.AgoraAppID,
		AgoraToken:  req.AgoraToken,
		Active:      true,
		CreatedAtMS: s.now().UnixMilli(),
	}
	if err := s.calls.PutCall(ctx, rec); err != nil {
		// A push with no backing record is deliberately avoided.
		return Result{}, fmt.Errorf("invite: write call record: %w", err)
	}

	sum := s.dispatch.Dispatch(ctx, push.Input{
		Platform:  platform,
		VoIPToken: prof.VoIPToken,
		FCMToken:  prof.FCMToken,
		Title:     fmt.Sprintf("%s is calling", callerName),
		Body:      fmt.Sprintf("Incoming %s call", callType),
		Data:      notificationData(req, callerName, callType),
	})

	logger.From(ctx).Debug("invitation dispatched",
		"channel", req.ChannelName,
		"platform", platform,
		"voip", sum.VoIP.Status,
		"fcm", sum.FCM.Status,
	)

	return Result{
		Success:       true,
		ChannelName:   req.ChannelName,
		CallID:        req.CallID,
		Platform:      platform,
		Notifications: sum,
	}, nil
}

func validate(req Request) error {
	if req.CallID == "" || req.ChannelName == "" || req.CallerUID == "" || req.RecipientID == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, recipientID string) (Profile, error) {
	if s.lookupField == "" {
		return s.profiles.GetProfile(ctx, recipientID)
	}
	return s.profiles.FindProfileByField(ctx, s.lookupField, recipientID)
}
