package push

import (
	"context"
	"log/slog"
)

// Input carries everything the platform decision needs.
type Input struct {
	Platform  string // already lowercased, "android" when unknown
	VoIPToken string
	FCMToken  string

	Title string
	Body  string
	Data  map[string]string
}

// Dispatcher applies the platform decision table:
//
//	ios   + voip token          -> VoIP push only
//	ios   + fcm token, no voip  -> FCM with APNs metadata
//	other + fcm token           -> FCM with Android metadata
//	no usable token             -> nothing, omission recorded
//
// Each attempt is independently guarded; a channel failure never aborts
// the other channel or the request.
type Dispatcher struct {
	voip Sender // nil when the VoIP transport is not configured
	fcm  Sender // nil when the FCM transport is not configured
	log  *slog.Logger
}

func NewDispatcher(voip, fcm Sender, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{voip: voip, fcm: fcm, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, in Input) Summary {
	if in.Platform == "ios" {
		if in.VoIPToken != "" {
			return Summary{
				VoIP: d.sendVoIP(ctx, in),
				FCM:  notAttempted("voip push preferred for ios"),
			}
		}
		sum := Summary{VoIP: notAttempted("no voip token")}
		if in.FCMToken != "" {
			sum.FCM = d.sendFCM(ctx, in)
		} else {
			sum.FCM = notAttempted("no fcm token")
		}
		return sum
	}

	sum := Summary{VoIP: notAttempted("recipient platform is not ios")}
	if in.FCMToken != "" {
		sum.FCM = d.sendFCM(ctx, in)
	} else {
		sum.FCM = notAttempted("no fcm token")
	}
	return sum
}

func (d *Dispatcher) sendVoIP(ctx context.Context, in Input) Outcome {
	if d.voip == nil {
		return notAttempted("voip transport not configured")
	}
	id, err := d.voip.Send(ctx, Message{
		Token:    in.VoIPToken,
		Title:    in.Title,
		Body:     in.Body,
		Data:     in.Data,
		Platform: "ios",
	})
	if err != nil {
		d.log.Error("voip push failed", "err", err)
		return failed(err)
	}
	return sent(id)
}

func (d *Dispatcher) sendFCM(ctx context.Context, in Input) Outcome {
	if d.fcm == nil {
		return notAttempted("fcm transport not configured")
	}
	id, err := d.fcm.Send(ctx, Message{
		Token:    in.FCMToken,
		Title:    in.Title,
		Body:     in.Body,
		Data:     in.Data,
		Platform: in.Platform,
	})
	if err != nil {
		d.log.Error("fcm push failed", "err", err)
		return failed(err)
	}
	return sent(id)
}
