package invite

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// notificationData builds the merged data map handed to the push
// transports. A fixed base (call identifiers, caller display name,
// media routing info, CallKit-style fields) is overlaid with any
// caller-supplied payload; caller values win on key collision. Every
// value is coerced to a string because the FCM data channel rejects
// anything else.
func notificationData(req Request, callerName, callType string) map[string]string {
	callKitType := "1" // video
	if callType == "audio" {
		callKitType = "0"
	}

	base := map[string]any{
		"callId":      req.CallID,
		"channelName": req.ChannelName,
		"callerUid":   req.CallerUID,
		"callerName":  callerName,
		"recipientId": req.RecipientID,
		"callType":    callType,

		// CallKit-style fields for native incoming-call UIs.
		"id":         req.CallID,
		"nameCaller": callerName,
		"handle":     req.CallerUID,
		"type":       callKitType,
		"duration":   "30000",
	}
	if req.AgoraAppID != "" {
		base["agoraAppId"] = req.AgoraAppID
	}
	if req.AgoraToken != "" {
		base["agoraToken"] = req.AgoraToken
	}
	for k, v := range req.Payload {
		base[k] = v
	}

	out := make(map[string]string, len(base))
	for k, v := range base {
		out[k] = stringifyValue(v)
	}
	return out
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		// encoding/json decodes all JSON numbers to float64.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
