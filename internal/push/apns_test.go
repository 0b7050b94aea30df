package push

import (
	"encoding/json"
	"testing"
)

func TestVoIPPayload_FlattensDataToTopLevel(t *testing.T) {
	raw, err := voipPayload(Message{
		Title: "alice is calling",
		Data:  map[string]string{"callId": "c1", "channelName": "room1"},
	})
	if err != nil {
		t.Fatalf("voipPayload: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if body["callId"] != "c1" || body["channelName"] != "room1" {
		t.Errorf("call metadata not at top level: %v", body)
	}
}

func TestVoIPPayload_DataCannotReplaceAPSDictionary(t *testing.T) {
	raw, err := voipPayload(Message{
		Title: "alice is calling",
		Data:  map[string]string{"aps": "bogus", "callId": "c1"},
	})
	if err != nil {
		t.Fatalf("voipPayload: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	aps, ok := body["aps"].(map[string]any)
	if !ok {
		t.Fatalf("aps is %T, want dictionary", body["aps"])
	}
	if aps["alert"] != "alice is calling" {
		t.Errorf("aps alert = %v, want caller name title", aps["alert"])
	}
	if aps["content-available"] != float64(1) {
		t.Errorf("aps content-available = %v, want 1", aps["content-available"])
	}
	if body["callId"] != "c1" {
		t.Errorf("callId missing from payload: %v", body)
	}
}
