package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStartRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     StartRequest
		wantErr string
	}{
		{"valid", StartRequest{FCMToken: "T1", PushToStartToken: "S1"}, ""},
		{"missing fcm token", StartRequest{PushToStartToken: "S1"}, "fcmToken"},
		{"missing start token", StartRequest{FCMToken: "T1"}, "pushToStartToken"},
		{"both empty", StartRequest{}, "fcmToken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			checkFieldError(t, err, tt.wantErr)
		})
	}
}

func TestUpdateRequestValidate(t *testing.T) {
	if err := (&UpdateRequest{FCMToken: "T1", PushToken: "P1"}).Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	checkFieldError(t, (&UpdateRequest{FCMToken: "T1"}).Validate(), "pushToken")
	checkFieldError(t, (&UpdateRequest{PushToken: "P1"}).Validate(), "fcmToken")
}

func TestEndRequestValidate(t *testing.T) {
	if err := (&EndRequest{FCMToken: "T1", PushToken: "P1"}).Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	checkFieldError(t, (&EndRequest{FCMToken: "T1"}).Validate(), "pushToken")
}

func TestPingRequestValidate(t *testing.T) {
	if err := (&PingRequest{FCMToken: "T1"}).Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	checkFieldError(t, (&PingRequest{}).Validate(), "fcmToken")
}

func TestApplyDefaultsFillsMaps(t *testing.T) {
	start := StartRequest{FCMToken: "T1", PushToStartToken: "S1"}
	start.ApplyDefaults()
	if start.ContentState == nil || start.Attributes == nil {
		t.Error("start defaults must produce empty maps")
	}

	update := UpdateRequest{FCMToken: "T1", PushToken: "P1"}
	update.ApplyDefaults()
	if update.ContentState == nil {
		t.Error("update defaults must produce an empty content state")
	}
}

func TestRequestDecodingIgnoresUnknownFields(t *testing.T) {
	body := []byte(`{"fcmToken":"T1","pushToken":"P1","somethingElse":true}`)
	var req UpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unknown fields must be ignored: %v", err)
	}
	if req.PushToken != "P1" {
		t.Errorf("pushToken = %q", req.PushToken)
	}
}

func TestRequestDecodingFailsClosedOnWrongShape(t *testing.T) {
	// contentState must be a flat string map.
	body := []byte(`{"fcmToken":"T1","pushToken":"P1","contentState":{"nested":{"x":1}}}`)
	var req UpdateRequest
	if err := json.Unmarshal(body, &req); err == nil {
		t.Error("nested content state must fail decoding")
	}

	body = []byte(`{"fcmToken":"T1","pushToken":"P1","dismissalDate":"tomorrow"}`)
	var end EndRequest
	if err := json.Unmarshal(body, &end); err == nil {
		t.Error("non-numeric dismissalDate must fail decoding")
	}
}

func checkFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if field == "" {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		return
	}
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("err = %v, want FieldError", err)
	}
	if fieldErr.Field != field {
		t.Errorf("field = %q, want %q", fieldErr.Field, field)
	}
}
