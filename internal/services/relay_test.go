package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/models"
	"github.com/kisimediaDE/capacitor-live-activity-relay/pkg/metrics"
)

type fakeSender struct {
	liveCalls  []LiveActivityMessage
	alertCalls int
	err        error
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) SendLiveActivity(ctx context.Context, msg *LiveActivityMessage) (string, error) {
	f.liveCalls = append(f.liveCalls, *msg)
	if f.err != nil {
		return "", f.err
	}
	return "projects/test/messages/msg-1", nil
}

func (f *fakeSender) SendAlert(ctx context.Context, fcmToken, title, body string) (string, error) {
	f.alertCalls++
	if f.err != nil {
		return "", f.err
	}
	return "projects/test/messages/ping-1", nil
}

func newTestRelay(sender *fakeSender) *Relay {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	builder := NewPayloadBuilder(fixedClock(1700000100))
	return NewRelay(sender, builder, metrics.New(), discard, "GenericAttributes", 64)
}

func TestRelayStartDispatchesEnvelope(t *testing.T) {
	sender := &fakeSender{}
	relay := newTestRelay(sender)

	id, err := relay.Start(context.Background(), &models.StartRequest{
		FCMToken:         "T1",
		PushToStartToken: "S1",
		ContentState:     map[string]string{"status": "On the way"},
		Attributes:       map[string]string{"type": "delivery"},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if id != "projects/test/messages/msg-1" {
		t.Errorf("message id = %q", id)
	}
	if len(sender.liveCalls) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.liveCalls))
	}

	msg := sender.liveCalls[0]
	if msg.FCMToken != "T1" || msg.ActivityToken != "S1" {
		t.Errorf("envelope tokens = %q/%q, want T1/S1", msg.FCMToken, msg.ActivityToken)
	}
	if got := msg.APS["event"]; got != "start" {
		t.Errorf("aps event = %v", got)
	}
	if got := msg.APS["attributes-type"]; got != "GenericAttributes" {
		t.Errorf("attributes-type = %v, want configured default", got)
	}
}

func TestRelayStartKeepsExplicitAttributesType(t *testing.T) {
	sender := &fakeSender{}
	relay := newTestRelay(sender)

	_, err := relay.Start(context.Background(), &models.StartRequest{
		FCMToken:         "T1",
		PushToStartToken: "S1",
		AttributesType:   "TimerAttributes",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := sender.liveCalls[0].APS["attributes-type"]; got != "TimerAttributes" {
		t.Errorf("attributes-type = %v, want TimerAttributes", got)
	}
}

func TestRelayValidationBlocksDispatch(t *testing.T) {
	tests := []struct {
		name  string
		call  func(r *Relay) error
		field string
	}{
		{
			name: "start missing push-to-start token",
			call: func(r *Relay) error {
				_, err := r.Start(context.Background(), &models.StartRequest{FCMToken: "T1"})
				return err
			},
			field: "pushToStartToken",
		},
		{
			name: "update missing push token",
			call: func(r *Relay) error {
				_, err := r.Update(context.Background(), &models.UpdateRequest{FCMToken: "T1"})
				return err
			},
			field: "pushToken",
		},
		{
			name: "end missing fcm token",
			call: func(r *Relay) error {
				_, err := r.End(context.Background(), &models.EndRequest{PushToken: "P1"})
				return err
			},
			field: "fcmToken",
		},
		{
			name: "ping missing fcm token",
			call: func(r *Relay) error {
				_, err := r.Ping(context.Background(), &models.PingRequest{})
				return err
			},
			field: "fcmToken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			relay := newTestRelay(sender)

			err := tt.call(relay)
			var fieldErr *models.FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("err = %v, want FieldError", err)
			}
			if fieldErr.Field != tt.field {
				t.Errorf("field = %q, want %q", fieldErr.Field, tt.field)
			}
			if len(sender.liveCalls) != 0 || sender.alertCalls != 0 {
				t.Errorf("dispatcher invoked %d/%d times, want zero", len(sender.liveCalls), sender.alertCalls)
			}
		})
	}
}

func TestRelayEndCarriesDismissalDate(t *testing.T) {
	sender := &fakeSender{}
	relay := newTestRelay(sender)

	_, err := relay.End(context.Background(), &models.EndRequest{
		FCMToken:      "T1",
		PushToken:     "P1",
		ContentState:  map[string]string{"status": "Delivered"},
		DismissalDate: i64(1700000000),
	})
	if err != nil {
		t.Fatalf("End: %v", err)
	}

	aps := sender.liveCalls[0].APS
	if got := aps["dismissal-date"]; got != int64(1700000000) {
		t.Errorf("dismissal-date = %v, want 1700000000", got)
	}
	if _, present := aps["attributes"]; present {
		t.Error("attributes must not appear on end")
	}
}

func TestRelayDispatchErrorSurfacesVerbatim(t *testing.T) {
	sender := &fakeSender{err: &models.DispatchError{Provider: "fake", Message: "Requested entity was not found."}}
	relay := newTestRelay(sender)

	_, err := relay.Update(context.Background(), &models.UpdateRequest{FCMToken: "T1", PushToken: "P1"})
	var dispatchErr *models.DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("err = %v, want DispatchError", err)
	}
	if dispatchErr.Message != "Requested entity was not found." {
		t.Errorf("provider message altered: %q", dispatchErr.Message)
	}
}

func TestRelayRejectsInvalidContentImage(t *testing.T) {
	sender := &fakeSender{}
	relay := newTestRelay(sender)

	_, err := relay.Update(context.Background(), &models.UpdateRequest{
		FCMToken:     "T1",
		PushToken:    "P1",
		ContentState: map[string]string{ContentImageKey: "not base64!!"},
	})
	var fieldErr *models.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("err = %v, want FieldError", err)
	}
	if fieldErr.Field != "contentState.imageBase64" {
		t.Errorf("field = %q", fieldErr.Field)
	}
	if len(sender.liveCalls) != 0 {
		t.Error("no push may be sent for invalid image data")
	}
}
