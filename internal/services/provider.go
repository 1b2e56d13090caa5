package services

import "context"

// LiveActivityMessage is the envelope handed to a sender. The FCM token routes
// the push to the device; the activity token addresses the specific activity
// instance (or, for start, the push-to-start capability).
type LiveActivityMessage struct {
	FCMToken      string
	ActivityToken string
	APS           map[string]interface{}
}

// MessageSender represents the downstream push provider (FCM today). Sends are
// at-most-once: the sender never retries on its own.
type MessageSender interface {
	Name() string
	SendLiveActivity(ctx context.Context, msg *LiveActivityMessage) (string, error)
	SendAlert(ctx context.Context, fcmToken, title, body string) (string, error)
}
