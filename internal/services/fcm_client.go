package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/models"
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMClient sends live-activity pushes through the FCM HTTP v1 API.
type FCMClient struct {
	endpoint string
	bundleID string
	client   *http.Client
	logger   *slog.Logger
}

// NewFCMClient reads the service-account file and builds an OAuth2-backed HTTP
// client scoped to Firebase messaging. The project is taken from projectID or,
// when empty, from the credential file. Any credential problem is returned so
// the caller can refuse to start serving.
func NewFCMClient(ctx context.Context, credentialsPath, projectID, endpoint, bundleID string, timeout time.Duration, logger *slog.Logger) (*FCMClient, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if projectID == "" {
		var sa struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal(data, &sa); err == nil {
			projectID = sa.ProjectID
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("fcm: project id missing from configuration and credentials file")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx))
	client.Timeout = timeout

	return &FCMClient{
		endpoint: fmt.Sprintf("%s/v1/projects/%s/messages:send", endpoint, projectID),
		bundleID: bundleID,
		client:   client,
		logger:   logger,
	}, nil
}

func (c *FCMClient) Name() string {
	return "fcm"
}

// SendLiveActivity wraps the built APS body in the FCM envelope for
// activity-lifecycle pushes. The activity token travels next to the payload,
// never inside it, and the topic is the app bundle id with the APNs
// live-activity suffix.
func (c *FCMClient) SendLiveActivity(ctx context.Context, msg *LiveActivityMessage) (string, error) {
	envelope := fcmEnvelope{Message: fcmMessage{
		Token: msg.FCMToken,
		APNS: &fcmAPNS{
			LiveActivityToken: msg.ActivityToken,
			Headers: map[string]string{
				"apns-push-type": "liveactivity",
				"apns-topic":     c.bundleID + ".push-type.liveactivity",
				"apns-priority":  "10",
			},
			Payload: map[string]interface{}{"aps": msg.APS},
		},
	}}
	return c.send(ctx, &envelope)
}

// SendAlert delivers a plain visible notification, used by the ping endpoint
// to verify FCM connectivity end to end.
func (c *FCMClient) SendAlert(ctx context.Context, fcmToken, title, body string) (string, error) {
	envelope := fcmEnvelope{Message: fcmMessage{
		Token:        fcmToken,
		Notification: &fcmNotification{Title: title, Body: body},
		APNS: &fcmAPNS{
			Headers: map[string]string{
				"apns-push-type": "alert",
				"apns-priority":  "10",
			},
			Payload: map[string]interface{}{
				"aps": map[string]interface{}{"sound": "default"},
			},
		},
	}}
	return c.send(ctx, &envelope)
}

func (c *FCMClient) send(ctx context.Context, envelope *fcmEnvelope) (string, error) {
	body, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var fail fcmErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&fail); decodeErr == nil && fail.Error.Message != "" {
			c.logger.Error("fcm rejected message",
				slog.Int("status", resp.StatusCode),
				slog.String("code", fail.Error.Status),
				slog.String("message", fail.Error.Message),
			)
			return "", &models.DispatchError{Provider: c.Name(), Message: fail.Error.Message}
		}
		return "", &models.DispatchError{Provider: c.Name(), Message: fmt.Sprintf("received status %d", resp.StatusCode)}
	}

	var ok fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return "", err
	}
	return ok.Name, nil
}

type fcmEnvelope struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string           `json:"token"`
	Notification *fcmNotification `json:"notification,omitempty"`
	APNS         *fcmAPNS         `json:"apns,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type fcmAPNS struct {
	LiveActivityToken string                 `json:"live_activity_token,omitempty"`
	Headers           map[string]string      `json:"headers,omitempty"`
	Payload           map[string]interface{} `json:"payload,omitempty"`
}

type fcmResponse struct {
	Name string `json:"name"`
}

type fcmErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
