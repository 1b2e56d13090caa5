package services

import (
	"context"
	"encoding/json"

	"log/slog"

	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/models"
	"github.com/kisimediaDE/capacitor-live-activity-relay/pkg/metrics"
)

// apsByteBudget is the APNs payload ceiling for live-activity pushes.
const apsByteBudget = 4096

// Relay turns lifecycle requests into provider pushes: validate, build,
// dispatch, done. It holds no per-request state, so instances are safe for
// concurrent use and no request can affect another.
type Relay struct {
	sender          MessageSender
	builder         *PayloadBuilder
	metrics         *metrics.Metrics
	logger          *slog.Logger
	defaultAttrType string
	imageMaxDim     int
}

func NewRelay(sender MessageSender, builder *PayloadBuilder, m *metrics.Metrics, logger *slog.Logger, defaultAttrType string, imageMaxDim int) *Relay {
	if defaultAttrType == "" {
		defaultAttrType = "GenericAttributes"
	}
	return &Relay{
		sender:          sender,
		builder:         builder,
		metrics:         m,
		logger:          logger,
		defaultAttrType: defaultAttrType,
		imageMaxDim:     imageMaxDim,
	}
}

// Start requests creation of a new activity via its push-to-start token.
func (r *Relay) Start(ctx context.Context, req *models.StartRequest) (string, error) {
	r.metrics.IncReceived()
	if err := req.Validate(); err != nil {
		r.metrics.IncRejected()
		return "", err
	}
	req.ApplyDefaults()
	if err := r.normalizeImage(req.ContentState); err != nil {
		r.metrics.IncRejected()
		return "", err
	}

	attrType := req.AttributesType
	if attrType == "" {
		attrType = r.defaultAttrType
	}

	aps := r.builder.BuildAPS(PayloadInput{
		Event:          models.EventStart,
		ContentState:   req.ContentState,
		AttributesType: attrType,
		Attributes:     req.Attributes,
		Alert:          req.Alert,
		Timestamp:      req.Timestamp,
	})
	return r.dispatch(ctx, models.EventStart, req.FCMToken, req.PushToStartToken, aps)
}

// Update pushes new content state to a running activity.
func (r *Relay) Update(ctx context.Context, req *models.UpdateRequest) (string, error) {
	r.metrics.IncReceived()
	if err := req.Validate(); err != nil {
		r.metrics.IncRejected()
		return "", err
	}
	req.ApplyDefaults()
	if err := r.normalizeImage(req.ContentState); err != nil {
		r.metrics.IncRejected()
		return "", err
	}

	aps := r.builder.BuildAPS(PayloadInput{
		Event:        models.EventUpdate,
		ContentState: req.ContentState,
		Alert:        req.Alert,
		Timestamp:    req.Timestamp,
	})
	return r.dispatch(ctx, models.EventUpdate, req.FCMToken, req.PushToken, aps)
}

// End terminates a running activity, optionally deferring UI removal.
func (r *Relay) End(ctx context.Context, req *models.EndRequest) (string, error) {
	r.metrics.IncReceived()
	if err := req.Validate(); err != nil {
		r.metrics.IncRejected()
		return "", err
	}
	req.ApplyDefaults()
	if err := r.normalizeImage(req.ContentState); err != nil {
		r.metrics.IncRejected()
		return "", err
	}

	aps := r.builder.BuildAPS(PayloadInput{
		Event:         models.EventEnd,
		ContentState:  req.ContentState,
		Alert:         req.Alert,
		Timestamp:     req.Timestamp,
		DismissalDate: req.DismissalDate,
	})
	return r.dispatch(ctx, models.EventEnd, req.FCMToken, req.PushToken, aps)
}

// Ping sends a plain notification, bypassing the payload builder entirely.
func (r *Relay) Ping(ctx context.Context, req *models.PingRequest) (string, error) {
	r.metrics.IncReceived()
	if err := req.Validate(); err != nil {
		r.metrics.IncRejected()
		return "", err
	}

	id, err := r.sender.SendAlert(ctx, req.FCMToken, "Ping", "FCM works 🎉")
	if err != nil {
		r.metrics.IncFailed()
		r.logger.Error("ping dispatch failed", slog.Any("error", err))
		return "", err
	}
	r.metrics.IncSent()
	return id, nil
}

func (r *Relay) dispatch(ctx context.Context, event models.LifecycleEvent, fcmToken, activityToken string, aps map[string]interface{}) (string, error) {
	if raw, err := json.Marshal(aps); err == nil && len(raw) > apsByteBudget {
		r.logger.Warn("aps payload exceeds the APNs live-activity budget",
			slog.String("event", string(event)),
			slog.Int("bytes", len(raw)),
		)
	}

	id, err := r.sender.SendLiveActivity(ctx, &LiveActivityMessage{
		FCMToken:      fcmToken,
		ActivityToken: activityToken,
		APS:           aps,
	})
	if err != nil {
		r.metrics.IncFailed()
		r.logger.Error("push dispatch failed",
			slog.String("event", string(event)),
			slog.Any("error", err),
		)
		return "", err
	}

	r.metrics.IncSent()
	r.logger.Info("push dispatched",
		slog.String("event", string(event)),
		slog.String("message_id", id),
	)
	return id, nil
}

func (r *Relay) normalizeImage(contentState map[string]string) error {
	encoded, ok := contentState[ContentImageKey]
	if !ok || encoded == "" {
		return nil
	}
	normalized, err := NormalizeContentImage(encoded, r.imageMaxDim)
	if err != nil {
		return &models.FieldError{Field: "contentState." + ContentImageKey, Reason: err.Error()}
	}
	contentState[ContentImageKey] = normalized
	return nil
}
