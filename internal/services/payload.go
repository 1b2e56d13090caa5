package services

import (
	"time"

	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/models"
)

// PayloadInput carries everything the APS body of a live-activity push may
// contain. Fields that do not apply to the event are ignored, not rejected.
type PayloadInput struct {
	Event          models.LifecycleEvent
	ContentState   map[string]string
	AttributesType string
	Attributes     map[string]string
	Alert          *models.Alert
	Timestamp      *int64
	DismissalDate  *int64
}

// PayloadBuilder shapes APS bodies for live-activity pushes. The injected
// clock is consulted only when no explicit timestamp is supplied, so repeated
// calls with identical input produce identical output.
type PayloadBuilder struct {
	now func() time.Time
}

func NewPayloadBuilder(now func() time.Time) *PayloadBuilder {
	if now == nil {
		now = time.Now
	}
	return &PayloadBuilder{now: now}
}

// BuildAPS projects the input into the nested structure APNs expects for
// activity pushes. APNs honors attributes only on start and dismissal-date
// only on end; for other events those fields are dropped silently.
func (b *PayloadBuilder) BuildAPS(in PayloadInput) map[string]interface{} {
	ts := b.now().Unix()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}

	aps := map[string]interface{}{
		"timestamp": ts,
		"event":     string(in.Event),
	}
	if in.ContentState != nil {
		aps["content-state"] = in.ContentState
	}
	if in.Alert != nil {
		aps["alert"] = in.Alert
	}
	if in.Event == models.EventStart {
		if in.AttributesType != "" {
			aps["attributes-type"] = in.AttributesType
		}
		if in.Attributes != nil {
			aps["attributes"] = in.Attributes
		}
	}
	if in.Event == models.EventEnd && in.DismissalDate != nil {
		aps["dismissal-date"] = *in.DismissalDate
	}
	return aps
}
