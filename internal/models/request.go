package models

// LifecycleEvent selects which Live Activity operation a push performs.
type LifecycleEvent string

const (
	EventStart  LifecycleEvent = "start"
	EventUpdate LifecycleEvent = "update"
	EventEnd    LifecycleEvent = "end"
	EventPing   LifecycleEvent = "ping"
)

// Alert describes the visible banner/sound attached to a push. It is copied
// into the APS payload verbatim when present.
type Alert struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Sound string `json:"sound,omitempty"`
}

// StartRequest creates a new Live Activity remotely via a push-to-start token.
type StartRequest struct {
	FCMToken         string            `json:"fcmToken"`
	PushToStartToken string            `json:"pushToStartToken"`
	ContentState     map[string]string `json:"contentState"`
	Attributes       map[string]string `json:"attributes"`
	AttributesType   string            `json:"attributesType,omitempty"`
	Alert            *Alert            `json:"alert,omitempty"`
	Timestamp        *int64            `json:"timestamp,omitempty"`
}

// Validate reports the first missing required field.
func (r *StartRequest) Validate() error {
	if r.FCMToken == "" {
		return requiredField("fcmToken")
	}
	if r.PushToStartToken == "" {
		return requiredField("pushToStartToken")
	}
	return nil
}

// ApplyDefaults replaces nil maps with empty ones so the payload always
// carries a content-state section, matching the device runtime's expectation
// of flat dictionaries.
func (r *StartRequest) ApplyDefaults() {
	if r.ContentState == nil {
		r.ContentState = map[string]string{}
	}
	if r.Attributes == nil {
		r.Attributes = map[string]string{}
	}
}

// UpdateRequest pushes new content state to a running activity.
type UpdateRequest struct {
	FCMToken     string            `json:"fcmToken"`
	PushToken    string            `json:"pushToken"`
	ContentState map[string]string `json:"contentState"`
	Alert        *Alert            `json:"alert,omitempty"`
	Timestamp    *int64            `json:"timestamp,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	if r.FCMToken == "" {
		return requiredField("fcmToken")
	}
	if r.PushToken == "" {
		return requiredField("pushToken")
	}
	return nil
}

func (r *UpdateRequest) ApplyDefaults() {
	if r.ContentState == nil {
		r.ContentState = map[string]string{}
	}
}

// EndRequest terminates a running activity, optionally deferring UI removal
// until DismissalDate (seconds since epoch).
type EndRequest struct {
	FCMToken      string            `json:"fcmToken"`
	PushToken     string            `json:"pushToken"`
	ContentState  map[string]string `json:"contentState"`
	Alert         *Alert            `json:"alert,omitempty"`
	Timestamp     *int64            `json:"timestamp,omitempty"`
	DismissalDate *int64            `json:"dismissalDate,omitempty"`
}

func (r *EndRequest) Validate() error {
	if r.FCMToken == "" {
		return requiredField("fcmToken")
	}
	if r.PushToken == "" {
		return requiredField("pushToken")
	}
	return nil
}

func (r *EndRequest) ApplyDefaults() {
	if r.ContentState == nil {
		r.ContentState = map[string]string{}
	}
}

// PingRequest sends a plain visible notification to verify FCM connectivity.
type PingRequest struct {
	FCMToken string `json:"fcmToken"`
}

func (r *PingRequest) Validate() error {
	if r.FCMToken == "" {
		return requiredField("fcmToken")
	}
	return nil
}
