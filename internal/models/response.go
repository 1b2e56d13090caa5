package models

// APIResponse is the uniform body returned by every relay endpoint: 200 with
// the provider message id, or 400 with a human-readable error.
type APIResponse struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}
