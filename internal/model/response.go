package model

// Envelope is the JSON shape every endpoint returns: a success flag, an
// optional data payload, and an optional human-readable message.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK wraps a payload in a successful envelope.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps an error message in a failed envelope.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}
