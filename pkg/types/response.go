package types

// SuccessEnvelope wraps every 2xx body. Warnings carries non-blocking outcomes such as
// lines accepted against insufficient stock.
type SuccessEnvelope struct {
	Data     any `json:"data"`
	Warnings any `json:"warnings,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
