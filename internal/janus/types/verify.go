package types

type VerifyRequest struct {
	Code string `json:"code"`
}

// VerifyResponse reports whether a submitted passcode is live. DisplayName is
// only meaningful when Valid is true; it falls back to "Visitor" when the
// directory cannot resolve the subject.
type VerifyResponse struct {
	Valid       bool   `json:"valid"`
	DisplayName string `json:"displayName,omitempty"`
}
