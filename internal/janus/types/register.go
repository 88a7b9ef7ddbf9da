package types

// RegisterRequest is the owner-approved unknown-visitor flow: a human fills
// in a name (and optional note) on the approval page, which immediately
// issues a passcode for a synthetic subject.
type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	Note        string `json:"note,omitempty"`
}

type RegisterResponse struct {
	Accepted bool `json:"accepted"`
}
