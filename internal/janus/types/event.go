package types

// MatchEvent is one already-decoded event from the recognition pipeline.
// A present SubjectID means the pipeline matched a known face; an empty
// event is an unknown visitor at the door.
type MatchEvent struct {
	SubjectID  string  `json:"subjectId,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

func (e MatchEvent) Known() bool { return e.SubjectID != "" }

type EventBatchRequest struct {
	Events []MatchEvent `json:"events"`
}

// EventBatchResponse summarizes what the engine did with a batch. Individual
// event failures are isolated and counted, never fatal to the batch.
type EventBatchResponse struct {
	OK         bool   `json:"ok"`
	Processed  int    `json:"processed"`
	Notified   int    `json:"notified"`
	Suppressed int    `json:"suppressed"`
	Failed     int    `json:"failed"`
	ServerTime string `json:"serverTime"`
}
