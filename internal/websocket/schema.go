package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionFrame     Action = "frame"
	ActionViolation Action = "violation"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to save a single answer.
type AnswerRequest struct {
	Action      Action `json:"action"`
	QuestionID  string `json:"question_id"`
	OptionIndex int    `json:"option_index"`
}

// FrameRequest carries one base64-encoded webcam frame for analysis.
type FrameRequest struct {
	Action Action `json:"action"`
	Frame  string `json:"frame"`
}

// ViolationRequest is sent by the client when its own detectors fire
// (tab switch, fullscreen exit, hidden window).
type ViolationRequest struct {
	Action Action `json:"action"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// SubmitRequest is sent by the client to finish and grade the attempt.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

// Session events (resumed, time, saved, warning, secure, graded, time_up,
// terminated, error) are emitted by the session controller and serialized
// directly from its Event type; this file only adds the transport extras.

type Event string

const (
	EventError Event = "error"
	EventPong  Event = "pong"
)

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
