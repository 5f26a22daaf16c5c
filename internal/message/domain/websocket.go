package domain

// LiveConn transport handle of one live subscriber. The registry only needs
// write and close, so tests can register fakes.
type LiveConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// InboundFrame client payload read from a chat or group websocket
type InboundFrame struct {
	ID             string  `json:"id"`
	Content        string  `json:"content"`
	ReplyToID      *string `json:"reply_to_id"`
	ReplyToContent *string `json:"reply_to_content"`
	Action         string  `json:"action"`
	CreatedAt      string  `json:"created_at"`
}

// ErrorFrame written back to the sender when a live write fails; silent loss
// of a just-composed message is unacceptable.
type ErrorFrame struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}
