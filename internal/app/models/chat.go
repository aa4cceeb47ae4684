package models

import "time"

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one entry of a session's in-memory chat transcript.
type ChatMessage struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the body accepted by POST /api/chat and forwarded to the backend.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply is the JSON reply of the chat backend.
type ChatReply struct {
	Reply        string `json:"reply"`
	PDFAvailable bool   `json:"pdfAvailable,omitempty"`
}

// ChatResult is either a text reply or a generated itinerary document.
type ChatResult struct {
	Reply *ChatReply
	PDF   []byte
}

// IsPDF reports whether the backend answered with a document.
func (r *ChatResult) IsPDF() bool {
	return r != nil && r.PDF != nil
}
