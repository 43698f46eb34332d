// Package gateway is the boundary to the messaging transport that
// carries text, approval buttons and audio files to end users.
package gateway

import "errors"

// ErrStaleHandle reports that a stored artifact handle was rejected by
// the transport. A stale handle is not cache corruption; callers fall
// back to a fresh fetch cycle.
var ErrStaleHandle = errors.New("stale artifact handle")

// Audio carries descriptive metadata for an audio delivery.
type Audio struct {
	Title     string
	Performer string
}

// UserRef identifies the subject of an approval request.
type UserRef struct {
	TelegramID int64
	FullName   string
}

// Message is an inbound user message, already normalized by the
// transport adapter. Command holds the bare command name ("start",
// "stats") or "" for free-form text.
type Message struct {
	ChatID   int64
	UserID   int64
	UserName string
	FullName string
	Text     string
	Command  string
}

// Callback is an inbound button press.
type Callback struct {
	ID        string
	UserID    int64
	ChatID    int64
	MessageID int
	Data      string
}

// Update is one inbound event; exactly one field is set.
type Update struct {
	Message  *Message
	Callback *Callback
}

type Gateway interface {
	// Updates yields inbound events until the transport shuts down.
	Updates() <-chan Update

	SendText(chatID int64, text string) (messageID int, err error)
	EditText(chatID int64, messageID int, text string) error
	DeleteMessage(chatID int64, messageID int) error

	// SendAudioFile uploads a local artifact file and returns the
	// transport handle that can resend it without re-uploading.
	SendAudioFile(chatID int64, path string, meta Audio) (handle string, size int64, err error)

	// SendAudioHandle resends a previously uploaded artifact. It
	// returns ErrStaleHandle when the transport no longer accepts
	// the handle.
	SendAudioHandle(chatID int64, handle string, meta Audio) error

	SendApprovalRequest(adminChatID int64, subject UserRef) error
	AnswerCallback(callbackID, text string, alert bool) error
}
