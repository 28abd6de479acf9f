package message

import "time"

type Direction string

const (
	Inbound  Direction = "INBOUND"
	Outbound Direction = "OUTBOUND"
)

type Status string

const (
	StatusSent     Status = "SENT"
	StatusFailed   Status = "FAILED"
	StatusReceived Status = "RECEIVED"
)

// Message types stored alongside each log entry.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeDocument = "document"
	TypeSticker  = "sticker"
	TypeLocation = "location"
	TypeContact  = "contact"
)

// LogEntry is one row of the append-only message log.
type LogEntry struct {
	ID          int
	ContactID   *int
	Phone       string
	MessageType string
	MessageBody string
	Direction   Direction
	Status      Status
	Timestamp   time.Time
}

type IMessageLogService interface {
	Append(entry *LogEntry) (int, error)
	ListRecent(limit int) (*[]LogEntry, error)
	Delete(id int) error
}
