package transport

import "context"

// ISender delivers a text to a chat address ("<digits>@c.us"). Errors are
// tagged with a delivery class from the errors package.
type ISender interface {
	Send(ctx context.Context, address string, text string) error
}

// InboundMessage is a transport-neutral view of a received chat message.
type InboundMessage struct {
	ID                  string
	From                string
	Kind                string
	Text                string
	Caption             string
	DurationSeconds     uint32
	VoiceNote           bool
	FileName            string
	Latitude            float64
	Longitude           float64
	LocationDescription string
	VCard               string
	ContactDisplayName  string
	Media               []byte
}

// Kinds reported by the transport.
const (
	KindText     = "text"
	KindImage    = "image"
	KindVideo    = "video"
	KindAudio    = "audio"
	KindDocument = "document"
	KindSticker  = "sticker"
	KindLocation = "location"
	KindContact  = "contact"
	KindUnknown  = "unknown"
)

// Listener receives the transport lifecycle events.
type Listener interface {
	OnReady()
	OnQR(code string)
	OnInbound(msg InboundMessage)
	OnAuthFailure(reason string)
	OnDisconnected(reason string)
}
