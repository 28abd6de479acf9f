package whatsapp_client

import (
	"context"
	"fmt"
	"time"

	"go-wa-dispatch/src/domain/transport"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
)

const downloadTimeout = 60 * time.Second

func (c *Client) handleEvent(rawEvt interface{}) {
	if c.listener == nil {
		return
	}
	switch evt := rawEvt.(type) {
	case *events.Connected:
		c.qr.clear()
		c.Logger.Info("WhatsApp client ready")
		c.listener.OnReady()
	case *events.Message:
		msg, ok := c.toInbound(evt)
		if !ok {
			return
		}
		c.listener.OnInbound(msg)
	case *events.LoggedOut:
		c.listener.OnAuthFailure(fmt.Sprintf("logged out: %s", evt.Reason.String()))
	case *events.ConnectFailure:
		c.listener.OnAuthFailure(fmt.Sprintf("connect failure: %s %s", evt.Reason.String(), evt.Message))
	case *events.TemporaryBan:
		c.listener.OnAuthFailure(evt.String())
	case *events.ClientOutdated:
		c.listener.OnAuthFailure("client outdated")
	case *events.StreamReplaced:
		c.listener.OnDisconnected("stream replaced by another session")
	case *events.Disconnected:
		if c.isClosed() {
			return
		}
		c.listener.OnDisconnected("connection closed")
	}
}

// toInbound converts one-to-one user messages. Messages sent by this
// device and group, broadcast or newsletter traffic are dropped.
func (c *Client) toInbound(evt *events.Message) (transport.InboundMessage, bool) {
	if evt.Info.IsFromMe || evt.Info.Chat.Server != types.DefaultUserServer || evt.Message == nil {
		return transport.InboundMessage{}, false
	}

	msg := describe(evt.Message)
	msg.ID = evt.Info.ID
	msg.From = phoneFromJID(evt.Info.Sender.ToNonAD())
	if msg.From == "" {
		msg.From = phoneFromJID(evt.Info.Chat)
	}

	if media := downloadable(evt.Message); media != nil {
		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		data, err := c.wa.Download(ctx, media)
		cancel()
		if err != nil {
			c.Logger.Warn("Error downloading inbound media", zap.String("messageId", evt.Info.ID), zap.Error(err))
		} else {
			msg.Media = data
		}
	}
	return msg, true
}

// describe maps the protobuf payload onto the transport-neutral fields.
func describe(m *waE2E.Message) transport.InboundMessage {
	switch {
	case m.GetImageMessage() != nil:
		return transport.InboundMessage{Kind: transport.KindImage, Caption: m.GetImageMessage().GetCaption()}
	case m.GetStickerMessage() != nil:
		return transport.InboundMessage{Kind: transport.KindSticker}
	case m.GetVideoMessage() != nil:
		v := m.GetVideoMessage()
		return transport.InboundMessage{Kind: transport.KindVideo, Caption: v.GetCaption(), DurationSeconds: v.GetSeconds()}
	case m.GetAudioMessage() != nil:
		a := m.GetAudioMessage()
		return transport.InboundMessage{Kind: transport.KindAudio, DurationSeconds: a.GetSeconds(), VoiceNote: a.GetPTT()}
	case m.GetDocumentMessage() != nil:
		d := m.GetDocumentMessage()
		return transport.InboundMessage{Kind: transport.KindDocument, FileName: d.GetFileName(), Caption: d.GetCaption()}
	case m.GetLocationMessage() != nil:
		l := m.GetLocationMessage()
		description := l.GetName()
		if description == "" {
			description = l.GetAddress()
		}
		return transport.InboundMessage{
			Kind:                transport.KindLocation,
			Latitude:            l.GetDegreesLatitude(),
			Longitude:           l.GetDegreesLongitude(),
			LocationDescription: description,
		}
	case m.GetContactMessage() != nil:
		ct := m.GetContactMessage()
		return transport.InboundMessage{Kind: transport.KindContact, VCard: ct.GetVcard(), ContactDisplayName: ct.GetDisplayName()}
	case m.GetExtendedTextMessage() != nil:
		return transport.InboundMessage{Kind: transport.KindText, Text: m.GetExtendedTextMessage().GetText()}
	case m.GetConversation() != "":
		return transport.InboundMessage{Kind: transport.KindText, Text: m.GetConversation()}
	}
	return transport.InboundMessage{Kind: transport.KindUnknown}
}

func downloadable(m *waE2E.Message) whatsmeow.DownloadableMessage {
	switch {
	case m.GetImageMessage() != nil:
		return m.GetImageMessage()
	case m.GetStickerMessage() != nil:
		return m.GetStickerMessage()
	case m.GetVideoMessage() != nil:
		return m.GetVideoMessage()
	case m.GetAudioMessage() != nil:
		return m.GetAudioMessage()
	case m.GetDocumentMessage() != nil:
		return m.GetDocumentMessage()
	}
	return nil
}
