package whatsapp_client

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	domainErrors "go-wa-dispatch/src/domain/errors"
	"go-wa-dispatch/src/domain/transport"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

type fakeWA struct {
	connected   bool
	onWhatsApp  bool
	lookupErr   error
	sendErr     error
	downloadErr error
	sentTo      []types.JID
	sentText    []string
	disconnects int
}

func (f *fakeWA) Connect() error    { f.connected = true; return nil }
func (f *fakeWA) Disconnect()       { f.disconnects++ }
func (f *fakeWA) IsConnected() bool { return f.connected }
func (f *fakeWA) GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error) {
	return make(chan whatsmeow.QRChannelItem), nil
}

func (f *fakeWA) IsOnWhatsApp(ctx context.Context, phones []string) ([]types.IsOnWhatsAppResponse, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	jid := types.NewJID(phones[0][1:], types.DefaultUserServer)
	return []types.IsOnWhatsAppResponse{{Query: phones[0], JID: jid, IsIn: f.onWhatsApp}}, nil
}

func (f *fakeWA) SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error) {
	if f.sendErr != nil {
		return whatsmeow.SendResponse{}, f.sendErr
	}
	f.sentTo = append(f.sentTo, to)
	f.sentText = append(f.sentText, message.GetConversation())
	return whatsmeow.SendResponse{ID: "3EB0"}, nil
}

func (f *fakeWA) Download(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return []byte("media"), nil
}

type recordingListener struct {
	ready        int
	qr           []string
	inbound      []transport.InboundMessage
	authFailures []string
	disconnects  []string
}

func (r *recordingListener) OnReady()                               { r.ready++ }
func (r *recordingListener) OnQR(code string)                       { r.qr = append(r.qr, code) }
func (r *recordingListener) OnInbound(msg transport.InboundMessage) { r.inbound = append(r.inbound, msg) }
func (r *recordingListener) OnAuthFailure(reason string)            { r.authFailures = append(r.authFailures, reason) }
func (r *recordingListener) OnDisconnected(reason string)           { r.disconnects = append(r.disconnects, reason) }

func newTestClient(wa *fakeWA) (*Client, *recordingListener) {
	listener := &recordingListener{}
	c := &Client{wa: wa, Logger: logger.NewNopLogger(), qr: newQRState("")}
	c.SetListener(listener)
	return c, listener
}

func TestAddressToPhone(t *testing.T) {
	tests := []struct {
		address string
		want    string
		wantErr bool
	}{
		{"56911112222@c.us", "56911112222", false},
		{"@c.us", "", true},
		{"56911112222", "", true},
		{"5691a112222@c.us", "", true},
		{"56911112222@s.whatsapp.net", "", true},
	}
	for _, tt := range tests {
		got, err := addressToPhone(tt.address)
		if tt.wantErr {
			assert.Error(t, err, tt.address)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestClassifySendError(t *testing.T) {
	assert.Nil(t, classifySendError(nil))
	assert.Equal(t, domainErrors.Transient, domainErrors.Classify(classifySendError(whatsmeow.ErrNotConnected)))
	assert.Equal(t, domainErrors.Transient, domainErrors.Classify(classifySendError(context.DeadlineExceeded)))
	assert.Equal(t, domainErrors.Transient, domainErrors.Classify(classifySendError(errors.New("socket closed"))))
	assert.Equal(t, domainErrors.Permanent, domainErrors.Classify(classifySendError(whatsmeow.ErrRecipientADJID)))
}

func TestSend(t *testing.T) {
	wa := &fakeWA{connected: true, onWhatsApp: true}
	c, _ := newTestClient(wa)

	err := c.Send(context.Background(), "56911112222@c.us", "hola")

	assert.NoError(t, err)
	assert.Equal(t, []string{"hola"}, wa.sentText)
	assert.Equal(t, "56911112222", wa.sentTo[0].User)
}

func TestSend_Failures(t *testing.T) {
	tests := []struct {
		name    string
		wa      *fakeWA
		address string
		want    domainErrors.Class
	}{
		{"invalid address", &fakeWA{connected: true, onWhatsApp: true}, "bad", domainErrors.Permanent},
		{"not connected", &fakeWA{onWhatsApp: true}, "56911112222@c.us", domainErrors.Transient},
		{"not on whatsapp", &fakeWA{connected: true}, "56911112222@c.us", domainErrors.Permanent},
		{"lookup timeout", &fakeWA{connected: true, lookupErr: whatsmeow.ErrIQTimedOut}, "56911112222@c.us", domainErrors.Transient},
		{"send rejected", &fakeWA{connected: true, onWhatsApp: true, sendErr: whatsmeow.ErrUnknownServer}, "56911112222@c.us", domainErrors.Permanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(tt.wa)
			err := c.Send(context.Background(), tt.address, "hola")
			assert.Error(t, err)
			assert.Equal(t, tt.want, domainErrors.Classify(err))
			assert.Empty(t, tt.wa.sentText)
		})
	}
}

func userMessage(msg *waE2E.Message) *events.Message {
	evt := &events.Message{Message: msg}
	evt.Info.ID = "ABC"
	evt.Info.Chat = types.NewJID("56911112222", types.DefaultUserServer)
	evt.Info.Sender = types.NewJID("56911112222", types.DefaultUserServer)
	return evt
}

func TestHandleEvent_Lifecycle(t *testing.T) {
	c, listener := newTestClient(&fakeWA{})

	c.handleEvent(&events.Connected{})
	c.handleEvent(&events.LoggedOut{})
	c.handleEvent(&events.ClientOutdated{})
	c.handleEvent(&events.StreamReplaced{})
	c.handleEvent(&events.Disconnected{})

	assert.Equal(t, 1, listener.ready)
	assert.Len(t, listener.authFailures, 2)
	assert.Len(t, listener.disconnects, 2)
}

func TestHandleEvent_DisconnectAfterCloseIsQuiet(t *testing.T) {
	wa := &fakeWA{}
	c, listener := newTestClient(wa)

	c.Disconnect()
	c.Disconnect()
	c.handleEvent(&events.Disconnected{})

	assert.Equal(t, 1, wa.disconnects)
	assert.Empty(t, listener.disconnects)
}

func TestHandleEvent_InboundText(t *testing.T) {
	c, listener := newTestClient(&fakeWA{})

	c.handleEvent(userMessage(&waE2E.Message{Conversation: proto.String("hola")}))

	if assert.Len(t, listener.inbound, 1) {
		msg := listener.inbound[0]
		assert.Equal(t, "ABC", msg.ID)
		assert.Equal(t, "56911112222", msg.From)
		assert.Equal(t, transport.KindText, msg.Kind)
		assert.Equal(t, "hola", msg.Text)
	}
}

func TestHandleEvent_FiltersOwnAndGroupMessages(t *testing.T) {
	c, listener := newTestClient(&fakeWA{})

	own := userMessage(&waE2E.Message{Conversation: proto.String("me")})
	own.Info.IsFromMe = true
	group := userMessage(&waE2E.Message{Conversation: proto.String("all")})
	group.Info.Chat = types.NewJID("120363000000000000", types.GroupServer)

	c.handleEvent(own)
	c.handleEvent(group)

	assert.Empty(t, listener.inbound)
}

func TestHandleEvent_MediaDownload(t *testing.T) {
	c, listener := newTestClient(&fakeWA{})
	c.handleEvent(userMessage(&waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("look")}}))

	failing, failingListener := newTestClient(&fakeWA{downloadErr: errors.New("expired")})
	failing.handleEvent(userMessage(&waE2E.Message{AudioMessage: &waE2E.AudioMessage{Seconds: proto.Uint32(4), PTT: proto.Bool(true)}}))

	if assert.Len(t, listener.inbound, 1) {
		assert.Equal(t, transport.KindImage, listener.inbound[0].Kind)
		assert.Equal(t, "look", listener.inbound[0].Caption)
		assert.Equal(t, []byte("media"), listener.inbound[0].Media)
	}
	if assert.Len(t, failingListener.inbound, 1) {
		msg := failingListener.inbound[0]
		assert.Equal(t, transport.KindAudio, msg.Kind)
		assert.True(t, msg.VoiceNote)
		assert.Equal(t, uint32(4), msg.DurationSeconds)
		assert.Nil(t, msg.Media)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		msg  *waE2E.Message
		want transport.InboundMessage
	}{
		{"extended text", &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("link")}}, transport.InboundMessage{Kind: transport.KindText, Text: "link"}},
		{"sticker", &waE2E.Message{StickerMessage: &waE2E.StickerMessage{}}, transport.InboundMessage{Kind: transport.KindSticker}},
		{"video", &waE2E.Message{VideoMessage: &waE2E.VideoMessage{Seconds: proto.Uint32(9), Caption: proto.String("clip")}}, transport.InboundMessage{Kind: transport.KindVideo, DurationSeconds: 9, Caption: "clip"}},
		{"document", &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{FileName: proto.String("a.pdf")}}, transport.InboundMessage{Kind: transport.KindDocument, FileName: "a.pdf"}},
		{"location uses address without name", &waE2E.Message{LocationMessage: &waE2E.LocationMessage{DegreesLatitude: proto.Float64(1.5), DegreesLongitude: proto.Float64(-2), Address: proto.String("Main St")}}, transport.InboundMessage{Kind: transport.KindLocation, Latitude: 1.5, Longitude: -2, LocationDescription: "Main St"}},
		{"contact", &waE2E.Message{ContactMessage: &waE2E.ContactMessage{DisplayName: proto.String("Ana"), Vcard: proto.String("BEGIN:VCARD")}}, transport.InboundMessage{Kind: transport.KindContact, ContactDisplayName: "Ana", VCard: "BEGIN:VCARD"}},
		{"empty", &waE2E.Message{}, transport.InboundMessage{Kind: transport.KindUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.msg))
		})
	}
}

func TestQRState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")
	q := newQRState(path)

	_, ok := q.latest()
	assert.False(t, ok)

	assert.NoError(t, q.update("2@abc,def,ghi"))
	png, ok := q.latest()
	assert.True(t, ok)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
	assert.FileExists(t, path)

	q.clear()
	_, ok = q.latest()
	assert.False(t, ok)
	assert.NoFileExists(t, path)
}

func TestOnQR_NotifiesListener(t *testing.T) {
	c, listener := newTestClient(&fakeWA{})

	c.onQR("2@code")

	assert.Equal(t, []string{"2@code"}, listener.qr)
	_, ok := c.LatestQR()
	assert.True(t, ok)
}
