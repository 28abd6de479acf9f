package inbound

import (
	"errors"
	"testing"

	domainContact "go-wa-dispatch/src/domain/contact"
	domainMessage "go-wa-dispatch/src/domain/message"
	domainSettings "go-wa-dispatch/src/domain/settings"
	"go-wa-dispatch/src/domain/transport"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

func TestBuildBody(t *testing.T) {
	tests := []struct {
		name     string
		msg      transport.InboundMessage
		wantType string
		wantBody string
	}{
		{"text", transport.InboundMessage{Kind: transport.KindText, Text: "hola"}, "text", "hola"},
		{"image with caption", transport.InboundMessage{Kind: transport.KindImage, Caption: "look"}, "image", "🖼️ look"},
		{"image without caption", transport.InboundMessage{Kind: transport.KindImage}, "image", "🖼️ Image"},
		{"sticker", transport.InboundMessage{Kind: transport.KindSticker}, "sticker", "🏷️ Sticker"},
		{"video", transport.InboundMessage{Kind: transport.KindVideo, DurationSeconds: 12, Caption: "clip"}, "video", "🎥 Duration: 12s clip"},
		{"video unknown duration", transport.InboundMessage{Kind: transport.KindVideo}, "video", "🎥"},
		{"voice note", transport.InboundMessage{Kind: transport.KindAudio, DurationSeconds: 4, VoiceNote: true}, "audio", "🔊 Duration: 4s (Voice Note)"},
		{"audio", transport.InboundMessage{Kind: transport.KindAudio}, "audio", "🔊 (Audio)"},
		{"document", transport.InboundMessage{Kind: transport.KindDocument, FileName: "a.pdf", Caption: "invoice"}, "document", "📄 File: a.pdf invoice"},
		{"location", transport.InboundMessage{Kind: transport.KindLocation, Latitude: -33.45, Longitude: -70.66, LocationDescription: "Office /9j/4AAQSk"}, "location", "📍 Office https://www.google.com/maps?q=-33.45,-70.66"},
		{"location without coordinates", transport.InboundMessage{Kind: transport.KindLocation}, "location", "📍"},
		{"contact without vcard", transport.InboundMessage{Kind: transport.KindContact}, "contact", "👤 Contact shared"},
		{"unknown kind falls back to text", transport.InboundMessage{Kind: transport.KindUnknown, Text: "?"}, "text", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotBody := BuildBody(tt.msg)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantBody, gotBody)
		})
	}
}

const sampleVCard = "BEGIN:VCARD\r\nVERSION:3.0\r\nN:Perez;Ana;;;\r\nFN:Ana Perez\r\nTEL;type=CELL;type=VOICE;waid=56911112222:+56 9 1111 2222\r\nEND:VCARD"

func TestBuildBody_VCard(t *testing.T) {
	msgType, body := BuildBody(transport.InboundMessage{Kind: transport.KindContact, VCard: sampleVCard})
	assert.Equal(t, "contact", msgType)
	assert.Equal(t, "👤 Ana Perez\n📱 +56911112222\nWhatsApp: +56911112222", body)

	// a raw vCard pasted as text is treated as a contact
	msgType, body = BuildBody(transport.InboundMessage{Kind: transport.KindText, Text: sampleVCard})
	assert.Equal(t, "contact", msgType)
	assert.Contains(t, body, "👤 Ana Perez")
}

type settingsStub struct {
	cfg        *domainSettings.RuntimeConfiguration
	cfgErr     error
	logUnknown bool
	logErr     error
}

func (s *settingsStub) LoadConfiguration() (*domainSettings.RuntimeConfiguration, error) {
	return s.cfg, s.cfgErr
}
func (s *settingsStub) CampaignRequested() (bool, error)                { return false, nil }
func (s *settingsStub) StopRequested() (bool, error)                    { return false, nil }
func (s *settingsStub) RequestCampaign() error                          { return nil }
func (s *settingsStub) RequestStop() error                              { return nil }
func (s *settingsStub) ClearCampaign() error                            { return nil }
func (s *settingsStub) ClearFlags() error                               { return nil }
func (s *settingsStub) LogUnknownSenders() (bool, error)                { return s.logUnknown, s.logErr }
func (s *settingsStub) Snapshot() (map[string]string, error)            { return nil, nil }
func (s *settingsStub) Update(values map[string]interface{}) error      { return nil }
func (s *settingsStub) Seed(values map[string]interface{}) (int, error) { return 0, nil }

type contactsStub struct {
	byPhone map[string]*domainContact.Contact
	err     error
	lookups []string
}

func (c *contactsStub) FindEligible() (*[]domainContact.Contact, error) { return nil, nil }
func (c *contactsStub) MarkContacted(id int) (bool, error)              { return true, nil }
func (c *contactsStub) GetByID(id int) (*domainContact.Contact, error)  { return nil, nil }
func (c *contactsStub) FindByPhone(phone string) (*domainContact.Contact, error) {
	c.lookups = append(c.lookups, phone)
	if c.err != nil {
		return nil, c.err
	}
	return c.byPhone[phone], nil
}

type logStub struct {
	entries []domainMessage.LogEntry
	err     error
}

func (l *logStub) Append(entry *domainMessage.LogEntry) (int, error) {
	l.entries = append(l.entries, *entry)
	return len(l.entries), l.err
}
func (l *logStub) ListRecent(limit int) (*[]domainMessage.LogEntry, error) { return nil, nil }
func (l *logStub) Delete(id int) error                                     { return nil }

type mediaStub struct {
	saved map[string][]byte
	err   error
}

func (m *mediaStub) Save(messageID string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved[messageID] = data
	return "/media/" + messageID, nil
}

func newInbound(settings *settingsStub, contacts *contactsStub, log *logStub, media IMediaStore) IInboundUseCase {
	return NewInboundUseCase(settings, contacts, log, media, logger.NewNopLogger())
}

func TestHandle_KnownContact(t *testing.T) {
	id := 5
	settings := &settingsStub{cfg: &domainSettings.RuntimeConfiguration{CountryCode: "56"}}
	contacts := &contactsStub{byPhone: map[string]*domainContact.Contact{"+56911112222": {ID: &id, Nickname: "Ana"}}}
	log := &logStub{}

	err := newInbound(settings, contacts, log, nil).Handle(transport.InboundMessage{ID: "m1", From: "56911112222", Kind: transport.KindText, Text: "hola"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"+56911112222"}, contacts.lookups)
	if assert.Len(t, log.entries, 1) {
		entry := log.entries[0]
		assert.Equal(t, &id, entry.ContactID)
		assert.Equal(t, domainMessage.Inbound, entry.Direction)
		assert.Equal(t, domainMessage.StatusReceived, entry.Status)
		assert.Equal(t, "text", entry.MessageType)
		assert.Equal(t, "hola", entry.MessageBody)
	}
}

func TestHandle_CountryCodeKeepsLeadingZeros(t *testing.T) {
	settings := &settingsStub{cfg: &domainSettings.RuntimeConfiguration{CountryCode: "56"}, logUnknown: true}
	contacts := &contactsStub{}

	err := newInbound(settings, contacts, &logStub{}, nil).Handle(transport.InboundMessage{From: "0911112222", Kind: transport.KindText})

	assert.NoError(t, err)
	assert.Equal(t, []string{"+560911112222"}, contacts.lookups)
}

func TestHandle_UnknownSender(t *testing.T) {
	tests := []struct {
		name       string
		logUnknown bool
		logErr     error
		wantLogged bool
	}{
		{"logged when enabled", true, nil, true},
		{"ignored when disabled", false, nil, false},
		{"logged when setting unreadable", false, errors.New("db down"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &settingsStub{cfg: &domainSettings.RuntimeConfiguration{}, logUnknown: tt.logUnknown, logErr: tt.logErr}
			log := &logStub{}

			err := newInbound(settings, &contactsStub{}, log, nil).Handle(transport.InboundMessage{From: "+56911112222", Kind: transport.KindSticker})

			assert.NoError(t, err)
			if tt.wantLogged {
				if assert.Len(t, log.entries, 1) {
					assert.Nil(t, log.entries[0].ContactID)
					assert.Equal(t, "sticker", log.entries[0].MessageType)
				}
			} else {
				assert.Empty(t, log.entries)
			}
		})
	}
}

func TestHandle_LookupErrorTreatsSenderAsUnknown(t *testing.T) {
	tests := []struct {
		name       string
		logUnknown bool
		wantLogged bool
	}{
		{"logged when unknown senders are kept", true, true},
		{"dropped when unknown senders are ignored", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &logStub{}
			contacts := &contactsStub{err: errors.New("db down")}
			settings := &settingsStub{cfg: &domainSettings.RuntimeConfiguration{}, logUnknown: tt.logUnknown}

			err := newInbound(settings, contacts, log, nil).
				Handle(transport.InboundMessage{From: "+56911112222", Kind: transport.KindText, Text: "hi"})

			assert.NoError(t, err)
			if tt.wantLogged {
				if assert.Len(t, log.entries, 1) {
					assert.Nil(t, log.entries[0].ContactID)
					assert.Equal(t, "+56911112222", log.entries[0].Phone)
					assert.Equal(t, "hi", log.entries[0].MessageBody)
				}
			} else {
				assert.Empty(t, log.entries)
			}
		})
	}
}

func TestHandle_MediaFailureDoesNotBlockLogging(t *testing.T) {
	settings := &settingsStub{cfg: &domainSettings.RuntimeConfiguration{}, logUnknown: true}
	log := &logStub{}
	media := &mediaStub{saved: map[string][]byte{}, err: errors.New("disk full")}

	err := newInbound(settings, &contactsStub{}, log, media).
		Handle(transport.InboundMessage{ID: "m2", From: "+56911112222", Kind: transport.KindImage, Media: []byte{0xff, 0xd8}})

	assert.NoError(t, err)
	assert.Len(t, log.entries, 1)
}

func TestHandle_StoresMedia(t *testing.T) {
	settings := &settingsStub{cfg: &domainSettings.RuntimeConfiguration{}, logUnknown: true}
	media := &mediaStub{saved: map[string][]byte{}}

	err := newInbound(settings, &contactsStub{}, &logStub{}, media).
		Handle(transport.InboundMessage{ID: "m3", From: "+56911112222", Kind: transport.KindImage, Media: []byte{1, 2}})

	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, media.saved["m3"])
}

func TestHandle_SettingsErrorStillLogs(t *testing.T) {
	settings := &settingsStub{cfgErr: errors.New("db down"), logUnknown: true}
	log := &logStub{}

	err := newInbound(settings, &contactsStub{}, log, nil).Handle(transport.InboundMessage{From: "56911112222", Kind: transport.KindText, Text: "x"})

	assert.NoError(t, err)
	if assert.Len(t, log.entries, 1) {
		assert.Equal(t, "+56911112222", log.entries[0].Phone)
	}
}
