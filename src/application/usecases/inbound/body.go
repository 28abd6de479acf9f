package inbound

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	domainMessage "go-wa-dispatch/src/domain/message"
	"go-wa-dispatch/src/domain/transport"
)

var (
	vcardFullName = regexp.MustCompile(`(?m)^FN:(.*?)\r?$`)
	vcardTel      = regexp.MustCompile(`(?m)^TEL;.*?:(.*?)\r?$`)
	vcardWaID     = regexp.MustCompile(`waid=(\d+)`)
	phoneChars    = regexp.MustCompile(`[^\d+]`)
)

// IsVCard reports whether a plain text body is a raw vCard.
func IsVCard(text string) bool {
	return strings.HasPrefix(text, "BEGIN:VCARD") && strings.Contains(text, "END:VCARD")
}

// BuildBody turns an inbound message into the stored type and body text.
func BuildBody(msg transport.InboundMessage) (string, string) {
	kind := msg.Kind
	if kind == transport.KindText && IsVCard(msg.Text) {
		kind = transport.KindContact
		msg.VCard = msg.Text
	}

	switch kind {
	case transport.KindImage:
		if msg.Caption == "" {
			return domainMessage.TypeImage, "🖼️ Image"
		}
		return domainMessage.TypeImage, join("🖼️", msg.Caption)
	case transport.KindSticker:
		return domainMessage.TypeSticker, "🏷️ Sticker"
	case transport.KindVideo:
		return domainMessage.TypeVideo, join("🎥", duration(msg.DurationSeconds), msg.Caption)
	case transport.KindAudio:
		label := "(Audio)"
		if msg.VoiceNote {
			label = "(Voice Note)"
		}
		return domainMessage.TypeAudio, join("🔊", duration(msg.DurationSeconds), label, msg.Caption)
	case transport.KindDocument:
		file := ""
		if msg.FileName != "" {
			file = "File: " + msg.FileName
		}
		return domainMessage.TypeDocument, join("📄", file, msg.Caption)
	case transport.KindLocation:
		// some clients append a base64 thumbnail to the description
		description := strings.TrimSpace(strings.SplitN(msg.LocationDescription, "/9j/", 2)[0])
		link := ""
		if msg.Latitude != 0 && msg.Longitude != 0 {
			link = fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
				strconv.FormatFloat(msg.Latitude, 'f', -1, 64),
				strconv.FormatFloat(msg.Longitude, 'f', -1, 64))
		}
		return domainMessage.TypeLocation, join("📍", description, link)
	case transport.KindContact:
		if msg.VCard == "" {
			return domainMessage.TypeContact, "👤 Contact shared"
		}
		return domainMessage.TypeContact, vcardBody(msg.VCard)
	}
	return domainMessage.TypeText, msg.Text
}

func duration(seconds uint32) string {
	if seconds == 0 {
		return ""
	}
	return fmt.Sprintf("Duration: %ds", seconds)
}

func join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func vcardBody(card string) string {
	name := ""
	if m := vcardFullName.FindStringSubmatch(card); m != nil {
		name = strings.TrimSpace(m[1])
	}
	lines := []string{"👤 " + name}

	if m := vcardTel.FindStringSubmatch(card); m != nil {
		if phone := phoneChars.ReplaceAllString(m[1], ""); phone != "" {
			lines = append(lines, "📱 "+phone)
		}
		if w := vcardWaID.FindStringSubmatch(m[0]); w != nil {
			lines = append(lines, "WhatsApp: +"+w[1])
		}
	}
	return strings.Join(lines, "\n")
}
