package whatsapp_client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "go-wa-dispatch/src/domain/errors"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"
)

// chatServer is the address suffix used by the campaign layer.
const chatServer = "@c.us"

// addressToPhone extracts the digits of a "<digits>@c.us" address.
func addressToPhone(address string) (string, error) {
	digits, ok := strings.CutSuffix(address, chatServer)
	if !ok || digits == "" {
		return "", fmt.Errorf("invalid chat address %q", address)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid chat address %q", address)
		}
	}
	return digits, nil
}

// phoneFromJID returns the sender's number without a leading '+'.
func phoneFromJID(jid types.JID) string {
	return jid.User
}

// classifySendError tags whatsmeow failures with a delivery class.
// Connectivity problems and timeouts are worth retrying, everything the
// server rejects outright is not.
func classifySendError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, whatsmeow.ErrNotConnected),
		errors.Is(err, whatsmeow.ErrNotLoggedIn),
		errors.Is(err, whatsmeow.ErrIQTimedOut),
		errors.Is(err, context.DeadlineExceeded):
		return domainErrors.NewTransient(err)
	case errors.Is(err, whatsmeow.ErrBroadcastListUnsupported),
		errors.Is(err, whatsmeow.ErrUnknownServer),
		errors.Is(err, whatsmeow.ErrRecipientADJID):
		return domainErrors.NewPermanent(err)
	}
	return domainErrors.NewTransient(err)
}
