package contact

import "strings"

const chatServer = "c.us"

func digitsOnly(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func withPlus(digits string) string {
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// NormalizeForSend canonicalises a campaign destination. The country code is
// prepended, after dropping leading zeros, when the number does not already
// start with it.
func NormalizeForSend(phone, countryCode string) string {
	digits := digitsOnly(phone)
	cc := digitsOnly(countryCode)
	if cc != "" && digits != "" && !strings.HasPrefix(digits, cc) {
		digits = cc + strings.TrimLeft(digits, "0")
	}
	return withPlus(digits)
}

// FormatForStorage canonicalises a phone the way it is stored and matched in
// the database. Unlike NormalizeForSend it keeps leading zeros.
func FormatForStorage(phone, countryCode string) string {
	digits := digitsOnly(phone)
	cc := digitsOnly(countryCode)
	if cc != "" && digits != "" && !strings.HasPrefix(digits, cc) {
		digits = cc + digits
	}
	return withPlus(digits)
}

// ChatAddress is the transport address of a normalised phone.
func ChatAddress(normalized string) string {
	return digitsOnly(normalized) + "@" + chatServer
}

// PhoneVariants returns the stored forms a phone may appear under.
func PhoneVariants(phone string) []string {
	digits := digitsOnly(phone)
	if digits == "" {
		return nil
	}
	return []string{"+" + digits, digits}
}
