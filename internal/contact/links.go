// Package contact builds the links a collection point can be reached through.
package contact

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	InterestMessage = "Tenho interesse na coleta de resíduos."
	InterestSubject = "Interesse na coleta de resíduos."
)

// WhatsAppURL returns a whatsapp:// send link for phone carrying the interest
// message, or "" when phone has no digits.
func WhatsAppURL(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}

	q := url.Values{}
	q.Set("phone", digits)
	q.Set("text", InterestMessage)
	return "whatsapp://send?" + q.Encode()
}

// MailtoURL returns a mailto link for email with the interest subject, or ""
// when email is not an address.
func MailtoURL(email string) string {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return ""
	}

	u := url.URL{
		Scheme:   "mailto",
		Opaque:   email,
		RawQuery: "subject=" + url.PathEscape(InterestSubject),
	}
	return u.String()
}
