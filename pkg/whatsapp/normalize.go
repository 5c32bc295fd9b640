package whatsapp

import "strings"

// NormalizeNumber converts a stored phone number to Twilio's
// "whatsapp:+<E.164>" form. Bare local numbers get the Mexican country code.
// Unusable input normalizes to the empty string.
func NormalizeNumber(number string) string {
	n := strings.TrimSpace(number)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "whatsapp:") {
		return n
	}
	if strings.HasPrefix(n, "+") {
		return "whatsapp:" + n
	}

	var digits strings.Builder
	for _, ch := range n {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return ""
	}

	d := digits.String()
	if strings.HasPrefix(d, "52") {
		return "whatsapp:+" + d
	}
	return "whatsapp:+52" + d
}
