package pipeline

import (
	"net/url"
	"strings"
	"unicode"

	"marketplace-service/internal/core/domain"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const propertyPathPrefix = "/propiedad/"

// GenerateSlug строит SEO-slug из заголовка: "Villa Moderna en Los Cabos" -> "villa-moderna-en-los-cabos".
// Диакритика снимается через NFD-разложение (á -> a, ñ -> n).
func GenerateSlug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(title)))
	if err != nil {
		plain = strings.ToLower(strings.TrimSpace(title))
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range plain {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingDash = true
		}
		// прочие символы просто выбрасываются
	}
	return b.String()
}

// PropertyURLPath - канонический путь карточки. ID экранируется, но не меняется.
func PropertyURLPath(id domain.ListingID, slug string) string {
	path := propertyPathPrefix + url.PathEscape(string(id))
	if slug == "" {
		return path
	}
	return path + "/" + slug
}

// whatsAppURL собирает ссылку wa.me с предзаполненным сообщением.
func (n *ListingNormalizer) whatsAppURL(contact *domain.Contact, title string) string {
	phone := contact.WhatsApp
	if phone == "" {
		phone = contact.Phone
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" || n.whatsAppBaseURL == "" {
		return ""
	}

	text := n.whatsAppMessage
	if title != "" {
		text = strings.TrimSpace(text + " " + title)
	}
	return n.whatsAppBaseURL + digits + "?" + url.Values{"text": {text}}.Encode()
}
