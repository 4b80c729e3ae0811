package checkout

import (
	"fmt"
	"net/url"
	"strings"
)

const deepLinkBase = "https://wa.me"

// DeepLink builds the fire-and-forget WhatsApp handoff URL for the rendered
// message. Percent-encoding is applied here, in one place; line breaks in
// the message become the %0A tokens the transport expects.
func DeepLink(phone string, message Message) string {
	text := url.QueryEscape(message.Render())
	// QueryEscape emits '+' for spaces; wa.me expects %20.
	text = strings.ReplaceAll(text, "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", deepLinkBase, strings.TrimSpace(phone), text)
}
