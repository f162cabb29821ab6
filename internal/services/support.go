package services

import (
	"fmt"
	"net/url"
)

// supportMessageTemplate is the fixed apology shown when a payment attempt
// ends in a terminal failure. The failed transaction id is embedded so the
// support agent can look it up immediately.
const supportMessageTemplate = "Hello, I tried to pay for my order but my transaction could not be verified. Transaction ID: %s. Sorry for the trouble, please help me complete my purchase."

// BuildSupportMessage builds the WhatsApp deep link that hands a failed
// payment attempt off to human support. Pure function; the same failed
// transaction id always produces an identical link.
func BuildSupportMessage(supportPhone, failedTransactionID string) string {
	msg := fmt.Sprintf(supportMessageTemplate, failedTransactionID)
	return fmt.Sprintf("https://wa.me/%s?text=%s", supportPhone, url.QueryEscape(msg))
}
