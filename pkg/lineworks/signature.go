package lineworks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ValidateSignature verifies the X-WORKS-Signature header of a bot
// callback. The signature is an HMAC-SHA256 of the raw body keyed with
// the bot secret, base64 encoded.
func (c *Client) ValidateSignature(body []byte, signature string) bool {
	if c.cfg.ClientSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.ClientSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
