package paybridge

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// WebhookSignatureHeader is the request header carrying the webhook
// signature.
const WebhookSignatureHeader = "X-PayBridge-Signature"

// canonicalContent reduces webhook content to its exact signing form.
// Strings and raw bytes are used verbatim; anything else is serialized
// with compact JSON, matching the serialization the sender used.
func canonicalContent(content any) (string, error) {
	switch v := content.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	default:
		b, err := json.Marshal(content)
		if err != nil {
			return "", fmt.Errorf("content is not JSON-serializable: %w", err)
		}
		return string(b), nil
	}
}

// SignWebhook computes the signature for webhook content under the shared
// webhook secret.
//
// The scheme is fixed by the PayBridge wire contract: a single SHA-512
// pass over "secret:content" encoded as standard base64 with padding.
// It is deliberately NOT HMAC-SHA512; substituting a standard keyed MAC
// would break interoperability with the service's signatures.
func SignWebhook(content any, secret string) (string, error) {
	canonical, err := canonicalContent(content)
	if err != nil {
		return "", fmt.Errorf("paybridge: sign webhook: %w", err)
	}
	sum := sha512.Sum512([]byte(secret + ":" + canonical))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// VerifyWebhook reports whether the received signature header matches the
// received content under the shared webhook secret. Verification must
// happen before trusting the content. The comparison is constant-time.
//
// It is a pure function of its inputs and returns false for content that
// cannot be canonicalized.
func VerifyWebhook(header string, content any, secret string) bool {
	expected, err := SignWebhook(content, secret)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(header), []byte(expected))
}
