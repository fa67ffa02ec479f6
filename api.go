package paybridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// maxResponseBytes bounds how much of a response body is read when
// decoding the envelope.
const maxResponseBytes = 1 << 20

// apiEnvelope is the uniform PayBridge response shape: `result` on
// success, `error` or `errors` on failure. Field contents are kept raw so
// remote error payloads can be surfaced verbatim.
type apiEnvelope struct {
	Result json.RawMessage   `json:"result"`
	Error  json.RawMessage   `json:"error"`
	Errors []json.RawMessage `json:"errors"`
}

// call issues one authenticated POST to path and returns the raw `result`
// field. Both transport primitives of the API use POST; the bodyless
// variant passes a nil body. The X-API-Authentication header is always
// present; a bearer header is added when token is non-empty.
//
// Failures map to the three error tiers: *RemoteError for well-formed
// `error`/`errors` payloads, *TransportError (REQUEST_ISSUE) for network
// failures, non-JSON bodies, and envelopes with neither result nor error.
func (c *Client) call(ctx context.Context, path, token string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, newTransportError("failed to serialize request body", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, newTransportError("failed to create request", err)
	}

	req.Header.Set("X-API-Authentication", c.clientID+":"+c.clientSecret.Unmask())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newTransportError("failed to read response body", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		c.logger.ErrorContext(ctx, "PayBridge returned a non-JSON response",
			"path", path,
			"status_code", resp.StatusCode,
		)
		return nil, newTransportError("non-JSON response body", err)
	}

	if remote := remoteErrors(&envelope); len(remote) > 0 {
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Errors:     remote,
		}
	}

	if envelope.Result == nil {
		return nil, newTransportError("response carries neither result nor error", nil)
	}

	return envelope.Result, nil
}

// remoteErrors flattens the `error`/`errors` envelope fields into the
// list surfaced to the caller, preserving content verbatim. JSON strings
// are unquoted; any other value keeps its raw JSON text.
func remoteErrors(envelope *apiEnvelope) []string {
	raw := envelope.Errors
	if len(raw) == 0 && envelope.Error != nil {
		raw = []json.RawMessage{envelope.Error}
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(r))
	}
	return out
}

// decodeResult unmarshals a raw `result` field into v.
func decodeResult(result json.RawMessage, v any) error {
	if err := json.Unmarshal(result, v); err != nil {
		return newTransportError("failed to decode result", err)
	}
	return nil
}
