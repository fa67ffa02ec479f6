package paybridge

import (
	"context"
	"net/url"
	"strings"
)

// SplitScopes normalizes a comma-separated scopes string into a list,
// trimming whitespace and dropping empty elements. A scopes value given
// as "a,b,c" is treated identically to []string{"a", "b", "c"}.
func SplitScopes(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeScopes trims and filters the scope list. The second return is
// false when the result is not a usable non-empty list.
func normalizeScopes(scopes []string) ([]string, bool) {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// AuthorizationURLParams are the inputs for building a connect
// authorization URL.
type AuthorizationURLParams struct {
	RedirectURI string
	Scopes      []string
}

// AuthorizationURL builds the hosted authorization page URL the
// establishment is sent to during the connect flow. It is a local
// operation; no network call is made. Query parameters carry the client
// identifier, the comma-joined scopes, and the URL-encoded redirect URI.
func (c *Client) AuthorizationURL(p AuthorizationURLParams) (string, error) {
	var codes []ErrorCode
	if p.RedirectURI == "" {
		codes = append(codes, ErrCodeMissingRedirectURI)
	}
	scopes, ok := normalizeScopes(p.Scopes)
	if !ok {
		codes = append(codes, ErrCodeInvalidScopesFormat)
	}
	if err := newValidationError(codes); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("scopes", strings.Join(scopes, ","))
	params.Set("redirect_uri", p.RedirectURI)

	return c.connectURL + "?" + params.Encode(), nil
}

// ExchangeCodeParams are the inputs for the code-for-token exchange.
type ExchangeCodeParams struct {
	AuthorizationCode string
	Scopes            []string
}

type exchangeCodeRequest struct {
	AuthorizationCode string   `json:"authorization_code"`
	Scopes            []string `json:"scopes"`
}

// ExchangeCode trades an authorization code obtained from the connect
// redirect for an establishment token.
func (c *Client) ExchangeCode(ctx context.Context, p ExchangeCodeParams) (*Token, error) {
	var codes []ErrorCode
	if p.AuthorizationCode == "" {
		codes = append(codes, ErrCodeMissingAuthorizationCode)
	}
	scopes, ok := normalizeScopes(p.Scopes)
	if !ok {
		codes = append(codes, ErrCodeInvalidScopesFormat)
	}
	if err := newValidationError(codes); err != nil {
		return nil, err
	}

	result, err := c.call(ctx, pathOAuthToken, "", exchangeCodeRequest{
		AuthorizationCode: p.AuthorizationCode,
		Scopes:            scopes,
	})
	if err != nil {
		return nil, err
	}

	var token Token
	if err := decodeResult(result, &token); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "exchanged authorization code for token",
		"establishment_id", token.EstablishmentID,
	)

	return &token, nil
}

// AuthorizedEstablishment retrieves the establishment associated with the
// given token.
func (c *Client) AuthorizedEstablishment(ctx context.Context, token string) (*Establishment, error) {
	if token == "" {
		return nil, newValidationError([]ErrorCode{ErrCodeMissingToken})
	}

	result, err := c.call(ctx, pathEstablishment, token, nil)
	if err != nil {
		return nil, err
	}

	var establishment Establishment
	if err := decodeResult(result, &establishment); err != nil {
		return nil, err
	}

	return &establishment, nil
}
