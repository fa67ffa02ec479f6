package paybridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopSleep avoids real delays in retry tests.
func noopSleep(time.Duration) {}

// newTestClient returns a Client pointed at the given test server with
// retries disabled for deterministic behavior.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	transport := NewTransport(
		&http.Client{Timeout: 5 * time.Second},
		"test-"+t.Name(),
		RetryPolicy{
			MaxRetries: 0,
			MinWait:    1 * time.Millisecond,
			MaxWait:    10 * time.Millisecond,
		},
		"PayBridge-Go-Test/1.0",
		WithSleepFunc(noopSleep),
	)

	client, err := NewWithTransport(transport, Config{
		ClientID:     "client_test_id",
		ClientSecret: "client_test_secret",
		Mode:         ModeSandbox,
		BaseURL:      serverURL,
		ConnectURL:   "https://connect.example.test/authorize",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return client
}

// recordedRequest captures what the test server received.
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// newRecordingServer returns a server that records each request and
// responds with the given status and envelope. hits counts requests.
func newRecordingServer(t *testing.T, status int, envelope string, hits *atomic.Int64) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Header = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		rec.Body = body

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(envelope))
	}))
	t.Cleanup(server.Close)
	return server, rec
}

func TestNew_SelectsBaseURLByMode(t *testing.T) {
	sandbox, err := New(Config{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, sandboxBaseURL, sandbox.baseURL)

	production, err := New(Config{ClientID: "id", ClientSecret: "secret", Mode: ModeProduction})
	require.NoError(t, err)
	assert.Equal(t, productionBaseURL, production.baseURL)

	overridden, err := New(Config{ClientID: "id", ClientSecret: "secret", BaseURL: "https://proxy.test/"})
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.test", overridden.baseURL)
}

func TestNewWithTransport_UsesProvidedTransport(t *testing.T) {
	transport := NewTransport(
		&http.Client{Timeout: 5 * time.Second},
		"test-"+t.Name(),
		DefaultRetryPolicy(),
		"PayBridge-Go-Test/1.0",
	)

	client, err := NewWithTransport(transport, Config{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.Same(t, transport, client.transport)

	_, err = NewWithTransport(transport, Config{ClientSecret: "secret"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	_, err := New(Config{ClientSecret: "secret"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = New(Config{ClientID: "id"})
	require.ErrorAs(t, err, &cfgErr)

	_, err = New(Config{ClientID: "id", ClientSecret: "secret", Mode: Mode("staging")})
	require.ErrorAs(t, err, &cfgErr)
}

func TestClient_AuthenticationHeaders(t *testing.T) {
	var hits atomic.Int64
	server, rec := newRecordingServer(t, http.StatusOK, `{"result":{"id":"est_1","name":"Acme"}}`, &hits)
	client := newTestClient(t, server.URL)

	_, err := client.AuthorizedEstablishment(context.Background(), "tok_abc")
	require.NoError(t, err)

	assert.Equal(t, "client_test_id:client_test_secret", rec.Header.Get("X-API-Authentication"))
	assert.Equal(t, "Bearer tok_abc", rec.Header.Get("Authorization"))
	assert.Equal(t, "PayBridge-Go-Test/1.0", rec.Header.Get("User-Agent"))
	assert.NotEmpty(t, rec.Header.Get("X-Request-Id"))
}

func TestClient_RequestIDPropagatedFromContext(t *testing.T) {
	var hits atomic.Int64
	server, rec := newRecordingServer(t, http.StatusOK, `{"result":{"id":"est_1","name":"Acme"}}`, &hits)
	client := newTestClient(t, server.URL)

	ctx := WithRequestID(context.Background(), "req_fixed_42")
	_, err := client.AuthorizedEstablishment(ctx, "tok_abc")
	require.NoError(t, err)

	assert.Equal(t, "req_fixed_42", rec.Header.Get("X-Request-Id"))
}

func TestClient_RemoteErrorSingle(t *testing.T) {
	var hits atomic.Int64
	server, _ := newRecordingServer(t, http.StatusBadRequest, `{"error":"INVALID_TOKEN"}`, &hits)
	client := newTestClient(t, server.URL)

	_, err := client.AuthorizedEstablishment(context.Background(), "tok_bad")
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
	assert.Equal(t, []string{"INVALID_TOKEN"}, remoteErr.Errors)
}

func TestClient_RemoteErrorList(t *testing.T) {
	var hits atomic.Int64
	server, _ := newRecordingServer(t, http.StatusUnprocessableEntity, `{"errors":["AMOUNT_TOO_HIGH","CURRENCY_NOT_SUPPORTED"]}`, &hits)
	client := newTestClient(t, server.URL)

	_, err := client.CreatePayment(context.Background(), CreatePaymentParams{
		Token:       "tok_abc",
		Amount:      "10.00",
		Currency:    "EUR",
		Description: "order 42",
	})
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, []string{"AMOUNT_TOO_HIGH", "CURRENCY_NOT_SUPPORTED"}, remoteErr.Errors)
}

func TestClient_RemoteErrorNonStringContentKeptVerbatim(t *testing.T) {
	var hits atomic.Int64
	server, _ := newRecordingServer(t, http.StatusBadRequest, `{"error":{"code":"INVALID_TOKEN","hint":"expired"}}`, &hits)
	client := newTestClient(t, server.URL)

	_, err := client.AuthorizedEstablishment(context.Background(), "tok_bad")
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Len(t, remoteErr.Errors, 1)
	assert.JSONEq(t, `{"code":"INVALID_TOKEN","hint":"expired"}`, remoteErr.Errors[0])
}

func TestClient_TransportErrorOnConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server.URL)
	server.Close()

	_, err := client.AuthorizedEstablishment(context.Background(), "tok_abc")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ErrCodeRequestIssue, transportErr.Code)
	assert.Equal(t, []ErrorCode{ErrCodeRequestIssue}, Codes(err))
}

func TestClient_TransportErrorOnNonJSONBody(t *testing.T) {
	var hits atomic.Int64
	server, _ := newRecordingServer(t, http.StatusOK, `<html>gateway</html>`, &hits)
	client := newTestClient(t, server.URL)

	_, err := client.AuthorizedEstablishment(context.Background(), "tok_abc")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ErrCodeRequestIssue, transportErr.Code)
}

func TestClient_TransportErrorOnEnvelopeWithoutResultOrError(t *testing.T) {
	var hits atomic.Int64
	server, _ := newRecordingServer(t, http.StatusOK, `{"status":"ok"}`, &hits)
	client := newTestClient(t, server.URL)

	_, err := client.AuthorizedEstablishment(context.Background(), "tok_abc")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ErrCodeRequestIssue, transportErr.Code)
}

func TestClient_ServerErrorCollapsesToRequestIssue(t *testing.T) {
	var hits atomic.Int64
	server, _ := newRecordingServer(t, http.StatusBadGateway, `oops`, &hits)
	client := newTestClient(t, server.URL)

	_, err := client.AuthorizedEstablishment(context.Background(), "tok_abc")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ErrCodeRequestIssue, transportErr.Code)
	assert.Equal(t, int64(1), hits.Load(), "no retries by default")
}

func TestClient_MetaRoundTrip(t *testing.T) {
	var hits atomic.Int64
	envelope := `{"result":{"id":"pay_9","amount":"10.00","currency":"EUR","description":"order","meta":{"order_id":"42"}}}`
	server, rec := newRecordingServer(t, http.StatusOK, envelope, &hits)
	client := newTestClient(t, server.URL)

	payment, err := client.CreatePayment(context.Background(), CreatePaymentParams{
		Token:       "tok_abc",
		Amount:      "10.00",
		Currency:    "EUR",
		Description: "order",
		Meta:        map[string]any{"order_id": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"order_id": "42"}, payment.Meta)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(rec.Body, &sent))
	assert.Equal(t, map[string]any{"order_id": "42"}, sent["meta"])
}
