package paybridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// RetryPolicy configures the retry behavior of the Transport.
//
// The SDK performs no retries by default: every failure is terminal for
// that call and must be retried by the caller if desired. Callers that
// want automatic retries on 429/5xx can opt in through Config.Retry.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy returns the no-retry default.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 0,
		MinWait:    500 * time.Millisecond,
		MaxWait:    10 * time.Second,
	}
}

// Transport wraps an *http.Client and a circuit breaker to enforce
// consistent behavior on all outbound PayBridge calls: request
// correlation headers, User-Agent injection, breaker wrapping, and the
// opt-in retry policy.
type Transport struct {
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	retryPolicy RetryPolicy
	userAgent   string
	sleepFn     func(time.Duration) // injectable for tests
}

// TransportOption is a functional option for configuring a Transport.
type TransportOption func(*Transport)

// WithSleepFunc overrides the sleep function used between retries.
// Intended for testing to avoid real delays.
func WithSleepFunc(fn func(time.Duration)) TransportOption {
	return func(t *Transport) {
		t.sleepFn = fn
	}
}

// NewTransport creates a Transport with the given http client, breaker
// name, retry policy, and user agent.
func NewTransport(
	httpClient *http.Client,
	breakerName string,
	retryPolicy RetryPolicy,
	userAgent string,
	opts ...TransportOption,
) *Transport {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	t := &Transport{
		client:      httpClient,
		breaker:     cb,
		retryPolicy: retryPolicy,
		userAgent:   userAgent,
		sleepFn:     time.Sleep,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Do executes the HTTP request with:
//  1. X-Request-Id injection (from context, generated when absent)
//  2. User-Agent header injection
//  3. Circuit breaker wrapping
//  4. Opt-in retry on 429/5xx (respecting Retry-After headers)
//
// On success (2xx/3xx/4xx other than 429), Do returns the response as-is
// and the caller is responsible for closing the body. On network failure,
// breaker rejection, or exhausted retries, Do returns a *TransportError.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	requestID := RequestIDFrom(req.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-Id", requestID)

	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	// Snapshot the request body so it can be replayed on retries.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, newTransportError("failed to read request body", err)
		}
		req.Body.Close()
	}

	var lastResp *http.Response
	var lastErr error

	maxAttempts := 1 + t.retryPolicy.MaxRetries
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			req.ContentLength = int64(len(bodyBytes))
		}

		resp, err := t.breaker.Execute(func() (*http.Response, error) {
			r, doErr := t.client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			// 5xx and 429 count as failures for the breaker.
			if r.StatusCode >= 500 {
				return r, fmt.Errorf("upstream returned %d", r.StatusCode)
			}
			if r.StatusCode == http.StatusTooManyRequests {
				return r, fmt.Errorf("upstream returned 429")
			}
			return r, nil
		})

		if err == nil {
			return resp, nil
		}

		lastErr = err
		if resp != nil {
			if attempt < maxAttempts-1 {
				resp.Body.Close()
			} else {
				lastResp = resp
			}
		}

		// Breaker open: do not retry.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}

		// Only 429 and 5xx are retryable.
		if resp != nil && resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return resp, nil
		}

		if attempt < maxAttempts-1 {
			t.sleepFn(t.computeBackoff(attempt, resp))
		}
	}

	if lastResp != nil {
		lastResp.Body.Close()
	}

	return nil, t.mapError(lastResp, lastErr)
}

// computeBackoff determines the wait before the next retry attempt. It
// respects Retry-After when present, otherwise uses exponential backoff
// with full jitter clamped to [MinWait, MaxWait].
func (t *Transport) computeBackoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				wait := time.Duration(seconds) * time.Second
				if wait > t.retryPolicy.MaxWait {
					wait = t.retryPolicy.MaxWait
				}
				return wait
			}
			if at, err := http.ParseTime(retryAfter); err == nil {
				wait := time.Until(at)
				if wait <= 0 {
					return t.retryPolicy.MinWait
				}
				if wait > t.retryPolicy.MaxWait {
					wait = t.retryPolicy.MaxWait
				}
				return wait
			}
		}
	}

	base := float64(t.retryPolicy.MinWait) * math.Pow(2, float64(attempt))
	maxWait := float64(t.retryPolicy.MaxWait)
	if base > maxWait {
		base = maxWait
	}

	minWait := float64(t.retryPolicy.MinWait)
	if base <= minWait {
		return t.retryPolicy.MinWait
	}
	jittered := minWait + rand.Float64()*(base-minWait)
	return time.Duration(jittered)
}

// mapError collapses transport-level failures to the single REQUEST_ISSUE
// code. No detail is recoverable beyond the wrapped cause.
func (t *Transport) mapError(resp *http.Response, err error) *TransportError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return newTransportError("circuit breaker is open", err)
	}

	if resp != nil {
		return newTransportError(fmt.Sprintf("upstream returned %d", resp.StatusCode), err)
	}

	return newTransportError("request failed", err)
}
