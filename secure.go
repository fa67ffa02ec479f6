package paybridge

import "log/slog"

// redactedPlaceholder replaces secret values in logs and serialization.
const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a sensitive value (client secret, webhook secret)
// and redacts it from fmt output, JSON encoding, and slog records.
// Use Unmask to obtain the plaintext where it is genuinely needed, such
// as building the X-API-Authentication header.
type SecretString string

// String returns the redacted placeholder. Invoked by the fmt package
// through the Stringer interface.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string, keeping
// secrets out of serialized config dumps.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// LogValue redacts the secret in structured log output.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redactedPlaceholder)
}

// Unmask returns the raw plaintext value.
func (s SecretString) Unmask() string {
	return string(s)
}
