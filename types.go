package paybridge

// Token is the credential returned by the code exchange. It authorizes
// requests on behalf of the establishment that granted it.
type Token struct {
	Token           string   `json:"token"`
	Scopes          []string `json:"scopes,omitempty"`
	EstablishmentID string   `json:"establishment_id,omitempty"`
}

// Establishment is the merchant/tenant entity associated with an access
// token.
type Establishment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Country   string `json:"country,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Payment is a PayBridge payment object. Amount is the decimal string
// form used on the wire (e.g. "12.50").
type Payment struct {
	ID          string         `json:"id"`
	Status      string         `json:"status,omitempty"`
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta,omitempty"`
	ReturnURL   string         `json:"return_url,omitempty"`
	Webhook     string         `json:"webhook,omitempty"`
	PaymentURL  string         `json:"payment_url,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
}
