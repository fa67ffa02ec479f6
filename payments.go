package paybridge

import (
	"context"
	"math"
	"net/url"
	"strconv"
)

// minimumAmount is the smallest payment amount the service accepts.
const minimumAmount = 0.5

// CreatePaymentParams are the inputs for creating a payment. Amount is
// the decimal string form used on the wire and must parse as a number
// >= 0.5. Meta, ReturnURL and Webhook are optional pass-through fields.
type CreatePaymentParams struct {
	Token       string
	Amount      string
	Currency    string
	Description string
	Meta        map[string]any
	ReturnURL   string
	Webhook     string
}

type createPaymentRequest struct {
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta,omitempty"`
	ReturnURL   string         `json:"return_url,omitempty"`
	Webhook     string         `json:"webhook,omitempty"`
}

// validate collects every failed check, in check order.
func (p CreatePaymentParams) validate() error {
	var codes []ErrorCode
	if p.Token == "" {
		codes = append(codes, ErrCodeMissingToken)
	}
	if p.Amount == "" {
		codes = append(codes, ErrCodeMissingAmount)
	} else if amount, err := strconv.ParseFloat(p.Amount, 64); err != nil || math.IsNaN(amount) || amount < minimumAmount {
		codes = append(codes, ErrCodeMinimumAmountIssue)
	}
	if p.Currency == "" {
		codes = append(codes, ErrCodeMissingCurrency)
	}
	if p.Description == "" {
		codes = append(codes, ErrCodeMissingDescription)
	}
	return newValidationError(codes)
}

// CreatePayment creates a payment on behalf of the establishment holding
// the token. ReturnURL, when set, is included in the outgoing body.
func (c *Client) CreatePayment(ctx context.Context, p CreatePaymentParams) (*Payment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	result, err := c.call(ctx, pathPayment, p.Token, createPaymentRequest{
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: p.Description,
		Meta:        p.Meta,
		ReturnURL:   p.ReturnURL,
		Webhook:     p.Webhook,
	})
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := decodeResult(result, &payment); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "payment created",
		"payment_id", payment.ID,
		"amount", payment.Amount,
		"currency", payment.Currency,
	)

	return &payment, nil
}

// GetPayment retrieves a payment by ID on behalf of the establishment
// holding the token.
func (c *Client) GetPayment(ctx context.Context, token, paymentID string) (*Payment, error) {
	var codes []ErrorCode
	if token == "" {
		codes = append(codes, ErrCodeMissingToken)
	}
	if paymentID == "" {
		codes = append(codes, ErrCodeMissingPaymentID)
	}
	if err := newValidationError(codes); err != nil {
		return nil, err
	}

	result, err := c.call(ctx, pathPayment+"/"+url.PathEscape(paymentID), token, nil)
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := decodeResult(result, &payment); err != nil {
		return nil, err
	}

	return &payment, nil
}
