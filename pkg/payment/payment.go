// Package payment verifies card payments with the payment gateway.
package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var (
	ErrNotSuccessful  = errors.New("payment was not successful")
	ErrAmountMismatch = errors.New("payment amount does not match")
)

// Verifier confirms that reference paid exactly amount.
type Verifier interface {
	Verify(reference string, amount decimal.Decimal) (*Verification, error)
}

type Verification struct {
	Reference string
	Amount    decimal.Decimal
	Gateway   string
}

// Client talks to a Paystack style API: GET {base}/transaction/verify/{ref}
// with amounts in minor units.
type Client struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SecretKey: secretKey,
		Timeout:   15 * time.Second,
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Channel   string `json:"channel"`
	} `json:"data"`
}

func (c *Client) Verify(reference string, amount decimal.Decimal) (*Verification, error) {
	agent := fiber.Get(c.BaseURL + "/transaction/verify/" + url.PathEscape(reference))
	agent.Set("Authorization", "Bearer "+c.SecretKey)
	agent.Timeout(c.Timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("payment gateway unreachable: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("%w: gateway answered %d", ErrNotSuccessful, code)
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid gateway response: %w", err)
	}
	if !resp.Status || resp.Data.Status != "success" {
		return nil, ErrNotSuccessful
	}

	paid := decimal.New(resp.Data.Amount, -2)
	if !paid.Equal(amount.Round(2)) {
		return nil, fmt.Errorf("%w: paid %s, expected %s", ErrAmountMismatch, paid.StringFixed(2), amount.StringFixed(2))
	}

	return &Verification{Reference: resp.Data.Reference, Amount: paid, Gateway: "paystack"}, nil
}
