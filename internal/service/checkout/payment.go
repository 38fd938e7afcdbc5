package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/veracare/marketplace-api/internal/config"
	"github.com/veracare/marketplace-api/internal/model"
)

// PaymentClient creates hosted payment sessions with the external
// provider and returns the redirect URL.
type PaymentClient interface {
	CreateSession(ctx context.Context, order *model.Order) (string, error)
}

type paymentClient struct {
	cfg    config.PaymentConfig
	client *http.Client
}

func NewPaymentClient(cfg config.PaymentConfig) PaymentClient {
	return &paymentClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type sessionRequest struct {
	Reference   string            `json:"reference"`
	AmountCents int               `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Email       string            `json:"email,omitempty"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	LineItems   []sessionLineItem `json:"line_items"`
}

type sessionLineItem struct {
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

type sessionResponse struct {
	URL string `json:"url"`
}

func (c *paymentClient) CreateSession(ctx context.Context, order *model.Order) (string, error) {
	payload := sessionRequest{
		Reference:   order.ID.String(),
		AmountCents: order.TotalCents,
		Currency:    "usd",
		Email:       order.Email,
		SuccessURL:  c.cfg.SuccessURL,
		CancelURL:   c.cfg.CancelURL,
	}
	for _, item := range order.Items {
		payload.LineItems = append(payload.LineItems, sessionLineItem{
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SessionURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("payment provider returned empty session url")
	}
	return session.URL, nil
}
