package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/spf13/viper"
)

const defaultTimeout = 15 * time.Second

// Client posts recurring-order creation requests to the external fulfillment
// endpoint. The endpoint is expected to dedupe by order identity; renewal is
// at-least-once on our side.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// option is a function that configures the Client.
type option func(*Client)

// NewClient creates a new fulfillment client from config.
func NewClient(opts ...option) *Client {
	c := &Client{
		endpoint:   viper.GetString("fulfillment.create_order_url"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithEndpoint overrides the create-order endpoint.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEndpoint(endpoint string) option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client, including its timeout.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

type createOrderRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	StreetAddress  string `json:"streetAddress"`
	StreetAddress2 string `json:"streetAddress2"`
	PostCode       string `json:"postCode"`
	Email          string `json:"email"`
	ProductID      string `json:"productId"`
	Subscription   string `json:"subscription"`
}

type createOrderResponse struct {
	Success bool `json:"success"`
}

// CreateRecurringOrder submits the order's current shipping and contact data
// to the external endpoint. Success requires both HTTP 200 and a confirming
// body; anything else is an error so the caller leaves the order due.
func (c *Client) CreateRecurringOrder(ctx context.Context, o order.Order) error {
	line2 := ""
	if o.StreetAddress2 != nil {
		line2 = *o.StreetAddress2
	}

	payload, err := json.Marshal(createOrderRequest{
		FirstName:      o.FirstName,
		LastName:       o.LastName,
		StreetAddress:  o.StreetAddress,
		StreetAddress2: line2,
		PostCode:       o.PostCode,
		Email:          o.Email,
		ProductID:      o.ProductID,
		Subscription:   order.SubscriptionMonthly.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal create-order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build create-order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create-order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create-order returned status %d", resp.StatusCode)
	}

	var body createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode create-order response: %w", err)
	}
	if !body.Success {
		return errors.New("create-order not confirmed by fulfillment")
	}

	return nil
}
