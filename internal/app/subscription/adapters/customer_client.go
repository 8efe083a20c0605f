package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

var (
	_ contracts.CustomerLookup    = (*HTTPCustomerClient)(nil)
	_ contracts.CustomerDirectory = (*HTTPCustomerClient)(nil)
)

// HTTPCustomerClient reads customers from the customer service over HTTP
type HTTPCustomerClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPCustomerClient creates a new HTTP customer client
func NewHTTPCustomerClient(client *http.Client, baseURL string) *HTTPCustomerClient {
	return &HTTPCustomerClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Exists reports whether the customer service knows the customer
func (c *HTTPCustomerClient) Exists(ctx context.Context, customerID string) (bool, error) {
	_, err := c.FindByID(ctx, customerID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindByID fetches a customer. A 404 maps to domain.ErrCustomerNotFound.
func (c *HTTPCustomerClient) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	endpoint := fmt.Sprintf("%s/customers/%s", c.baseURL, url.PathEscape(customerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrCustomerNotFound
	default:
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("customer lookup failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var customer domain.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if customer.ID == "" {
		customer.ID = customerID
	}
	return &customer, nil
}
