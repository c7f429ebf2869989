package listingservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с ListingService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ListingService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetListing получает объявление по ID
func (c *Client) GetListing(ctx context.Context, listingID int64) (*Listing, error) {
	url := fmt.Sprintf("%s/internal/listings/%d", c.baseURL, listingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrListingNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if listing.ID == 0 {
		listing.ID = listingID
	}

	return &listing, nil
}

// GetPolicy получает объявление и приводит его к политике бронирования
func (c *Client) GetPolicy(ctx context.Context, listingID int64) (*domain.ListingPolicy, error) {
	listing, err := c.GetListing(ctx, listingID)
	if err != nil {
		if err == ErrListingNotFound {
			c.log.Warn("Listing id=%d not found", listingID)
		} else {
			c.log.Error("Failed to fetch listing id=%d: %v", listingID, err)
		}
		return nil, err
	}

	policy := listing.Policy()
	c.log.Info("Fetched listing id=%d owner=%d approval=%s tiered=%t",
		listingID, policy.OwnerID, policy.ApprovalMode, policy.TieredPricing != nil)
	return policy, nil
}
