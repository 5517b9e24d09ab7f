package resortapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saya/booking-api/internal/pkg/httpx"
)

const serviceName = "resort api"

// Client talks to the resort's reservation and room type services.
type Client struct {
	baseURL string
	ua      string
	http    *http.Client
}

// Payment carries the amount charged for the stay.
type Payment struct {
	Amount float64 `json:"amount"`
}

// ReservationBody is the reservation payload for a room type.
type ReservationBody struct {
	Name           string  `json:"name"`
	Message        string  `json:"message"`
	NumberOfGuests int     `json:"numberOfGuests"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Payment        Payment `json:"payment"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
}

// ReserveRequest is what gets submitted for one booking.
type ReserveRequest struct {
	RoomTypeID string          `json:"roomTypeId"`
	Body       ReservationBody `json:"body"`
}

// ReserveResponse is the reservation service answer. Raw keeps the full
// document so callers can retain whatever details the service returned.
type ReserveResponse struct {
	ReservationID int64           `json:"reservationId"`
	Raw           json.RawMessage `json:"-"`
}

// Price is a nightly rate for one calendar date.
type Price struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// PricesRequest selects the stay to price.
type PricesRequest struct {
	RoomTypeID string
	StartDate  string
	EndDate    string
}

// NewClient creates a new resort API client.
func NewClient(baseURL string, timeout time.Duration, ua string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		http:    httpx.NewClient(timeout),
	}
}

// Reserve submits a reservation and returns the id assigned by the resort.
func (c *Client) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResponse, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.RoomTypeID) == "" {
		return nil, fmt.Errorf("%s request error: room type id is empty", serviceName)
	}

	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%s request error: %w", serviceName, err)
	}

	endpoint := c.baseURL + "/room-types/" + url.PathEscape(req.RoomTypeID) + "/reservations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("%s request error: %w", serviceName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, httpx.ClassifyRequestError(ctx, serviceName, err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckStatus(serviceName, resp); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s response error: %w", serviceName, err)
	}

	var out ReserveResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s response error: %w", serviceName, err)
	}
	if out.ReservationID == 0 {
		return nil, fmt.Errorf("%s response error: missing reservationId", serviceName)
	}
	out.Raw = raw

	return &out, nil
}

// Prices returns nightly prices of a room type for [StartDate, EndDate].
func (c *Client) Prices(ctx context.Context, req PricesRequest) ([]Price, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("startDate", req.StartDate)
	q.Set("endDate", req.EndDate)
	endpoint := c.baseURL + "/room-types/" + url.PathEscape(req.RoomTypeID) + "/prices?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s request error: %w", serviceName, err)
	}
	c.setCommonHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, httpx.ClassifyRequestError(ctx, serviceName, err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckStatus(serviceName, resp); err != nil {
		return nil, err
	}

	var prices []Price
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return nil, fmt.Errorf("%s response error: %w", serviceName, err)
	}
	return prices, nil
}

func (c *Client) check() error {
	if c == nil || c.http == nil {
		return fmt.Errorf("%s request error: client is nil", serviceName)
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("%s config error: base_url is empty", serviceName)
	}
	return nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
}
