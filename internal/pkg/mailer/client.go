package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/saya/booking-api/internal/pkg/httpx"
)

const serviceName = "mail api"

// Address is a mail recipient.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Guests mirrors the guest counters rendered by the templates.
type Guests struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Total    int `json:"total"`
}

// PriceLine is one night as shown in the mail.
type PriceLine struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// TemplateData is the dynamic data of the reservation templates.
// RoomDescriptionHTML is nil for the failure variant.
type TemplateData struct {
	NotificationType    string          `json:"notificationType"`
	Name                string          `json:"name"`
	Message             string          `json:"message"`
	NumberOfGuests      int             `json:"numberOfGuests"`
	CheckIn             string          `json:"checkIn"`
	CheckOut            string          `json:"checkOut"`
	Email               string          `json:"email"`
	PhoneCountry        string          `json:"phoneCountry"`
	Phone               string          `json:"phone"`
	Guests              Guests          `json:"guests"`
	Resort              json.RawMessage `json:"resort"`
	RoomDescriptionHTML *string         `json:"roomDescriptionHTML,omitempty"`
	NightsCount         int             `json:"nightsCount"`
	Prices              []PriceLine     `json:"prices"`
	VAT                 float64         `json:"vat"`
	Amount              float64         `json:"amount"`
}

// Message is the templated mail request accepted by the mail API.
type Message struct {
	EmailSubject        string       `json:"email_subject,omitempty"`
	EmailBCC            []Address    `json:"email_bcc,omitempty"`
	EmailTo             []Address    `json:"email_to"`
	TemplateID          string       `json:"template_id"`
	DynamicTemplateData TemplateData `json:"dynamic_template_data"`
}

// Client posts templated mails to the mail API. No credentials are attached.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a mail API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpx.NewClient(timeout),
	}
}

// Send posts the message to {base}/mail/send.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("%s request error: client is nil", serviceName)
	}
	if c.baseURL == "" {
		return fmt.Errorf("%s config error: base_url is empty", serviceName)
	}
	if msg == nil || len(msg.EmailTo) == 0 {
		return fmt.Errorf("%s request error: message has no recipients", serviceName)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s request error: %w", serviceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mail/send", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("%s request error: %w", serviceName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return httpx.ClassifyRequestError(ctx, serviceName, err)
	}
	defer resp.Body.Close()

	return httpx.CheckStatus(serviceName, resp)
}
