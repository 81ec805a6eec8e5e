package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/geniusacademy/registration-service/internal/models"
)

// Client talks to the external commerce system's order API. Order creation
// is best-effort from the caller's point of view: the registration is saved
// before this runs, and any failure here is reported as a soft error.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type lineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

type billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type createOrderRequest struct {
	LineItems []lineItem        `json:"line_items"`
	Billing   billing           `json:"billing"`
	MetaData  map[string]string `json:"meta_data"`
	Note      string            `json:"customer_note"`
}

type createOrderResponse struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateOrder creates one order with a line item per selected class and a
// registration back-reference in the order metadata.
func (c *Client) CreateOrder(ctx context.Context, reg *models.Registration) (string, string, error) {
	items := make([]lineItem, len(reg.Classes))
	for i, cl := range reg.Classes {
		items[i] = lineItem{
			Name:     reg.Location + " - " + cl.Title,
			Quantity: 1,
			Total:    cl.Price,
		}
	}

	payload := createOrderRequest{
		LineItems: items,
		Billing: billing{
			FirstName: reg.ParentFirstName,
			LastName:  reg.ParentLastName,
			Email:     reg.ParentEmail,
			Phone:     reg.ParentPhone,
		},
		MetaData: map[string]string{
			"registration_id": strconv.FormatUint(uint64(reg.ID), 10),
			"student_name":    reg.StudentFirstName + " " + reg.StudentLastName,
			"year_group":      reg.YearGroup,
		},
		Note: fmt.Sprintf("Registration #%s", reg.OrderCode),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("commerce request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("commerce returned status %d", resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("decode order response: %w", err)
	}
	if out.ID == "" {
		return "", "", fmt.Errorf("commerce returned an empty order id")
	}
	return out.ID, out.CheckoutURL, nil
}
