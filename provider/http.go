package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to one upstream reservation system over its JSON API.
type HTTPClient struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(name, baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *HTTPClient) Name() string {
	return c.name
}

func (c *HTTPClient) GetReservations(ctx context.Context, propertyID, startDate, endDate string) ([]RawReservation, error) {
	var reservations []RawReservation
	query := url.Values{
		"propertyId": {propertyID},
		"startDate":  {startDate},
		"endDate":    {endDate},
	}
	if err := c.get(ctx, "/reservations", query, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *HTTPClient) GetCalendar(ctx context.Context, propertyID, startDate, endDate string) ([]RawCalendarDay, error) {
	var days []RawCalendarDay
	query := url.Values{
		"propertyId": {propertyID},
		"startDate":  {startDate},
		"endDate":    {endDate},
	}
	if err := c.get(ctx, "/calendar", query, &days); err != nil {
		return nil, err
	}
	return days, nil
}

type calendarUpdateRequest struct {
	PropertyID  string   `json:"propertyId"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Status      string   `json:"status,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	MinimumStay *int     `json:"minimumStay,omitempty"`
	Maintenance *bool    `json:"maintenance,omitempty"`
	Cleaning    *bool    `json:"cleaning,omitempty"`
}

func (c *HTTPClient) UpdateCalendar(ctx context.Context, propertyID, startDate, endDate, status string) error {
	return c.post(ctx, "/calendar/update", calendarUpdateRequest{
		PropertyID: propertyID, StartDate: startDate, EndDate: endDate, Status: status,
	}, nil)
}

func (c *HTTPClient) UpdatePricing(ctx context.Context, propertyID, startDate, endDate string, price float64) error {
	return c.post(ctx, "/calendar/update", calendarUpdateRequest{
		PropertyID: propertyID, StartDate: startDate, EndDate: endDate, Price: &price,
	}, nil)
}

func (c *HTTPClient) UpdateMinimumStay(ctx context.Context, propertyID, startDate, endDate string, minimumStay int) error {
	return c.post(ctx, "/calendar/update", calendarUpdateRequest{
		PropertyID: propertyID, StartDate: startDate, EndDate: endDate, MinimumStay: &minimumStay,
	}, nil)
}

func (c *HTTPClient) SetMaintenance(ctx context.Context, propertyID, startDate, endDate string, blocked bool) error {
	return c.post(ctx, "/calendar/update", calendarUpdateRequest{
		PropertyID: propertyID, StartDate: startDate, EndDate: endDate, Maintenance: &blocked,
	}, nil)
}

func (c *HTTPClient) SetCleaning(ctx context.Context, propertyID, startDate, endDate string, blocked bool) error {
	return c.post(ctx, "/calendar/update", calendarUpdateRequest{
		PropertyID: propertyID, StartDate: startDate, EndDate: endDate, Cleaning: &blocked,
	}, nil)
}

func (c *HTTPClient) ValidateComplianceSubmission(ctx context.Context, propertyID, reservationCode string) (*ComplianceCheck, error) {
	check := &ComplianceCheck{}
	err := c.post(ctx, "/compliance/validate", map[string]string{
		"propertyId":      propertyID,
		"reservationCode": reservationCode,
	}, check)
	if err != nil {
		return nil, err
	}
	return check, nil
}

func (c *HTTPClient) SendComplianceSubmission(ctx context.Context, propertyID, reservationCode string) (*ComplianceSendResult, error) {
	result := &ComplianceSendResult{}
	err := c.post(ctx, "/compliance/send", map[string]string{
		"propertyId":      propertyID,
		"reservationCode": reservationCode,
	}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request to %s: %w", c.name, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d for %s: %s", c.name, resp.StatusCode, req.URL.Path, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response from %s: %w", c.name, req.URL.Path, err)
	}
	return nil
}
