package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fitstudio/pkg/model"
)

// StudioClient talks to the studio HTTP API.
type StudioClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewStudioClient(baseURL string) *StudioClient {
	return &StudioClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a non-2xx response decoded from the error body.
type APIError struct {
	StatusCode int
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

type ListResult[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func (c *StudioClient) CreateClass(ctx context.Context, class *model.FitnessClass) (*model.FitnessClass, error) {
	var out model.FitnessClass
	if err := c.do(ctx, http.MethodPost, "/api/v1/classes", class, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *StudioClient) GetClass(ctx context.Context, id string) (*model.FitnessClass, error) {
	var out model.FitnessClass
	if err := c.do(ctx, http.MethodGet, "/api/v1/classes/id/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *StudioClient) ListUpcoming(ctx context.Context, classType, instructor string) ([]model.FitnessClass, error) {
	query := url.Values{}
	if classType != "" {
		query.Set("class_type", classType)
	}
	if instructor != "" {
		query.Set("instructor", instructor)
	}

	var out ListResult[model.FitnessClass]
	if err := c.do(ctx, http.MethodGet, withQuery("/api/v1/classes", query), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *StudioClient) Book(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*model.Booking, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	var out model.Booking
	if err := c.do(ctx, http.MethodPost, "/api/v1/bookings", req, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *StudioClient) ListBookings(ctx context.Context, email, status string) ([]model.BookingView, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	var out ListResult[model.BookingView]
	headers := map[string]string{"X-Client-Email": email}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/v1/bookings", query), nil, headers, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *StudioClient) CancelBooking(ctx context.Context, id string) (*model.Booking, error) {
	return c.bookingAction(ctx, id, "cancel")
}

func (c *StudioClient) CompleteBooking(ctx context.Context, id string) (*model.Booking, error) {
	return c.bookingAction(ctx, id, "complete")
}

func (c *StudioClient) bookingAction(ctx context.Context, id, action string) (*model.Booking, error) {
	var out model.Booking
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends the request and unwraps the {"data": ...} envelope into out.
// List endpoints decode the whole body.
func (c *StudioClient) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil {
			apiErr.Message = string(respBody)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if _, isList := out.(interface{ isList() }); isList {
		return json.Unmarshal(respBody, out)
	}
	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	return json.Unmarshal(respBody, &envelope)
}

func (ListResult[T]) isList() {}

func (c *StudioClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/ready", nil)
		if err != nil {
			return err
		}
		resp, err := c.HTTPClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become ready within %v", maxWait)
		case <-ticker.C:
		}
	}
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
