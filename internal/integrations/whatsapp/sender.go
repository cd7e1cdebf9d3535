package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Doer abstracts the HTTP client so tests can substitute a double.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the WhatsApp Cloud API send endpoint.
type Client struct {
	baseURL       string
	apiVersion    string
	phoneNumberID string
	accessToken   string
	httpClient    Doer
}

// NewClient creates a Cloud API client. The default transport is bounded by a
// 15 second timeout; requests additionally honor the caller's context.
func NewClient(baseURL, apiVersion, phoneNumberID, accessToken string) *Client {
	return &Client{
		baseURL:       baseURL,
		apiVersion:    apiVersion,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetHTTPClient replaces the underlying transport (used by tests).
func (c *Client) SetHTTPClient(d Doer) {
	c.httpClient = d
}

// APIError represents a non-2xx response from the Cloud API. StatusCode and
// Body are propagated verbatim to the frontend caller.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status %d", e.StatusCode)
}

// sendTextPayload is the wire shape of a text send request.
type sendTextPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendResponse is the decoded Cloud API send response. Raw preserves the
// response body exactly as received for embedding in the frontend reply.
type SendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Raw json.RawMessage `json:"-"`
}

// MessageID returns the platform-assigned id of the sent message, or empty
// when the response lacks one.
func (r *SendResponse) MessageID() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

// SendText posts a text message to the Cloud API send endpoint with bearer
// authorization. A non-2xx response is returned as *APIError.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResponse, error) {
	payload := sendTextPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling send payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling whatsapp send api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading whatsapp send response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: json.RawMessage(respBody)}
	}

	var decoded SendResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decoding whatsapp send response: %w", err)
	}
	decoded.Raw = json.RawMessage(respBody)
	return &decoded, nil
}
