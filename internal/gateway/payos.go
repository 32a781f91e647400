package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const successCode = "00"

// Client talks to the hosted-checkout payment provider over HTTPS.
type Client struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	HTTPClient  *http.Client
}

func NewClient(baseURL, clientID, apiKey, checksumKey string) *Client {
	return &Client{
		BaseURL:     baseURL,
		ClientID:    clientID,
		APIKey:      apiKey,
		ChecksumKey: checksumKey,
		HTTPClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type wireItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

func (c *Client) CreateLink(ctx context.Context, req CreateLinkRequest) (CheckoutLink, error) {
	items := make([]wireItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, wireItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	expiredAt := time.Now().Add(time.Duration(req.ExpiresIn) * time.Minute).Unix()
	signature := signData(map[string]any{
		"amount":      json.Number(fmt.Sprintf("%d", req.Amount)),
		"cancelUrl":   req.CancelURL,
		"description": req.Description,
		"orderCode":   json.Number(fmt.Sprintf("%d", req.OrderCode)),
		"returnUrl":   req.ReturnURL,
	}, c.ChecksumKey)

	body := map[string]any{
		"orderCode":   req.OrderCode,
		"amount":      req.Amount,
		"description": req.Description,
		"items":       items,
		"cancelUrl":   req.CancelURL,
		"returnUrl":   req.ReturnURL,
		"expiredAt":   expiredAt,
		"signature":   signature,
	}

	var data struct {
		CheckoutURL   string `json:"checkoutUrl"`
		PaymentLinkID string `json:"paymentLinkId"`
		OrderCode     int64  `json:"orderCode"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/payment-requests", body, &data); err != nil {
		return CheckoutLink{}, err
	}
	return CheckoutLink{
		CheckoutURL:   data.CheckoutURL,
		PaymentLinkID: data.PaymentLinkID,
		OrderCode:     data.OrderCode,
	}, nil
}

func (c *Client) GetPaymentInfo(ctx context.Context, orderCode int64) (PaymentInfo, error) {
	var data struct {
		ID         string `json:"id"`
		OrderCode  int64  `json:"orderCode"`
		Amount     int64  `json:"amount"`
		AmountPaid int64  `json:"amountPaid"`
		Status     string `json:"status"`
	}
	path := fmt.Sprintf("/v2/payment-requests/%d", orderCode)
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return PaymentInfo{}, err
	}
	return PaymentInfo{
		OrderCode:  data.OrderCode,
		Amount:     data.Amount,
		AmountPaid: data.AmountPaid,
		Status:     data.Status,
		Reference:  data.ID,
	}, nil
}

func (c *Client) CancelLink(ctx context.Context, orderCode int64, reason string) error {
	path := fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode)
	body := map[string]any{"cancellationReason": reason}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// VerifyWebhook checks the payload signature before anything looks at the
// content. It fails closed: any parse or signature mismatch rejects the event.
func (c *Client) VerifyWebhook(raw []byte) (WebhookEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return WebhookEvent{}, ErrInvalidSignature
	}
	if env.Signature == "" || len(env.Data) == 0 {
		return WebhookEvent{}, ErrInvalidSignature
	}

	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return WebhookEvent{}, ErrInvalidSignature
	}

	want := signData(fields, c.ChecksumKey)
	if !signatureEqual(want, env.Signature) {
		return WebhookEvent{}, ErrInvalidSignature
	}

	var data struct {
		OrderCode int64  `json:"orderCode"`
		Amount    int64  `json:"amount"`
		Reference string `json:"reference"`
		Code      string `json:"code"`
		Desc      string `json:"desc"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return WebhookEvent{}, ErrInvalidSignature
	}

	return WebhookEvent{
		OrderCode: data.OrderCode,
		Amount:    data.Amount,
		Reference: data.Reference,
		Success:   env.Success && data.Code == successCode,
		Code:      data.Code,
		Desc:      data.Desc,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.ClientID)
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &Error{Status: 0, Code: "network", Desc: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{Status: resp.StatusCode, Code: "bad_response", Desc: err.Error()}
	}
	if resp.StatusCode >= 400 || env.Code != successCode {
		return &Error{Status: resp.StatusCode, Code: env.Code, Desc: env.Desc}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Status: resp.StatusCode, Code: "bad_response", Desc: err.Error()}
		}
	}
	return nil
}
