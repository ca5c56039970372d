package sms

import (
	"WakeGuard/internal/entity"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const DefaultBaseURL = "https://api.httpsms.com"

type ISms interface {
	Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error)
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Content string `json:"content"`
}

type sms struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New returns an httpSMS client. The request deadline comes from the context
// passed to Send.
func New(apiKey, baseURL string) ISms {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &sms{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *sms) Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error) {
	body, err := jsoniter.Marshal(sendRequest{
		From:    n.From,
		To:      n.To,
		Content: n.Text,
	})
	if err != nil {
		return entity.DeliveryReceipt{}, fmt.Errorf("failed to encode sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages/send", bytes.NewReader(body))
	if err != nil {
		return entity.DeliveryReceipt{}, err
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return entity.DeliveryReceipt{}, fmt.Errorf("failed to reach sms gateway: %w", err)
	}
	defer resp.Body.Close()

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return entity.DeliveryReceipt{
		Accepted: resp.StatusCode == http.StatusOK,
		Code:     resp.StatusCode,
		Detail:   string(detail),
	}, nil
}
