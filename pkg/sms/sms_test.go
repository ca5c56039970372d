package sms

import (
	"WakeGuard/internal/entity"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsMessage(t *testing.T) {
	var got sendRequest
	var apiKey, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = jsoniter.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	receipt, err := New("key-123", srv.URL).Send(context.Background(), entity.Notification{
		From: "+6281100000000",
		To:   "+6281200000000",
		Text: "Driver appears drowsy",
	})
	require.NoError(t, err)

	assert.True(t, receipt.Accepted)
	assert.Equal(t, http.StatusOK, receipt.Code)
	assert.Equal(t, "key-123", apiKey)
	assert.Equal(t, "/v1/messages/send", path)
	assert.Equal(t, sendRequest{From: "+6281100000000", To: "+6281200000000", Content: "Driver appears drowsy"}, got)
}

func TestSendNonOKIsNotAccepted(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "created is not the documented success", status: http.StatusCreated},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			receipt, err := New("k", srv.URL).Send(context.Background(), entity.Notification{Text: "x"})
			require.NoError(t, err)
			assert.False(t, receipt.Accepted)
			assert.Equal(t, tt.status, receipt.Code)
			assert.Equal(t, "nope", receipt.Detail)
		})
	}
}

func TestSendHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New("k", srv.URL).Send(ctx, entity.Notification{Text: "x"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
