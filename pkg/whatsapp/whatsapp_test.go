package whatsapp

import (
	"WakeGuard/internal/entity"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
)

type fakeClient struct {
	connected bool
	err       error
	to        types.JID
	text      string
}

func (f *fakeClient) SendMessage(_ context.Context, to types.JID, message *waE2E.Message, _ ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error) {
	f.to = to
	f.text = message.GetConversation()
	if f.err != nil {
		return whatsmeow.SendResponse{}, f.err
	}
	return whatsmeow.SendResponse{ID: "3EB0"}, nil
}

func (f *fakeClient) IsConnected() bool { return f.connected }
func (f *fakeClient) Disconnect()       { f.connected = false }

func newSender(c *fakeClient) *whatsappSender {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &whatsappSender{log: log, client: c}
}

func TestSendDeliversConversation(t *testing.T) {
	client := &fakeClient{connected: true}

	receipt, err := newSender(client).Send(context.Background(), entity.Notification{
		To:   "+6281200000000",
		Text: "Driver appears drowsy",
	})
	require.NoError(t, err)

	assert.True(t, receipt.Accepted)
	assert.Equal(t, "3EB0", receipt.Detail)
	assert.Equal(t, "6281200000000", client.to.User)
	assert.Equal(t, types.DefaultUserServer, client.to.Server)
	assert.Equal(t, "Driver appears drowsy", client.text)
}

func TestSendFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		to     string
	}{
		{name: "no recipient", client: &fakeClient{connected: true}, to: ""},
		{name: "disconnected", client: &fakeClient{connected: false}, to: "628"},
		{name: "send error", client: &fakeClient{connected: true, err: errors.New("boom")}, to: "628"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, err := newSender(tt.client).Send(context.Background(), entity.Notification{To: tt.to})
			assert.Error(t, err)
			assert.False(t, receipt.Accepted)
		})
	}
}
