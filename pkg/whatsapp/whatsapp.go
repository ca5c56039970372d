package whatsapp

import (
	"WakeGuard/database/postgres"
	"WakeGuard/internal/entity"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

type IWhatsappSender interface {
	Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error)
	Disconnect()
	IsConnected() bool
}

// messageSender is the slice of the whatsmeow client the sender needs.
type messageSender interface {
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	IsConnected() bool
	Disconnect()
}

type whatsappSender struct {
	log    *logrus.Logger
	client messageSender
}

// New opens the device session stored in postgres and connects. A fresh
// device prints a pairing QR code to the log and waits up to a minute.
func New(ctx context.Context, log *logrus.Logger) (IWhatsappSender, error) {
	dbLog := waLog.Stdout("Database", "WARN", true)
	container, err := sqlstore.New(ctx, postgres.DriverName, postgres.FormatDSN(), dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "WARN", true))

	connected := make(chan struct{}, 1)
	client.AddEventHandler(func(evt interface{}) {
		if _, ok := evt.(*events.Connected); ok {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})

	if client.Store.ID == nil {
		qrChan, _ := client.GetQRChannel(ctx)
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					log.WithField("code", evt.Code).Info("Scan the WhatsApp pairing QR code")
				}
			}
		}()
	} else if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	select {
	case <-connected:
		log.Info("WhatsApp connected")
	case <-time.After(60 * time.Second):
		client.Disconnect()
		return nil, fmt.Errorf("connection timeout")
	case <-ctx.Done():
		client.Disconnect()
		return nil, ctx.Err()
	}

	return &whatsappSender{log: log, client: client}, nil
}

func (w *whatsappSender) Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error) {
	phone := strings.TrimPrefix(strings.TrimSpace(n.To), "+")
	if phone == "" {
		return entity.DeliveryReceipt{}, fmt.Errorf("no recipient configured")
	}
	if !w.client.IsConnected() {
		return entity.DeliveryReceipt{}, fmt.Errorf("whatsapp client is not connected")
	}

	jid := types.NewJID(phone, types.DefaultUserServer)
	resp, err := w.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(n.Text),
	})
	if err != nil {
		return entity.DeliveryReceipt{}, fmt.Errorf("failed to send message: %w", err)
	}

	return entity.DeliveryReceipt{Accepted: true, Detail: resp.ID}, nil
}

func (w *whatsappSender) Disconnect() {
	w.client.Disconnect()
}

func (w *whatsappSender) IsConnected() bool {
	return w.client.IsConnected()
}
