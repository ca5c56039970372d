package smtp

import (
	"WakeGuard/internal/entity"
	"context"
	"fmt"
	smtpPkg "net/smtp"
	"strings"
)

type ItfSmtp interface {
	Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error)
}

type sendMailFunc func(addr string, a smtpPkg.Auth, from string, to []string, msg []byte) error

type smtp struct {
	auth     smtpPkg.Auth
	mail     string
	addr     string
	sendMail sendMailFunc
}

func New(mail, password, host string, port int) ItfSmtp {
	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{
		auth:     auth,
		mail:     mail,
		addr:     fmt.Sprintf("%s:%d", host, port),
		sendMail: smtpPkg.SendMail,
	}
}

// Send mails the alert text to n.To. net/smtp has no context support, so a
// cancelled context only abandons the wait, not the dial.
func (s *smtp) Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error) {
	to := []string{n.To}
	msg := buildMessage(s.mail, n.To, n.Text)

	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(s.addr, s.auth, s.mail, to, msg)
	}()

	select {
	case <-ctx.Done():
		return entity.DeliveryReceipt{}, ctx.Err()
	case err := <-done:
		if err != nil {
			return entity.DeliveryReceipt{}, err
		}
		return entity.DeliveryReceipt{Accepted: true, Detail: "queued by " + s.addr}, nil
	}
}

func buildMessage(from, to, text string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: WakeGuard drowsiness alert\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(text)
	return []byte(b.String())
}
