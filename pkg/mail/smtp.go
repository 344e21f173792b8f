package mail

import (
	"context"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTPSender delivers mail through an SMTP-compatible relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from mail.Address
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender constructs an SMTP transport. Auth is only used when a
// username is configured.
func NewSMTPSender(host string, port int, username, password string, from mail.Address) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: host + ":" + strconv.Itoa(port),
		auth: auth,
		from: from,
		send: smtp.SendMail,
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("smtp send: recipient required")
	}
	if err := s.send(s.addr, s.auth, s.from.Address, []string{msg.To}, s.build(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from.String() + "\r\n")
	b.WriteString("To: " + msg.Recipient() + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
