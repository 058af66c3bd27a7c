package mail

import (
	gomail "github.com/go-mail/mail"
	"go.uber.org/zap"

	"github.com/tazhibayda/linkbio/internal/log"
)

// Sender delivers notification mail over SMTP. With no host configured
// it logs instead of sending, which is what local dev and the test
// suite rely on.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(host string, port int, user, pass, from string) *Sender {
	s := &Sender{from: from}
	if host != "" {
		s.dialer = gomail.NewDialer(host, port, user, pass)
	}
	return s
}

func (s *Sender) Send(to, subject, body string) error {
	if s.dialer == nil {
		log.L.Info("mail (dev, not sent)",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}
