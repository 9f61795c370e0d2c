package mail

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Jaysins/yoghurt-backend/internal/notify"
	gomail "gopkg.in/gomail.v2"
)

// GomailSender delivers one message per SMTP session. Dialing per send keeps
// the transport honest with call-time configuration: changed credentials
// take effect on the very next dispatch.
type GomailSender struct {
	log *slog.Logger
}

func NewGomailSender(log *slog.Logger) *GomailSender {
	return &GomailSender{log: log}
}

var _ notify.MailSender = (*GomailSender)(nil)

func (s *GomailSender) Send(cfg notify.SMTPConfig, to string, msg notify.Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.Sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	if att := msg.Attachment; att != nil {
		m.Attach(att.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(att.Content)
			return err
		}))
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	// Implicit TLS (SMTPS) when the TLS flag is set on the SMTPS port;
	// otherwise the dialer negotiates STARTTLS when the server offers it.
	d.SSL = cfg.UseTLS && cfg.Port == 465

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	s.log.Info("email sent", "to", to, "subject", msg.Subject)
	return nil
}
