package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/gomail.v2"

	"github.com/Alijeyrad/myvoice_backend/config"
)

const kindHeader = "X-MyVoice-Kind"

// Client delivers report mail over SMTP.
type Client struct {
	cfg Config
}

func NewFromCentral(cfg config.EmailConfig) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) (*Client, error) {
	if cfg.Enabled && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("email: smtp host is required when email is enabled")
	}
	return &Client{cfg: cfg}, nil
}

// Enabled reports whether messages are actually delivered.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

// Send builds and delivers m, giving up at the SMTP timeout or the
// context deadline, whichever comes first.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}
	to := len(msg.GetHeader("To"))

	done := make(chan error, 1)
	go func() {
		done <- c.newDialer().DialAndSend(msg)
	}()

	wait := c.cfg.SMTPTimeout()
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return &DeliveryError{Kind: m.Kind, Recipients: to, Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return &DeliveryError{Kind: m.Kind, Recipients: to, Err: context.DeadlineExceeded}
	}
}

func (c *Client) newDialer() *gomail.Dialer {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUsername, c.cfg.SMTPPassword)
	d.SSL = c.cfg.SMTPUseTLS
	if c.cfg.SMTPUseTLS {
		d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTPHost}
	}
	return d
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, &InvalidMessageError{Missing: "sender"}
	}
	to := recipients(m.To)
	if len(to) == 0 {
		return nil, &InvalidMessageError{Missing: "recipients"}
	}
	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, &InvalidMessageError{Missing: "subject"}
	}
	if strings.TrimSpace(m.TextBody) == "" {
		return nil, &InvalidMessageError{Missing: "text body"}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	if m.Kind != "" {
		msg.SetHeader(kindHeader, string(m.Kind))
	}

	msg.SetBody("text/plain", m.TextBody)
	if strings.TrimSpace(m.HTMLBody) != "" {
		msg.AddAlternative("text/html", m.HTMLBody)
	}

	for _, a := range m.Attachments {
		if a.Name == "" {
			return nil, &InvalidMessageError{Missing: "attachment name"}
		}
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(a.Data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		msg.Attach(a.Name, settings...)
	}

	return msg, nil
}

// recipients drops blanks and repeats from a hand-edited address list.
func recipients(in []string) []string {
	return lo.Uniq(lo.FilterMap(in, func(s string, _ int) (string, bool) {
		s = strings.ToLower(strings.TrimSpace(s))
		return s, s != ""
	}))
}
