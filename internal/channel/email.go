package channel

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"wishbook/internal/logger"
	"wishbook/internal/render"
)

// EmailAdapter delivers over SMTP. Each send opens, authenticates, and
// closes its own session; there is no pooling. Without credentials the
// adapter skips instead of failing so the scheduler keeps running in demo
// setups.
type EmailAdapter struct {
	Host     string
	Port     int
	User     string
	Password string
}

func (a *EmailAdapter) Send(ctx context.Context, msg render.RenderedMessage, destination string) (Result, error) {
	if a.User == "" || a.Password == "" {
		logger.Info("skipping email, SMTP credentials missing", "to", destination)
		return Skipped, nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.User)
	m.SetHeader("To", destination)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	if msg.ImagePath != "" {
		m.Embed(msg.ImagePath, gomail.SetHeader(map[string][]string{
			"Content-ID": {"<" + msg.ImageCID + ">"},
		}))
	}

	d := gomail.NewDialer(a.Host, a.Port, a.User, a.Password)

	// gomail has no context support; bound the session with the caller's
	// deadline instead.
	errCh := make(chan error, 1)
	go func() { errCh <- d.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return Failed, fmt.Errorf("%w: %v", ErrDeliveryFailed, ctx.Err())
	case err := <-errCh:
		if err != nil {
			return Failed, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	}

	logger.Info("email sent", "to", destination)
	return Sent, nil
}
