package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Mail is a rendered e-mail message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends e-mail.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// LogMailer writes mails to the log. It stands in for an SMTP relay.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Mail) error {
	log.Info().Str("to", m.To).Str("subject", m.Subject).Msg(m.Body)
	return nil
}

// Render turns an event into the mail sent to its recipient. It reports false
// for events nobody is e-mailed about.
func Render(e Event) (Mail, bool) {
	if e.Email == "" {
		return Mail{}, false
	}
	m := Mail{To: e.Email}
	switch e.Type {
	case OrderCreated:
		m.Subject = "We received your order"
		m.Body = fmt.Sprintf("Order %s for %s is pending confirmation.", e.OrderID, e.Total)
	case OrderStatusChanged:
		m.Subject = "Your order was updated"
		m.Body = fmt.Sprintf("Order %s is now %s.", e.OrderID, e.Status)
	case OrderCancelled:
		m.Subject = "Your order was cancelled"
		m.Body = fmt.Sprintf("Order %s was cancelled.", e.OrderID)
	case CompanyApproved:
		m.Subject = "Your company was approved"
		m.Body = fmt.Sprintf("%s can now publish products and receive orders.", e.Name)
	case CompanyRejected:
		m.Subject = "Your company request was rejected"
		m.Body = fmt.Sprintf("The registration of %s was not approved.", e.Name)
	default:
		return Mail{}, false
	}
	return m, true
}

// MailHandler decodes a broker message and mails its recipient.
// Malformed messages are dropped so they are not redelivered forever.
func MailHandler(mailer Mailer) func(ctx context.Context, body []byte) error {
	return func(ctx context.Context, body []byte) error {
		var e Event
		if err := json.Unmarshal(body, &e); err != nil {
			log.Warn().Err(err).Msg("dropping malformed event")
			return nil
		}
		m, ok := Render(e)
		if !ok {
			return nil
		}
		return mailer.Send(ctx, m)
	}
}
