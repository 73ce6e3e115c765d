// Package notify sends registration confirmation email through SendGrid.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const subject = "Registration Confirmation - Money Made Simple"

const body = `Thank you for your interest in Money Made Simple, organized by the Egyptian Exchange (EGX) and Cairo Capital Group.

We have received your registration. Due to high demand, attendance is subject to a waiting list. Please keep an eye on your email and WhatsApp for confirmation and further details.

Best regards,
EGX & Cairo Capital Group Team

شكرًا لاهتمامكم بفعالية “Money Made Simple”، التي تنظمها البورصة المصرية (EGX) ومجموعة كايرو كابيتال.

نود إعلامكم بأنه تم استلام تسجيلكم. ونظرًا للإقبال الكبير، فإن الحضور يخضع لقائمة انتظار. يُرجى متابعة بريدكم الإلكتروني وتطبيق واتساب للحصول على تأكيد الحضور وكافة التفاصيل لاحقًا.

مع خالص التحية،
فريق البورصة المصرية (EGX) ومجموعة كايرو كابيتال
`

// SendGridSender delivers confirmation mail through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   string
	logger *slog.Logger
}

// NewSendGridSender builds a sender using the given API key and from address.
func NewSendGridSender(apiKey, from string, logger *slog.Logger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// SendConfirmation sends the bilingual confirmation message to the registrant.
func (s *SendGridSender) SendConfirmation(ctx context.Context, to string) error {
	message := mail.NewSingleEmailPlainText(
		mail.NewEmail("", s.from),
		subject,
		mail.NewEmail("", to),
		body,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}

	s.logger.InfoContext(ctx, "confirmation email accepted",
		"status", resp.StatusCode,
	)
	return nil
}
