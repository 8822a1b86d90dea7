package roster

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && c.EmailAddress != ""
}

// MailReport sends the rendered report HTML to the given recipients
// with a short run summary in the subject line.
func MailReport(ctx context.Context, config SmtpConfig, recipients []string, report string, totals Totals) error {
	_, span := tracer.Start(ctx, "MailReport")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Roster Watch <%s>", config.EmailAddress)
	mail.To = recipients
	mail.Subject = fmt.Sprintf(
		"Отчет по игрокам: %d обработано, %d успешно",
		totals.PlayersProcessed, totals.Successes,
	)
	mail.HTML = []byte(report)

	addr := fmt.Sprintf("%s:%d", config.Server, config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", config.EmailAddress, config.Password, config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send report email")
		return err
	}
	return nil
}
