package mailer

import (
	"fmt"
	"html"
	"time"

	"docqa-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type Receipt struct {
	OrderId       string
	Amount        int64
	Currency      string
	QuestionCount int64
	RedirectURL   string
	IssuedAt      time.Time
}

type IEmailService interface {
	SendChargeReceipt(toEmail, toName string, receipt Receipt) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		logger:      log,
	}
}

func (s *emailService) SendChargeReceipt(toEmail, toName string, receipt Receipt) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetAddressHeader("To", toEmail, toName)
	m.SetHeader("Subject", fmt.Sprintf("Your DocQA charge %s", receipt.OrderId))
	m.SetBody("text/html", RenderReceipt(toName, receipt))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "failed to send receipt", map[string]interface{}{
			"order_id": receipt.OrderId,
			"error":    err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "receipt sent", map[string]interface{}{"order_id": receipt.OrderId})
	return nil
}

func RenderReceipt(name string, r Receipt) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thanks for using DocQA, %s</h2>
			<p>You have asked <strong>%d</strong> questions. A charge was created:</p>
			<table>
				<tr><td>Order</td><td>%s</td></tr>
				<tr><td>Amount</td><td>%d %s</td></tr>
				<tr><td>Issued</td><td>%s</td></tr>
			</table>
			<p><a href="%s">Complete your payment</a></p>
		</div>
	`,
		html.EscapeString(name),
		r.QuestionCount,
		html.EscapeString(r.OrderId),
		r.Amount, html.EscapeString(r.Currency),
		r.IssuedAt.UTC().Format(time.RFC1123),
		html.EscapeString(r.RedirectURL),
	)
}
