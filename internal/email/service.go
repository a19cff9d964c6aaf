package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/homecare/visit-api/internal/model"
)

// ErrDisabled is returned when no SMTP host is configured.
var ErrDisabled = errors.New("email delivery disabled")

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
	SendCertificateNotice(ctx context.Context, cert *model.ExpiringCertificate, daysLeft int) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// dialer is the part of gomail.Dialer the service uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	from   string
	dialer dialer
}

func NewService(cfg Config) Service {
	if cfg.Host == "" {
		return &smtpService{}
	}
	return &smtpService{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if s.dialer == nil {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *smtpService) SendCertificateNotice(ctx context.Context, cert *model.ExpiringCertificate, daysLeft int) error {
	if cert.Email == nil || strings.TrimSpace(*cert.Email) == "" {
		return fmt.Errorf("recorder %s has no email address", cert.EmployeeID)
	}
	subject, body := CertificateNotice(cert, daysLeft)
	return s.SendCustom(ctx, *cert.Email, subject, body)
}

// CertificateNotice renders the expiry reminder sent to a recorder.
func CertificateNotice(cert *model.ExpiringCertificate, daysLeft int) (subject, body string) {
	subject = fmt.Sprintf("执业证书将于%d天后到期", daysLeft)
	body = fmt.Sprintf("%s（工号 %s）您好：\n\n您的执业证书将于 %s 到期，请及时办理续期手续。\n",
		cert.Name, cert.EmployeeID, cert.CertExpiryDate.String())
	return subject, body
}
