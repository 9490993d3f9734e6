package smtp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/wealth-management/internal/config"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// ErrNoSTARTTLS сервер не предлагает STARTTLS, а небезопасное соединение не разрешено.
var ErrNoSTARTTLS = errors.New("smtp server does not support STARTTLS")

// Transport открывает соединения с почтовым сервером из config.SMTP.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect подключается к серверу, включает STARTTLS и проходит PLAIN-аутентификацию.
// Без пароля аутентификация пропускается. Без STARTTLS соединение допускается
// только при AllowInsecure.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"
	addr := net.JoinHostPort(t.cfg.Host, t.cfg.Port)
	log := t.log.With(slog.String("op", op), slog.String("addr", addr))

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: failed to dial SMTP server: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		log.Error("failed to create SMTP client", sl.Err(err))
		_ = conn.Close()
		return nil, fmt.Errorf("%s: failed to create SMTP client: %w", op, err)
	}

	if err := t.handshake(client, log); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

func (t *Transport) handshake(client *smtp.Client, log *slog.Logger) error {
	if ok, _ := client.Extension("STARTTLS"); ok {
		err := client.StartTLS(&tls.Config{
			ServerName: t.cfg.Host,
			MinVersion: tls.VersionTLS12,
		})
		if err != nil {
			log.Error("failed to start TLS", sl.Err(err))
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	} else if !t.cfg.AllowInsecure {
		log.Error("SMTP server does not support STARTTLS")
		return ErrNoSTARTTLS
	} else {
		log.Warn("sending mail without TLS")
	}

	if t.cfg.Password == "" {
		return nil
	}
	if err := client.Auth(smtp.PlainAuth("", t.cfg.User, t.cfg.Password, t.cfg.Host)); err != nil {
		log.Error("smtp auth failed", sl.Err(err))
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	return nil
}

// GetSMTPUser возвращает адрес отправителя.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.User
}
