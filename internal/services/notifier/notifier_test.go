package notifier

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wealth-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wealth-management/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error { return m.Called(from).Error(0) }
func (m *MockSMTPClient) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *MockSMTPClient) Quit() error            { return m.Called().Error(0) }
func (m *MockSMTPClient) Close() error           { return m.Called().Error(0) }

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

type bufferCloser struct {
	strings.Builder
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const event = `{"payment_id":5,"user_id":9,"email":"ann@example.com","first_name":"Ann",` +
	`"plan_name":"Premium","price":499,"payment_reference":"UTR123","timestamp":"2025-03-01T12:00:00Z"}`

func TestPaymentSubmitted_SendsMail(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := &bufferCloser{}

	transport.On("GetSMTPUser").Return("noreply@example.com")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@example.com").Return(nil).Once()
	client.On("Rcpt", "ann@example.com").Return(nil).Once()
	client.On("Data").Return(writer, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	err := New(newNoopLogger(), transport).PaymentSubmitted([]byte(event))

	assert.NoError(t, err)
	assert.True(t, writer.closed)
	body := writer.String()
	assert.Contains(t, body, "To: ann@example.com")
	assert.Contains(t, body, "Subject: Payment received: Premium")
	assert.Contains(t, body, "Hello, Ann!")
	assert.Contains(t, body, "UTR123")
	transport.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestPaymentSubmitted_Errors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setupMocks   func(*MockTransport)
		errorMessage string
		permanent    bool
	}{
		{
			name:         "некорректный JSON",
			body:         `invalid json`,
			setupMocks:   func(_ *MockTransport) {},
			errorMessage: "error unmarshalling message",
			permanent:    true,
		},
		{
			name:         "нет получателя",
			body:         `{"payment_id":5}`,
			setupMocks:   func(_ *MockTransport) {},
			errorMessage: "has no recipient",
			permanent:    true,
		},
		{
			name: "ошибка подключения к SMTP",
			body: event,
			setupMocks: func(tr *MockTransport) {
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			errorMessage: "connection error",
		},
		{
			name: "ошибка RCPT",
			body: event,
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "ann@example.com").Return(errors.New("rcpt error")).Once()
				client.On("Close").Return(nil).Once()
			},
			errorMessage: "rcpt error",
		},
		{
			name: "ошибка Data",
			body: event,
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "ann@example.com").Return(nil).Once()
				client.On("Data").Return(nil, errors.New("data error")).Once()
				client.On("Close").Return(nil).Once()
			},
			errorMessage: "data error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			tt.setupMocks(transport)

			err := New(newNoopLogger(), transport).PaymentSubmitted([]byte(tt.body))

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)
			assert.Equal(t, tt.permanent, errors.Is(err, rabbitmq.ErrPermanent))
			transport.AssertExpectations(t)
		})
	}
}
