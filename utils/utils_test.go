package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub/actions"
	"learnhub/config"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	otp := GenerateOTP()
	assert.Len(t, otp, 6)
	for _, r := range otp {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestSMSGatewaySendsQuery(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"authorization":    r.URL.Query().Get("authorization"),
			"numbers":          r.URL.Query().Get("numbers"),
			"variables_values": r.URL.Query().Get("variables_values"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewSMSGateway(&config.Config{SmsApiUrl: srv.URL, SmsApiKey: "key", SmsSenderID: "LRNHUB"})
	require.NoError(t, g.SendOTP(context.Background(), "9876543210", "123456"))
	assert.Equal(t, "key", got["authorization"])
	assert.Equal(t, "9876543210", got["numbers"])
	assert.Equal(t, "123456", got["variables_values"])
}

func TestSMSGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewSMSGateway(&config.Config{SmsApiUrl: srv.URL, SmsApiKey: "key"})
	assert.Error(t, g.SendOTP(context.Background(), "9876543210", "123456"))

	// no key configured only logs
	g = NewSMSGateway(&config.Config{SmsApiUrl: srv.URL})
	assert.NoError(t, g.SendOTP(context.Background(), "9876543210", "123456"))
}

func TestPDFRenderer(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	doc := actions.CertificateDocument{
		StudentName:       "Sam Student",
		CourseTitle:       "Go in Practice",
		CertificateNumber: "CERT-20260314-ABCDEF12",
		IssuedAt:          time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	out, err := NewPDFRenderer(srv.URL).Render(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(out))
	assert.Equal(t, "certificate", body["template"])
	assert.Contains(t, body["html"], "Sam Student")
	assert.Contains(t, body["html"], "March 14, 2026")
}

func TestPDFRendererStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewPDFRenderer(srv.URL).Render(context.Background(), actions.CertificateDocument{})
	assert.Error(t, err)
}

func TestEmailBuildMessage(t *testing.T) {
	s := NewEmailService(&config.Config{EmailSender: "no-reply@learnhub.local", EmailSenderName: "LearnHub"})
	m := s.buildMessage([]string{"a@example.com", "b@example.com"}, "Hello", "<p>hi</p>")

	assert.Equal(t, "Hello", m.Subject)
	assert.Equal(t, "no-reply@learnhub.local", m.From.Address)
	require.Len(t, m.Personalizations, 2)
	assert.Equal(t, "b@example.com", m.Personalizations[1].To[0].Address)
}

func TestEmailSend(t *testing.T) {
	s := NewEmailService(&config.Config{SendgridApiKey: "SG.test"})
	var sent []*mail.SGMailV3
	s.send = func(m *mail.SGMailV3) error {
		sent = append(sent, m)
		return nil
	}

	require.NoError(t, s.SendTemplate([]string{"a@example.com"}, "New lesson", "Go in Practice", "<p>body</p>"))
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Content[0].Value, "Go in Practice")

	// no recipients, nothing sent
	require.NoError(t, s.SendEmail(nil, "x", "y"))
	assert.Len(t, sent, 1)
}

func TestEmailDryRun(t *testing.T) {
	s := NewEmailService(&config.Config{})
	called := false
	s.send = func(*mail.SGMailV3) error {
		called = true
		return nil
	}
	require.NoError(t, s.SendOTPEmail("123456", "a@example.com"))
	assert.False(t, called)
}
