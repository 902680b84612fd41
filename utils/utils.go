package utils

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"learnhub/config"

	"github.com/go-resty/resty/v2"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	otp := ""
	for i := 0; i < 6; i++ {
		otp += fmt.Sprintf("%d", rng.Intn(10))
	}
	return otp
}

// SMSSender delivers one-time codes to a mobile number
type SMSSender interface {
	SendOTP(ctx context.Context, mobile, otp string) error
}

// SMSGateway talks to a fast2sms style bulk endpoint
type SMSGateway struct {
	client   *resty.Client
	apiURL   string
	apiKey   string
	senderID string
}

func NewSMSGateway(cfg *config.Config) *SMSGateway {
	return &SMSGateway{
		client:   resty.New().SetTimeout(10 * time.Second),
		apiURL:   cfg.SmsApiUrl,
		apiKey:   cfg.SmsApiKey,
		senderID: cfg.SmsSenderID,
	}
}

func (g *SMSGateway) SendOTP(ctx context.Context, mobile, otp string) error {
	if g.apiKey == "" {
		log.Printf("[SMS] no API key configured, OTP for %s not sent", mobile)
		return nil
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"authorization":    g.apiKey,
			"route":            "otp",
			"sender_id":        g.senderID,
			"variables_values": otp,
			"flash":            "0",
			"numbers":          mobile,
		}).
		Get(g.apiURL)
	if err != nil {
		log.Printf("[SMS] error while sending OTP: %v", err)
		return err
	}
	if resp.StatusCode() != 200 {
		log.Printf("[SMS] failed to send OTP, response code: %d", resp.StatusCode())
		return fmt.Errorf("failed to send OTP, code: %d", resp.StatusCode())
	}

	log.Println("[SMS] OTP sent successfully to", mobile)
	return nil
}
