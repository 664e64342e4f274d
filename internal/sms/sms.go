package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"parsshop-be/internal/logger"

	ptime "github.com/yaa110/go-persian-calendar"
	"go.uber.org/zap"
)

// Sender delivers a text message. Delivery is fire-and-forget: failures
// are logged and never surfaced into the order flow.
type Sender interface {
	Send(ctx context.Context, recipient, message string)
}

type httpSender struct {
	apiKey     string
	baseURL    string
	sender     string
	httpClient *http.Client
}

func NewHTTPSender(apiKey, baseURL, sender string) Sender {
	if apiKey == "" {
		logger.L().Warn("sms api key is empty, messages will fail")
	}

	return &httpSender{
		apiKey:  apiKey,
		baseURL: baseURL,
		sender:  sender,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *httpSender) Send(ctx context.Context, recipient, message string) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "SMS"),
		zap.String("recipient", recipient),
	)

	q := url.Values{}
	q.Set("apikey", s.apiKey)
	q.Set("sender", s.sender)
	q.Set("receptor", recipient)
	q.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		log.Error("building sms request failed", zap.Error(err))
		return
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error("sending sms failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error("sms provider returned non-200", zap.Int("status", resp.StatusCode))
		return
	}

	log.Info("sms delivered to provider")
}

// OrderConfirmation builds the payment-confirmation text with the order's
// reference and a Jalali timestamp.
func OrderConfirmation(orderID, refID int64) string {
	now := ptime.Now().Format("yyyy/MM/dd HH:mm")
	return fmt.Sprintf(
		"پرداخت سفارش %d با موفقیت تایید شد.\nکد پیگیری: %d\nتاریخ: %s",
		orderID, refID, now,
	)
}

// OrderSummary builds the admin-created-order notification text.
func OrderSummary(orderID int64, description string, irrTotal int64) string {
	now := ptime.Now().Format("yyyy/MM/dd")
	return fmt.Sprintf(
		"سفارش %d در تاریخ %s ثبت شد.\n%sمبلغ قابل پرداخت: %d ریال",
		orderID, now, description, irrTotal,
	)
}

// NopSender discards messages; used in tests and local development.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, recipient, message string) {}
