package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"parsshop-be/internal/logger"

	"go.uber.org/zap"
)

const (
	zarinpalBaseURL  = "https://api.zarinpal.com/pg/v4/payment"
	zarinpalStartPay = "https://www.zarinpal.com/pg/StartPay/"
)

type zarinpalGateway struct {
	merchantID string
	baseURL    string
	startPay   string
	httpClient *http.Client
}

// NewZarinpalGateway builds the production gateway client.
func NewZarinpalGateway(merchantID string) Gateway {
	if merchantID == "" {
		logger.L().Warn("zarinpal merchant id is empty")
	}

	return &zarinpalGateway{
		merchantID: merchantID,
		baseURL:    zarinpalBaseURL,
		startPay:   zarinpalStartPay,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewZarinpalGatewayWithBase is used by tests to point the client at a
// stub server.
func NewZarinpalGatewayWithBase(merchantID, baseURL, startPay string) Gateway {
	return &zarinpalGateway{
		merchantID: merchantID,
		baseURL:    baseURL,
		startPay:   startPay,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type requestPayload struct {
	MerchantID  string           `json:"merchant_id"`
	Amount      int64            `json:"amount"`
	CallbackURL string           `json:"callback_url"`
	Description string           `json:"description"`
	Metadata    *requestMetadata `json:"metadata,omitempty"`
}

type requestMetadata struct {
	Mobile  string `json:"mobile,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

type verifyPayload struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

type gatewayEnvelope struct {
	Data struct {
		Code      int    `json:"code"`
		Authority string `json:"authority"`
		RefID     int64  `json:"ref_id"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

func (g *zarinpalGateway) RequestPayment(ctx context.Context, params RequestParams) (*RequestResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", "zarinpal"),
		zap.Int64("order_id", params.OrderID),
		zap.Int64("amount", params.Amount),
	)

	payload := requestPayload{
		MerchantID:  g.merchantID,
		Amount:      params.Amount,
		CallbackURL: params.CallbackURL,
		Description: params.Description,
	}
	if params.Mobile != "" || params.OrderID != 0 {
		payload.Metadata = &requestMetadata{
			Mobile:  params.Mobile,
			OrderID: fmt.Sprintf("%d", params.OrderID),
		}
	}

	env, err := g.post(ctx, g.baseURL+"/request.json", payload)
	if err != nil {
		log.Error("payment request failed", zap.Error(err))
		return nil, err
	}

	if env.Data.Code != codeSuccess {
		log.Warn("gateway rejected payment request", zap.Int("code", env.Data.Code))
		return nil, newGatewayError(env.Data.Code)
	}

	log.Info("payment session created", zap.String("authority", env.Data.Authority))

	return &RequestResult{
		Authority:   env.Data.Authority,
		RedirectURL: g.startPay + env.Data.Authority,
	}, nil
}

func (g *zarinpalGateway) VerifyPayment(ctx context.Context, authority string, amount int64) (*VerifyResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", "zarinpal"),
		zap.String("authority", authority),
		zap.Int64("amount", amount),
	)

	payload := verifyPayload{
		MerchantID: g.merchantID,
		Amount:     amount,
		Authority:  authority,
	}

	env, err := g.post(ctx, g.baseURL+"/verify.json", payload)
	if err != nil {
		log.Error("verify request failed", zap.Error(err))
		return nil, err
	}

	code := env.Data.Code
	if code != codeSuccess && code != codeAlreadyVerified {
		log.Warn("verification not successful", zap.Int("code", code))
		return nil, newGatewayError(code)
	}

	log.Info("payment verified", zap.Int("code", code), zap.Int64("ref_id", env.Data.RefID))

	return &VerifyResult{Code: code, RefID: env.Data.RefID}, nil
}

func (g *zarinpalGateway) post(ctx context.Context, url string, payload interface{}) (*gatewayEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	var env gatewayEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	// error payloads carry the code under errors instead of data
	if env.Data.Code == 0 && len(env.Errors) > 0 {
		var errBody struct {
			Code int `json:"code"`
		}
		if jsonErr := json.Unmarshal(env.Errors, &errBody); jsonErr == nil && errBody.Code != 0 {
			env.Data.Code = errBody.Code
		}
	}

	return &env, nil
}
