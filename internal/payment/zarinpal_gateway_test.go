package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayStub(t *testing.T, handler http.HandlerFunc) (Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gw := NewZarinpalGatewayWithBase("test-merchant", srv.URL, srv.URL+"/StartPay/")
	return gw, srv
}

func TestRequestPayment_Success(t *testing.T) {
	gw, srv := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/request.json", r.URL.Path)

		var payload requestPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test-merchant", payload.MerchantID)
		assert.Equal(t, int64(393600), payload.Amount)
		require.NotNil(t, payload.Metadata)
		assert.Equal(t, "42", payload.Metadata.OrderID)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"code":      100,
				"authority": "A0000012345",
			},
		})
	})

	res, err := gw.RequestPayment(context.Background(), RequestParams{
		Amount:      393600,
		CallbackURL: "https://shop.example/payment/callback",
		Description: "10 : 2\n20 : 1\n",
		Mobile:      "09120000000",
		OrderID:     42,
	})
	require.NoError(t, err)
	assert.Equal(t, "A0000012345", res.Authority)
	assert.Equal(t, srv.URL+"/StartPay/A0000012345", res.RedirectURL)
}

func TestRequestPayment_GatewayError(t *testing.T) {
	gw, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data":   map[string]interface{}{},
			"errors": map[string]interface{}{"code": -11},
		})
	})

	_, err := gw.RequestPayment(context.Background(), RequestParams{Amount: 1000})
	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, -11, gerr.Code)
	assert.Equal(t, MessageFor(-11), gerr.Message)
}

func TestVerifyPayment_FirstTime(t *testing.T) {
	gw, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify.json", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"code": 100, "ref_id": 987654},
		})
	})

	res, err := gw.VerifyPayment(context.Background(), "A0000012345", 393600)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Code)
	assert.Equal(t, int64(987654), res.RefID)
	assert.False(t, res.AlreadyVerified())
}

func TestVerifyPayment_AlreadyVerifiedIsSuccess(t *testing.T) {
	gw, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"code": 101, "ref_id": 987654},
		})
	})

	res, err := gw.VerifyPayment(context.Background(), "A0000012345", 393600)
	require.NoError(t, err)
	assert.True(t, res.AlreadyVerified())
}

func TestVerifyPayment_Failure(t *testing.T) {
	gw, _ := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data":   map[string]interface{}{},
			"errors": map[string]interface{}{"code": -55},
		})
	})

	_, err := gw.VerifyPayment(context.Background(), "A0000012345", 393600)
	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, -55, gerr.Code)
	assert.True(t, IsTerminalVerifyCode(gerr.Code))
}

func TestMessageFor_Unknown(t *testing.T) {
	assert.Equal(t, unknownGatewayMessage, MessageFor(-999))
	assert.NotEqual(t, unknownGatewayMessage, MessageFor(-54))
}
