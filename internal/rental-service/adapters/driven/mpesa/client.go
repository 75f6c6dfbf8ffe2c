package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"car-hire/internal/config"
	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/core/ports"
)

const (
	oauthPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	// Daraja rejects AccountReference longer than 12 characters
	accountRefLimit = 12
)

type Client struct {
	cfg   *config.Mpesaconfig
	mylog mylogger.Logger
	http  *http.Client
}

func New(cfg *config.Mpesaconfig, mylog mylogger.Logger) ports.IPaymentProvider {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:   cfg,
		mylog: mylog,
		http:  &http.Client{Timeout: timeout},
	}
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushPayload struct {
	BusinessShortCode int64  `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            int64  `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// RequestPayment triggers an STK push prompt on the payer's phone.
func (c *Client) RequestPayment(ctx context.Context, req ports.StkPushRequest) (ports.StkPushAck, error) {
	log := c.mylog.Action("RequestPayment")

	token, err := c.oauthToken(ctx)
	if err != nil {
		return ports.StkPushAck{}, fmt.Errorf("oauth failed: %w", err)
	}

	shortCode, err := strconv.ParseInt(c.cfg.ShortCode, 10, 64)
	if err != nil {
		return ports.StkPushAck{}, fmt.Errorf("invalid shortcode %q: %w", c.cfg.ShortCode, err)
	}

	ts := time.Now().Format("20060102150405")
	msisdn := PhoneToMSISDN(req.PhoneE164)
	accountRef := req.AccountRef
	if len(accountRef) > accountRefLimit {
		accountRef = accountRef[:accountRefLimit]
	}

	payload := stkPushPayload{
		BusinessShortCode: shortCode,
		Password:          c.password(ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            req.Amount,
		PartyA:            msisdn,
		PartyB:            shortCode,
		PhoneNumber:       msisdn,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   fmt.Sprintf("Booking %s", req.BookingId),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.StkPushAck{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPushPath, bytes.NewReader(body))
	if err != nil {
		return ports.StkPushAck{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return ports.StkPushAck{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return ports.StkPushAck{}, err
	}
	if res.StatusCode != http.StatusOK {
		log.Warn("stk push rejected", "status", res.StatusCode, "body", string(raw))
		return ports.StkPushAck{}, fmt.Errorf("stk push error: %d %s", res.StatusCode, string(raw))
	}

	var ack stkPushResponse
	if err := json.Unmarshal(raw, &ack); err != nil {
		return ports.StkPushAck{}, fmt.Errorf("unexpected stk push response: %w", err)
	}

	log.Info("stk push accepted", "checkout_request_id", ack.CheckoutRequestID, "merchant_request_id", ack.MerchantRequestID)
	return ports.StkPushAck{
		MerchantRequestID:   ack.MerchantRequestID,
		CheckoutRequestID:   ack.CheckoutRequestID,
		ResponseCode:        ack.ResponseCode,
		ResponseDescription: ack.ResponseDescription,
		CustomerMessage:     ack.CustomerMessage,
	}, nil
}

func (c *Client) oauthToken(ctx context.Context) (string, error) {
	if c.cfg.ConsumerKey == "" || c.cfg.ConsumerSecret == "" {
		return "", fmt.Errorf("consumer key/secret missing")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+oauthPath, nil)
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	httpReq.Header.Set("Authorization", "Basic "+auth)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oauth status %d: %s", res.StatusCode, string(raw))
	}

	var data oauthResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("oauth response missing access token")
	}
	return data.AccessToken, nil
}

// password is base64(shortcode + passkey + timestamp), per the Daraja spec.
func (c *Client) password(ts string) string {
	raw := c.cfg.ShortCode + c.cfg.PassKey + ts
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// PhoneToMSISDN normalizes +2547..., 07... and 7... forms to a 254-prefixed
// MSISDN. Already-international numbers pass through digits-only.
func PhoneToMSISDN(e164 string) string {
	var sb strings.Builder
	for _, r := range e164 {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()

	switch {
	case strings.HasPrefix(digits, "254"):
		return digits
	case strings.HasPrefix(digits, "0"):
		return "254" + digits[1:]
	case strings.HasPrefix(digits, "7"):
		return "254" + digits
	default:
		return digits
	}
}
