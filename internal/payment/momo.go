package payment

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	momoRequestType = "captureWallet"
	momoCreatePath  = "/v2/gateway/api/create"
)

type MoMoConfig struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
}

type MoMo struct {
	cfg   MoMoConfig
	hc    *http.Client
	now   func() time.Time
	reqID func() string
}

func NewMoMo(cfg MoMoConfig) *MoMo {
	return &MoMo{
		cfg:   cfg,
		hc:    newHTTPClient(),
		now:   time.Now,
		reqID: func() string { return uuid.NewString() },
	}
}

func (m *MoMo) Name() Provider { return ProviderMoMo }

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	PayURL      string `json:"payUrl"`
	Deeplink    string `json:"deeplink"`
}

// momoCreateSignature signs a create request with the field order MoMo
// documents for API v2.
func momoCreateSignature(cfg MoMoConfig, r momoCreateRequest) string {
	raw := "accessKey=" + cfg.AccessKey +
		"&amount=" + strconv.FormatInt(r.Amount, 10) +
		"&extraData=" + r.ExtraData +
		"&ipnUrl=" + r.IpnURL +
		"&orderId=" + r.OrderID +
		"&orderInfo=" + r.OrderInfo +
		"&partnerCode=" + r.PartnerCode +
		"&redirectUrl=" + r.RedirectURL +
		"&requestId=" + r.RequestID +
		"&requestType=" + r.RequestType
	return hmacSHA256Hex(cfg.SecretKey, raw)
}

func (m *MoMo) CreatePayment(ctx context.Context, req Request) (*Link, error) {
	body := momoCreateRequest{
		PartnerCode: m.cfg.PartnerCode,
		RequestID:   m.reqID(),
		Amount:      req.Amount,
		OrderID:     GatewayOrderID(req.OrderID, m.now()),
		OrderInfo:   req.Description,
		RedirectURL: req.ReturnURL,
		IpnURL:      req.NotifyURL,
		RequestType: momoRequestType,
		ExtraData:   EncodeExtraData(req.OrderID),
		Lang:        "vi",
	}
	body.Signature = momoCreateSignature(m.cfg, body)

	var resp momoCreateResponse
	if err := postJSON(ctx, m.hc, m.cfg.Endpoint+momoCreatePath, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("momo create: %w", err)
	}
	if resp.ResultCode != 0 || resp.PayURL == "" {
		return nil, fmt.Errorf("%w: momo %d %s", ErrGatewayRejected, resp.ResultCode, resp.Message)
	}

	return &Link{GatewayOrderID: body.OrderID, PayURL: resp.PayURL}, nil
}

// MoMoIPN is the body MoMo posts to ipnUrl.
type MoMoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

func MoMoIPNSignature(cfg MoMoConfig, n MoMoIPN) string {
	raw := "accessKey=" + cfg.AccessKey +
		"&amount=" + strconv.FormatInt(n.Amount, 10) +
		"&extraData=" + n.ExtraData +
		"&message=" + n.Message +
		"&orderId=" + n.OrderID +
		"&orderInfo=" + n.OrderInfo +
		"&orderType=" + n.OrderType +
		"&partnerCode=" + n.PartnerCode +
		"&payType=" + n.PayType +
		"&requestId=" + n.RequestID +
		"&responseTime=" + strconv.FormatInt(n.ResponseTime, 10) +
		"&resultCode=" + strconv.Itoa(n.ResultCode) +
		"&transId=" + strconv.FormatInt(n.TransID, 10)
	return hmacSHA256Hex(cfg.SecretKey, raw)
}

// VerifyIPN checks the signature and maps the IPN to a Notification.
func (m *MoMo) VerifyIPN(n MoMoIPN) (Notification, error) {
	if n.PartnerCode != m.cfg.PartnerCode || !equalSignature(MoMoIPNSignature(m.cfg, n), n.Signature) {
		return Notification{}, ErrInvalidSignature
	}

	orderID := orderIDFromExtraData(n.ExtraData)
	if orderID == 0 {
		orderID = OrderIDFromGatewayOrderID(n.OrderID)
	}
	return Notification{
		Provider:       ProviderMoMo,
		GatewayOrderID: n.OrderID,
		TransID:        strconv.FormatInt(n.TransID, 10),
		Amount:         n.Amount,
		Paid:           n.ResultCode == 0,
		Failed:         n.ResultCode != 0 && !momoPending(n.ResultCode),
		OrderID:        orderID,
	}, nil
}

// momoPending reports result codes for transactions still in flight.
func momoPending(code int) bool {
	switch code {
	case 1000, 7000, 7002, 9000:
		return true
	}
	return false
}
