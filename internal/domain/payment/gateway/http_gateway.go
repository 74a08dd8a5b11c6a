package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"order_trade_core/internal/pkg/config"
	"order_trade_core/pkg/errs"
	"order_trade_core/pkg/metrics"
)

// httpGateway 基于 REST API 的网关客户端
// 认证方式：secret key 经 base64 后放 Basic 头，密码位留空
type httpGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewHTTPGateway() PaymentGateway {
	cfg := config.GlobalConfig.Gateway
	return NewHTTPGatewayWith(cfg.BaseURL, cfg.SecretKey, cfg.Timeout())
}

// NewHTTPGatewayWith 显式参数构造，测试时指向 httptest server
func NewHTTPGatewayWith(baseURL, secretKey string, timeout time.Duration) PaymentGateway {
	return &httpGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client: &http.Client{
			// 网关调用是交易链路里唯一的网络阻塞点，必须有界超时
			Timeout: timeout,
		},
	}
}

// gatewayError 网关非 2xx 响应体
type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (g *httpGateway) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	start := time.Now()
	defer func() {
		metrics.Get().GatewayCallDuration.WithLabelValues("confirm").Observe(time.Since(start).Seconds())
	}()

	var resp ConfirmResponse
	if err := g.post(ctx, "/confirm", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *httpGateway) Cancel(ctx context.Context, req CancelRequest) (*CancelResponse, error) {
	start := time.Now()
	defer func() {
		metrics.Get().GatewayCallDuration.WithLabelValues("cancel").Observe(time.Since(start).Seconds())
	}()

	var resp CancelResponse
	if err := g.post(ctx, "/cancel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *httpGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(g.secretKey+":")))

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		// 超时/连接失败按可重试处理，订单状态留在 PENDING 由调用方决定
		return errs.New(errs.KindRetryableGateway, fmt.Errorf("gateway request failed: %w", err))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return errs.New(errs.KindRetryableGateway, fmt.Errorf("gateway response read failed: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return g.mapError(httpResp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		// 2xx 但响应体不可解析，等同网关失败
		return errs.New(errs.KindInternal, errors.New("malformed gateway response")).
			WithGatewayStatus(httpResp.StatusCode)
	}
	return nil
}

// mapError 5xx/429 可重试，其余为硬失败；body 的 message 原样作为对用户的失败原因
func (g *httpGateway) mapError(status int, raw []byte) error {
	var body gatewayError
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = fmt.Sprintf("gateway returned status %d", status)
	}

	kind := errs.KindValidation
	if status >= 500 || status == http.StatusTooManyRequests {
		kind = errs.KindRetryableGateway
	}
	return errs.New(kind, errors.New(msg)).WithGatewayStatus(status)
}
