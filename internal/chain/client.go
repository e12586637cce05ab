package chain

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the token service over HTTP and implements BalanceSource.
type Client struct {
	baseURL string
	account string
	inner   *http.Client
}

func NewClient(baseURL, account string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		account: account,
		inner:   &http.Client{Timeout: timeout},
	}
}

// Account is the ledger account this client acts for.
func (c *Client) Account() string { return c.account }

func (c *Client) QueryBalance(ctx context.Context, account string) (int64, error) {
	var out struct {
		Balance int64 `json:"balance"`
	}
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/balance", c.baseURL, url.PathEscape(account))
	if err := c.sendJSON(ctx, http.MethodGet, endpoint, nil, &out, false); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

func (c *Client) Transfer(ctx context.Context, destination string, amount int64, dedupeID string) (TransferReceipt, error) {
	body := map[string]any{
		"from":      c.account,
		"to":        destination,
		"amount":    amount,
		"dedupe_id": dedupeID,
	}
	var receipt TransferReceipt
	endpoint := c.baseURL + "/v1/transfers"
	// A transfer whose request may have reached the service gets the Unknown
	// class on timeout; the dedupe id makes a later replay safe but the
	// caller, not this client, decides whether to replay.
	if err := c.sendJSON(ctx, http.MethodPost, endpoint, body, &receipt, true); err != nil {
		return TransferReceipt{}, err
	}
	return receipt, nil
}

func (c *Client) ApproveSpender(ctx context.Context, spender string, amount int64) (TransferReceipt, error) {
	body := map[string]any{
		"owner":   c.account,
		"spender": spender,
		"amount":  amount,
	}
	var receipt TransferReceipt
	endpoint := c.baseURL + "/v1/approvals"
	if err := c.sendJSON(ctx, http.MethodPost, endpoint, body, &receipt, true); err != nil {
		return TransferReceipt{}, err
	}
	return receipt, nil
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, body, out any, mutating bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fatalErr("encode_request", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fatalErr("build_request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return classifyTransport(err, mutating)
	}
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return transientErr("read_response", readErr)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return transientErr("decode_response", err)
			}
		}
		return nil
	}
	return classifyStatus(resp.StatusCode, raw, mutating)
}

// classifyTransport maps a transport-level error. Timeouts on mutating calls
// are Unknown: the request may have reached the service. Certificate
// verification failures are transient per the node-rotation behavior of the
// remote service.
func classifyTransport(err error, mutating bool) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		if mutating {
			return unknownErr("remote_timeout", err)
		}
		return transientErr("remote_timeout", err)
	}
	var certErr x509.CertificateInvalidError
	var authErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &authErr) || errors.As(err, &hostErr) {
		return transientErr("certificate_error", err)
	}
	if errors.Is(err, context.Canceled) {
		return fatalErr("request_cancelled", err)
	}
	return transientErr("network_error", err)
}

func classifyStatus(status int, raw []byte, mutating bool) error {
	code := remoteCode(raw)
	err := fmt.Errorf("remote status %d", status)
	switch {
	case status == http.StatusGatewayTimeout && mutating:
		return unknownErr(code, err)
	case status == http.StatusTooManyRequests, status >= 500:
		return transientErr(code, err)
	default:
		return fatalErr(code, err)
	}
}

func remoteCode(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return "remote_error"
}
