package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout matches the confirmation wait the contracts typically
// need on the test network.
const DefaultTimeout = 300 * time.Second

// HTTPClient submits records through the chain gateway (the service that
// holds the signing key and the contract handles). One JSON POST per
// operation; the gateway blocks until the transaction is mined and answers
// with the receipt fields.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     *logrus.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, log *logrus.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FromEnv builds the configured client: an HTTPClient when
// CHAIN_GATEWAY_URL is set, otherwise Disabled so the backend keeps
// serving database-only (the old system did the same when the RPC node was
// unreachable).
func FromEnv(log *logrus.Logger) Client {
	url := os.Getenv("CHAIN_GATEWAY_URL")
	if url == "" {
		log.Warn("CHAIN_GATEWAY_URL not set, chain recording disabled")
		return Disabled{}
	}
	timeout := DefaultTimeout
	if v := os.Getenv("CHAIN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		} else {
			log.Warnf("invalid CHAIN_TIMEOUT %q, using default", v)
		}
	}
	return NewHTTPClient(url, timeout, log)
}

type gatewayResponse struct {
	OK          bool   `json:"ok"`
	BlockHash   string `json:"block_hash"`
	BlockNumber int64  `json:"block_number"`
	TxHash      string `json:"transaction_hash"`
	RecordID    *int64 `json:"record_id"`
	Reverted    bool   `json:"reverted"`
	Error       string `json:"error"`
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any) (*Confirmation, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrUnavailable, resp.StatusCode)
	}

	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 || !out.OK {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("gateway returned %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrReverted, msg)
	}

	c.log.WithFields(logrus.Fields{
		"module":    "chain",
		"path":      path,
		"block":     out.BlockNumber,
		"tx_hash":   out.TxHash,
		"record_id": out.RecordID,
	}).Info("chain record confirmed")

	return &Confirmation{
		BlockHash:   out.BlockHash,
		BlockNumber: out.BlockNumber,
		TxHash:      out.TxHash,
		RecordID:    out.RecordID,
	}, nil
}

func isClientTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func (c *HTTPClient) RegisterParty(ctx context.Context, in RegisterPartyInput) (*Confirmation, error) {
	return c.post(ctx, "/parties", in)
}

func (c *HTTPClient) SubmitTransfer(ctx context.Context, in TransferInput) (*Confirmation, error) {
	return c.post(ctx, "/transactions", in)
}

func (c *HTTPClient) SubmitDamage(ctx context.Context, in DamageInput) (*Confirmation, error) {
	return c.post(ctx, "/damages", in)
}

func (c *HTTPClient) SubmitMilling(ctx context.Context, in MillingInput) (*Confirmation, error) {
	return c.post(ctx, "/millings", in)
}

func (c *HTTPClient) SubmitInitialStock(ctx context.Context, in InitialStockInput) (*Confirmation, error) {
	return c.post(ctx, "/initial-stocks", in)
}
