package chain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSubmitTransferSuccess(t *testing.T) {
	var gotPath string
	var gotBody TransferInput

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		id := int64(55)
		json.NewEncoder(w).Encode(gatewayResponse{
			OK:          true,
			BlockHash:   "0xabc",
			BlockNumber: 120,
			TxHash:      "0xdef",
			RecordID:    &id,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, testLogger())
	conf, err := c.SubmitTransfer(context.Background(), TransferInput{
		From: "COL1", To: "MIL1", PaddyType: "Samba", Kind: "paddy",
		QuantityKg: 120, PriceCents: 12000, Normal: true,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotPath != "/transactions" {
		t.Errorf("path = %q, want /transactions", gotPath)
	}
	if gotBody.QuantityKg != 120 || gotBody.From != "COL1" {
		t.Errorf("payload = %+v", gotBody)
	}
	if conf.TxHash != "0xdef" || conf.BlockNumber != 120 {
		t.Errorf("confirmation = %+v", conf)
	}
	if conf.RecordID == nil || *conf.RecordID != 55 {
		t.Errorf("record id = %v, want 55", conf.RecordID)
	}
}

func TestGatewayServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, testLogger())
	_, err := c.SubmitDamage(context.Background(), DamageInput{Party: "COL1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGatewayRejectionIsReverted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(gatewayResponse{OK: false, Error: "execution reverted: unknown user"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, testLogger())
	_, err := c.SubmitMilling(context.Background(), MillingInput{Miller: "MIL1"})
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("err = %v, want ErrReverted", err)
	}
}

func TestGatewayOKFalseWithout4xxIsReverted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gatewayResponse{OK: false, Error: "nonce too low"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, testLogger())
	_, err := c.SubmitInitialStock(context.Background(), InitialStockInput{Party: "COL1"})
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("err = %v, want ErrReverted", err)
	}
}

func TestSlowGatewayIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 50*time.Millisecond, testLogger())
	_, err := c.RegisterParty(context.Background(), RegisterPartyInput{ID: "COL1"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestUnreachableGatewayIsUnavailable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", time.Second, testLogger())
	_, err := c.SubmitTransfer(context.Background(), TransferInput{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestFromEnvWithoutURLIsDisabled(t *testing.T) {
	t.Setenv("CHAIN_GATEWAY_URL", "")
	c := FromEnv(testLogger())
	if _, ok := c.(Disabled); !ok {
		t.Fatalf("client = %T, want Disabled", c)
	}
	if _, err := c.SubmitTransfer(context.Background(), TransferInput{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}
