package controllers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yohanvishvajith/paddyricetracker/chain"
	"github.com/yohanvishvajith/paddyricetracker/models"
)

// newTestDB opens a private in-memory sqlite database per test. A single
// connection is enforced so the shared-cache memory database is not
// recreated per pooled connection.
var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Party{},
		&models.PaddyType{},
		&models.Stock{},
		&models.Transaction{},
		&models.Damage{},
		&models.Milling{},
		&models.InitialStock{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeChain is a scripted chain.Client. Conf and Err apply to every call;
// Calls records what was submitted.
type fakeChain struct {
	mu    sync.Mutex
	Conf  *chain.Confirmation
	Err   error
	Calls []string
}

func (f *fakeChain) record(op string) (*chain.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, op)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Conf == nil {
		return nil, nil
	}
	c := *f.Conf
	return &c, nil
}

func (f *fakeChain) RegisterParty(ctx context.Context, in chain.RegisterPartyInput) (*chain.Confirmation, error) {
	return f.record("register")
}

func (f *fakeChain) SubmitTransfer(ctx context.Context, in chain.TransferInput) (*chain.Confirmation, error) {
	return f.record("transfer")
}

func (f *fakeChain) SubmitDamage(ctx context.Context, in chain.DamageInput) (*chain.Confirmation, error) {
	return f.record("damage")
}

func (f *fakeChain) SubmitMilling(ctx context.Context, in chain.MillingInput) (*chain.Confirmation, error) {
	return f.record("milling")
}

func (f *fakeChain) SubmitInitialStock(ctx context.Context, in chain.InitialStockInput) (*chain.Confirmation, error) {
	return f.record("initial stock")
}

func confirmation(recordID int64) *chain.Confirmation {
	return &chain.Confirmation{
		BlockHash:   "0xblock",
		BlockNumber: 42,
		TxHash:      "0xtx",
		RecordID:    &recordID,
	}
}

func newTestDeps(t *testing.T, ch chain.Client) *Deps {
	t.Helper()
	if ch == nil {
		ch = chain.Disabled{}
	}
	return New(newTestDB(t), ch, testLogger())
}

func seedParty(t *testing.T, db *gorm.DB, id string, role models.Role) *models.Party {
	t.Helper()
	p := &models.Party{
		ID:           id,
		Role:         role,
		FullName:     "Test " + id,
		District:     "Anuradhapura",
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed party %s: %v", id, err)
	}
	return p
}

func seedStock(t *testing.T, db *gorm.DB, partyID, paddyType string, kind models.StockKind, qty string) {
	t.Helper()
	err := db.Create(&models.Stock{
		PartyID:   partyID,
		PaddyType: paddyType,
		Kind:      kind,
		Quantity:  dec(qty),
	}).Error
	if err != nil {
		t.Fatalf("seed stock %s/%s: %v", partyID, paddyType, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balance(t *testing.T, db *gorm.DB, partyID, paddyType string, kind models.StockKind) decimal.Decimal {
	t.Helper()
	q, err := models.GetStockBalance(db, partyID, paddyType, kind)
	if err != nil {
		t.Fatalf("balance %s/%s: %v", partyID, paddyType, err)
	}
	return q
}

func wantBalance(t *testing.T, db *gorm.DB, partyID, paddyType string, kind models.StockKind, want string) {
	t.Helper()
	got := balance(t, db, partyID, paddyType, kind)
	if !got.Equal(dec(want)) {
		t.Errorf("balance of %s (%s %s) = %s, want %s", partyID, paddyType, kind, got, want)
	}
}
