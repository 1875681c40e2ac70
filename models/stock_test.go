package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:mdl_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Stock{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGetStockBalanceMissingRowIsZero(t *testing.T) {
	db := newTestDB(t)
	q, err := GetStockBalance(db, "COL1", "Samba", KindPaddy)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !q.IsZero() {
		t.Errorf("balance = %s, want 0", q)
	}
}

func TestCreditStockCreatesThenAccumulates(t *testing.T) {
	db := newTestDB(t)
	if err := CreditStock(db, "COL1", "Samba", KindPaddy, dec("100.5")); err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if err := CreditStock(db, "COL1", "Samba", KindPaddy, dec("0.25")); err != nil {
		t.Fatalf("second credit: %v", err)
	}
	q, _ := GetStockBalance(db, "COL1", "Samba", KindPaddy)
	if !q.Equal(dec("100.75")) {
		t.Errorf("balance = %s, want 100.75", q)
	}

	// one row, not two
	var n int64
	db.Model(&Stock{}).Count(&n)
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestDebitStockRejectsOverdraw(t *testing.T) {
	db := newTestDB(t)
	if err := CreditStock(db, "COL1", "Samba", KindPaddy, dec("10")); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := DebitStock(db, "COL1", "Samba", KindPaddy, dec("10.001")); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	q, _ := GetStockBalance(db, "COL1", "Samba", KindPaddy)
	if !q.Equal(dec("10")) {
		t.Errorf("balance changed by a rejected debit: %s", q)
	}

	// draining to exactly zero is allowed
	if err := DebitStock(db, "COL1", "Samba", KindPaddy, dec("10")); err != nil {
		t.Fatalf("debit to zero: %v", err)
	}
	q, _ = GetStockBalance(db, "COL1", "Samba", KindPaddy)
	if !q.IsZero() {
		t.Errorf("balance = %s, want 0", q)
	}
}

func TestDebitStockMissingRowFails(t *testing.T) {
	db := newTestDB(t)
	if err := DebitStock(db, "COL1", "Samba", KindPaddy, dec("1")); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestStockRowsAreSeparatePerKind(t *testing.T) {
	db := newTestDB(t)
	if err := CreditStock(db, "MIL1", "Samba", KindPaddy, dec("100")); err != nil {
		t.Fatalf("credit paddy: %v", err)
	}
	if err := CreditStock(db, "MIL1", "Samba", KindRice, dec("70")); err != nil {
		t.Fatalf("credit rice: %v", err)
	}

	paddy, _ := GetStockBalance(db, "MIL1", "Samba", KindPaddy)
	rice, _ := GetStockBalance(db, "MIL1", "Samba", KindRice)
	if !paddy.Equal(dec("100")) || !rice.Equal(dec("70")) {
		t.Errorf("paddy = %s, rice = %s", paddy, rice)
	}
}

func TestParseStockKind(t *testing.T) {
	if _, err := ParseStockKind("paddy"); err != nil {
		t.Errorf("paddy rejected: %v", err)
	}
	if _, err := ParseStockKind("rice"); err != nil {
		t.Errorf("rice rejected: %v", err)
	}
	if _, err := ParseStockKind("wheat"); err == nil {
		t.Error("wheat accepted")
	}
}

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role    Role
		tracks  bool
		class   StockKind
		onChain bool
	}{
		{RoleFarmer, false, KindPaddy, true},
		{RoleCollector, true, KindPaddy, true},
		{RoleMiller, true, KindRice, true},
		{RoleWholesaler, true, KindRice, true},
		{RolePMB, false, KindRice, true},
		{RoleAdmin, false, "", false},
		{RoleInspector, false, "", false},
	}
	for _, tc := range cases {
		caps := tc.role.Caps()
		if caps.TracksInventory != tc.tracks {
			t.Errorf("%s: TracksInventory = %v, want %v", tc.role, caps.TracksInventory, tc.tracks)
		}
		if caps.Class != tc.class {
			t.Errorf("%s: Class = %q, want %q", tc.role, caps.Class, tc.class)
		}
		if tc.role.ChainRole() != tc.onChain {
			t.Errorf("%s: ChainRole = %v, want %v", tc.role, tc.role.ChainRole(), tc.onChain)
		}
	}

	if _, err := ParseRole("Janitor"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("ParseRole(Janitor) err = %v, want ErrUnknownRole", err)
	}
}
