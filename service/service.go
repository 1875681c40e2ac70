package service

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yohanvishvajith/paddyricetracker/models"
)

// Service answers the reporting queries. Reports read committed balances
// and records only; they never touch the chain gateway.
type Service interface {
	StockSummary() ([]StockSummaryRow, error)
	StockByType(paddyType string) ([]StockSummaryRow, error)
	StockByParty(partyID string) ([]models.Stock, error)
	RiceDistribution() ([]DistrictRow, error)
	UnlinkedRecords() (*ReconciliationReport, error)
}

type StockSummaryRow struct {
	PaddyType string           `json:"paddy_type"`
	Kind      models.StockKind `json:"kind"`
	Total     decimal.Decimal  `json:"total"`
	Parties   int64            `json:"parties"`
}

type DistrictRow struct {
	District string          `json:"district"`
	Total    decimal.Decimal `json:"total"`
}

// ReconciliationReport lists every local record the chain never
// confirmed. A non-zero total means the two ledgers have drifted.
type ReconciliationReport struct {
	Transactions  []models.Transaction  `json:"transactions"`
	Damages       []models.Damage       `json:"damages"`
	Millings      []models.Milling      `json:"millings"`
	InitialStocks []models.InitialStock `json:"initial_stocks"`
	TotalUnlinked int                   `json:"total_unlinked"`
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &service{db: db}
}

func (s *service) StockSummary() ([]StockSummaryRow, error) {
	var rows []StockSummaryRow
	err := s.db.Model(&models.Stock{}).
		Select("paddy_type, kind, SUM(quantity) AS total, COUNT(DISTINCT party_id) AS parties").
		Group("paddy_type").Group("kind").
		Order("kind, paddy_type").
		Scan(&rows).Error
	return rows, err
}

func (s *service) StockByType(paddyType string) ([]StockSummaryRow, error) {
	var rows []StockSummaryRow
	err := s.db.Model(&models.Stock{}).
		Select("paddy_type, kind, SUM(quantity) AS total, COUNT(DISTINCT party_id) AS parties").
		Where("paddy_type = ?", paddyType).
		Group("paddy_type").Group("kind").
		Order("kind").
		Scan(&rows).Error
	return rows, err
}

func (s *service) StockByParty(partyID string) ([]models.Stock, error) {
	var rows []models.Stock
	err := s.db.Where("party_id = ?", partyID).
		Order("kind, paddy_type").
		Find(&rows).Error
	return rows, err
}

// RiceDistribution totals rice holdings per district, joining stocks to
// their owning parties.
func (s *service) RiceDistribution() ([]DistrictRow, error) {
	var rows []DistrictRow
	err := s.db.Model(&models.Stock{}).
		Select("parties.district AS district, SUM(stocks.quantity) AS total").
		Joins("JOIN parties ON parties.id = stocks.party_id").
		Where("stocks.kind = ?", models.KindRice).
		Group("parties.district").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

func (s *service) UnlinkedRecords() (*ReconciliationReport, error) {
	rep := &ReconciliationReport{}

	if err := s.db.Where("tx_hash IS NULL").Order("id").Find(&rep.Transactions).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("tx_hash IS NULL").Order("id").Find(&rep.Damages).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("tx_hash IS NULL").Order("id").Find(&rep.Millings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("tx_hash IS NULL").Order("id").Find(&rep.InitialStocks).Error; err != nil {
		return nil, err
	}
	rep.TotalUnlinked = len(rep.Transactions) + len(rep.Damages) + len(rep.Millings) + len(rep.InitialStocks)
	return rep, nil
}
