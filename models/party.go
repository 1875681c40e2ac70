package models

import (
	"fmt"
	"time"
)

// Role is the closed set of party roles in the chain. The capability table
// below replaces the substring checks ("contains 'miller'") the old system
// scattered across handlers.
type Role string

const (
	RoleFarmer     Role = "Farmer"
	RoleCollector  Role = "Collector"
	RoleMiller     Role = "Miller"
	RoleWholesaler Role = "Wholesaler"
	RoleRetailer   Role = "Retailer"
	RoleBrewer     Role = "Brewer"
	RoleAnimalFeed Role = "AnimalFeed"
	RoleExporter   Role = "Exporter"
	RolePMB        Role = "PMB"
	RoleAdmin      Role = "Admin"
	RoleInspector  Role = "Inspector"
)

type RoleCapability struct {
	// TracksInventory is false for roles that act as an unlimited
	// source/sink (Farmer, PMB) and for console-only roles.
	TracksInventory bool
	// Class is the stock class this role moves when it is the sender of a
	// transfer, and the default class for its damage records.
	Class StockKind
	// IDPrefix seeds generated party ids (FAR1, COL2, ...). Empty for
	// console-only roles, which are seeded, not onboarded.
	IDPrefix string
}

var roleCaps = map[Role]RoleCapability{
	RoleFarmer:     {TracksInventory: false, Class: KindPaddy, IDPrefix: "FAR"},
	RoleCollector:  {TracksInventory: true, Class: KindPaddy, IDPrefix: "COL"},
	RoleMiller:     {TracksInventory: true, Class: KindRice, IDPrefix: "MIL"},
	RoleWholesaler: {TracksInventory: true, Class: KindRice, IDPrefix: "WHO"},
	RoleRetailer:   {TracksInventory: true, Class: KindRice, IDPrefix: "RET"},
	RoleBrewer:     {TracksInventory: true, Class: KindRice, IDPrefix: "BER"},
	RoleAnimalFeed: {TracksInventory: true, Class: KindRice, IDPrefix: "ANI"},
	RoleExporter:   {TracksInventory: true, Class: KindRice, IDPrefix: "EXP"},
	RolePMB:        {TracksInventory: false, Class: KindRice, IDPrefix: "PMB"},
	RoleAdmin:      {},
	RoleInspector:  {},
}

func (r Role) Valid() bool {
	_, ok := roleCaps[r]
	return ok
}

func (r Role) Caps() RoleCapability {
	return roleCaps[r]
}

// ChainRole reports whether the role takes part in the supply chain (as
// opposed to the console-only Admin/Inspector roles).
func (r Role) ChainRole() bool {
	return roleCaps[r].IDPrefix != ""
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Party is a registered participant. Ids are role-prefixed codes (FAR3,
// MIL1, the PMB singleton). Parties are never deleted; attribute changes
// are plain updates.
type Party struct {
	ID             string `gorm:"primaryKey;size:20" json:"id"`
	Role           Role   `gorm:"size:30;index;not null" json:"role"`
	NIC            string `gorm:"size:20" json:"nic"`
	FullName       string `gorm:"size:180" json:"full_name"`
	CompanyRegNo   string `gorm:"size:60" json:"company_register_number"`
	CompanyName    string `gorm:"size:180" json:"company_name"`
	Address        string `gorm:"size:255" json:"address"`
	District       string `gorm:"size:80;index" json:"district"`
	ContactNumber  string `gorm:"size:30" json:"contact_number"`
	TotalPaddyArea int64  `json:"total_paddy_area"` // acres, farmers only
	PasswordHash   string `gorm:"size:255" json:"-"`
	ChainRef
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
