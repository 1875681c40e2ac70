package models

import "gorm.io/gorm"

// PaddyType is the catalogue of paddy varieties. The same names are reused
// for the milled rice class.
type PaddyType struct {
	gorm.Model
	Name string `json:"name" gorm:"size:60;unique"`
}
