// utils/party_code.go
package utils

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// NextPartyID returns the next role-prefixed id (FAR6, COL3, ...) by
// scanning the highest numeric suffix already issued for the prefix.
func NextPartyID(db *gorm.DB, prefix string, role string) (string, error) {
	var ids []string
	if err := db.Table("parties").Where("role = ?", role).Pluck("id", &ids).Error; err != nil {
		return "", err
	}

	max := 0
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(id[len(prefix):])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", prefix, max+1), nil
}
