package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/yohanvishvajith/paddyricetracker/models"
)

// SeedPaddyTypes inserts the known paddy varieties once.
func SeedPaddyTypes() {
	names := []string{"Samba", "Nadu", "Keeri Samba", "Red Nadu", "Suwandel"}
	for _, n := range names {
		var cnt int64
		DB.Model(&models.PaddyType{}).Where("name = ?", n).Count(&cnt)
		if cnt == 0 {
			DB.Create(&models.PaddyType{Name: n})
		}
	}
}

// SeedParties creates the fixed accounts: the PMB singleton plus the admin
// and inspector console users. Passwords come from env, with dev defaults.
func SeedParties() {
	seed := []struct {
		id       string
		role     models.Role
		fullName string
		pwEnv    string
		pwDflt   string
	}{
		{"PMB", models.RolePMB, "Paddy Marketing Board", "PMB_PASSWORD", "123456"},
		{"admin", models.RoleAdmin, "Administrator", "ADMIN_PASSWORD", "admin"},
		{"inspector", models.RoleInspector, "Inspector", "INSPECTOR_PASSWORD", "123456"},
	}

	for _, s := range seed {
		var cnt int64
		DB.Model(&models.Party{}).Where("id = ?", s.id).Count(&cnt)
		if cnt > 0 {
			continue
		}
		pw := os.Getenv(s.pwEnv)
		if pw == "" {
			pw = s.pwDflt
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("seed: failed to hash password for %s: %v", s.id, err)
			continue
		}
		DB.Create(&models.Party{
			ID:           s.id,
			Role:         s.role,
			FullName:     s.fullName,
			PasswordHash: string(hash),
			IsActive:     true,
		})
	}
}
