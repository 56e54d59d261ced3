package models

import (
	"time"
)

// Vault key backends. The backend is chosen once when the vault is created
// and dispatched through the Custodian interface afterwards.
const (
	VaultBackendKeystore = "keystore"
	VaultBackendDatabase = "database"
)

// VaultConfig records which custodial signing account backs a project's
// pools and where its encrypted key material lives.
type VaultConfig struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	ProjectID    uint      `gorm:"not null;index" json:"project_id"`
	Address      string    `gorm:"size:100;uniqueIndex;not null" json:"address"`
	Backend      string    `gorm:"size:20;not null;default:'keystore'" json:"backend"`
	EncryptedKey string    `gorm:"size:512;default:''" json:"-"` // database backend only
	Version      int       `gorm:"default:1" json:"version"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (VaultConfig) TableName() string {
	return "vault_config"
}
