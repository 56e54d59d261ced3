package models

import (
	"time"
)

type ProjectConfig struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Name          string    `gorm:"size:64;not null" json:"name"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	ClaimsEnabled bool      `gorm:"default:true" json:"claims_enabled"`
	FeeVault      string    `gorm:"size:100;default:''" json:"fee_vault"` // 平台手续费接收地址，为空时使用 PLATFORM_FEE_VAULT
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ProjectConfig) TableName() string {
	return "project_config"
}
