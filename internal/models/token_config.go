package models

import (
	"time"
)

type TokenConfig struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Mint        string    `gorm:"size:100;uniqueIndex;not null" json:"mint"`
	Symbol      string    `gorm:"size:16;not null" json:"symbol"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Decimals    int       `gorm:"not null" json:"decimals"`
	TotalSupply float64   `gorm:"default:0" json:"total_supply"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TokenConfig) TableName() string {
	return "token_info"
}
