package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VestingGrant is a holder's allocation inside one pool. Grants are never
// deleted while claim records reference them; IsActive/IsCancelled are the
// only mutable fields. CreatedAt defines the FIFO claim order across a
// holder's grants.
type VestingGrant struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	PoolID          uint            `gorm:"not null;index" json:"pool_id"`
	ProjectID       uint            `gorm:"not null;index" json:"project_id"`
	HolderAddress   string          `gorm:"size:100;not null;index" json:"holder_address"`
	TotalAllocation decimal.Decimal `gorm:"type:numeric(38,9);not null" json:"total_allocation"`
	SharePercentage float64         `gorm:"default:0" json:"share_percentage"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	IsCancelled     bool            `gorm:"default:false" json:"is_cancelled"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	Pool            *VestingPool    `gorm:"foreignKey:PoolID" json:"pool,omitempty"`
}

func (VestingGrant) TableName() string {
	return "vesting_grant"
}
