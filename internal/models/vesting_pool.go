package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pool status values. Only Status may change once grants exist against a pool;
// the schedule fields are treated as immutable by the handlers.
const (
	PoolStatusActive    = "active"
	PoolStatusPaused    = "paused"
	PoolStatusCancelled = "cancelled"
)

type VestingPool struct {
	ID                  uint            `gorm:"primarykey" json:"id"`
	ProjectID           uint            `gorm:"not null;index" json:"project_id"`
	TokenID             uint            `gorm:"not null" json:"token_id"`
	VaultAddress        string          `gorm:"size:100;not null" json:"vault_address"` // 托管资金账户地址
	TotalPoolAmount     decimal.Decimal `gorm:"type:numeric(38,9);default:0" json:"total_pool_amount"`
	StartTime           time.Time       `gorm:"not null" json:"start_time"`
	CliffDurationSecs   int64           `gorm:"not null;default:0" json:"cliff_duration_secs"`
	VestingDurationSecs int64           `gorm:"not null;default:0" json:"vesting_duration_secs"`
	EndTime             time.Time       `gorm:"not null" json:"end_time"`
	Status              string          `gorm:"size:20;not null;default:'active'" json:"status"`
	ProjectFeeLamports  uint64          `gorm:"default:0" json:"project_fee_lamports"`
	ProjectFeeVault     string          `gorm:"size:100;default:''" json:"project_fee_vault"`
	CreatedAt           time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	Token               *TokenConfig    `gorm:"foreignKey:TokenID" json:"token,omitempty"`
}

func (VestingPool) TableName() string {
	return "vesting_pool"
}

// CliffTime 返回锁仓悬崖时间点（start_time + cliff_duration）
func (p *VestingPool) CliffTime() time.Time {
	return p.StartTime.Add(time.Duration(p.CliffDurationSecs) * time.Second)
}

// VestingEnd 返回线性释放结束时间，EndTime 未配置时按 cliff + vesting_duration 推导
func (p *VestingPool) VestingEnd() time.Time {
	if !p.EndTime.IsZero() {
		return p.EndTime
	}
	return p.CliffTime().Add(time.Duration(p.VestingDurationSecs) * time.Second)
}
