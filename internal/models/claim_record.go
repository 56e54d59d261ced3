package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimRecord is the append-only proof that part of a grant was paid out.
// The (grant_id, transfer_signature) pair is unique so that replaying a
// settlement can never record the same payout twice. ProjectID may be 0 on
// insert; the reconciliation pass backfills it via grant → pool → project.
type ClaimRecord struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	GrantID           uint            `gorm:"not null;index;uniqueIndex:idx_grant_transfer" json:"grant_id"`
	ProjectID         uint            `gorm:"default:0;index" json:"project_id"`
	HolderAddress     string          `gorm:"size:100;not null;index" json:"holder_address"`
	AmountClaimedBase uint64          `gorm:"not null" json:"amount_claimed_base"` // token base units
	AmountClaimed     decimal.Decimal `gorm:"type:numeric(38,9);not null" json:"amount_claimed"`
	FeePaidLamports   uint64          `gorm:"default:0" json:"fee_paid_lamports"`
	PlanID            string          `gorm:"size:64;index" json:"plan_id"`
	FeeSignature      string          `gorm:"size:100;index;default:''" json:"fee_signature"`
	TransferSignature string          `gorm:"size:100;not null;uniqueIndex:idx_grant_transfer" json:"transfer_signature"`
	ClaimedAt         time.Time       `json:"claimed_at" gorm:"autoCreateTime"`
}

func (ClaimRecord) TableName() string {
	return "claim_record"
}
