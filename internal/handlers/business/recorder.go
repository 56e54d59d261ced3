package business

import (
	"math/big"
	"time"

	"gorm.io/gorm/clause"

	"vestingcontrol/internal/models"
	"vestingcontrol/pkg/config"
	"vestingcontrol/pkg/utils"
)

// RecordClaims appends one ledger row per distribution entry after a
// confirmed transfer. Rows are keyed (grant_id, transfer_signature), so
// replaying the same settlement inserts nothing. Entries whose amount floors
// to zero base units were never transferred and are not recorded.
//
// The total fee is apportioned across entries by each grant's share of the
// settled base units; the last entry absorbs the rounding remainder so the
// per-row fees always sum to the fee actually paid.
func RecordClaims(plan *SettlementPlan, feeSignature, transferSignature string, claimedAt time.Time) error {
	type settledEntry struct {
		entry DistributionEntry
		base  uint64
	}

	var totalBase uint64
	settled := make([]settledEntry, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		base, err := utils.ToBaseUnits(entry.Amount, plan.TokenDecimals)
		if err != nil {
			return err
		}
		if base == 0 {
			continue
		}
		totalBase += base
		settled = append(settled, settledEntry{entry: entry, base: base})
	}
	if totalBase == 0 {
		return nil
	}

	totalFee := plan.Fee.Total()
	var feeAssigned uint64
	for i, s := range settled {
		share := apportionFee(totalFee, s.base, totalBase)
		if i == len(settled)-1 {
			share = totalFee - feeAssigned
		}
		feeAssigned += share

		record := models.ClaimRecord{
			GrantID:           s.entry.GrantID,
			ProjectID:         grantProjectID(s.entry.GrantID),
			HolderAddress:     plan.HolderAddress,
			AmountClaimedBase: s.base,
			AmountClaimed:     s.entry.Amount,
			FeePaidLamports:   share,
			PlanID:            plan.ID,
			FeeSignature:      feeSignature,
			TransferSignature: transferSignature,
			ClaimedAt:         claimedAt,
		}
		err := config.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// apportionFee returns floor(totalFee * base / totalBase) without overflowing
// on large base-unit amounts.
func apportionFee(totalFee, base, totalBase uint64) uint64 {
	if totalBase == 0 {
		return 0
	}
	product := new(big.Int).Mul(new(big.Int).SetUint64(totalFee), new(big.Int).SetUint64(base))
	product.Quo(product, new(big.Int).SetUint64(totalBase))
	return product.Uint64()
}

// grantProjectID resolves the project a grant belongs to. Zero when the
// grant row is gone; the reconciliation job backfills those records later.
func grantProjectID(grantID uint) uint {
	var grant models.VestingGrant
	if err := config.DB.Select("project_id").First(&grant, grantID).Error; err != nil {
		return 0
	}
	return grant.ProjectID
}
