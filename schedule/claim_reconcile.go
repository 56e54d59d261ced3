package schedule

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vestingcontrol/internal/models"
)

// ReconcileClaimRecords backfills the project linkage on claim records that
// were written without one, walking grant → pool → project. Records whose
// grant row disappeared are left for manual review. Returns how many rows
// were fixed.
func ReconcileClaimRecords(db *gorm.DB) (int, error) {
	var records []models.ClaimRecord
	err := db.Where("project_id = 0").Limit(500).Find(&records).Error
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	fixed := 0
	for i := range records {
		record := &records[i]

		projectID, err := projectForGrant(db, record.GrantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warnf("> 领取记录 %d 对应的 grant %d 已不存在，跳过", record.ID, record.GrantID)
				continue
			}
			return fixed, err
		}
		if projectID == 0 {
			continue
		}

		err = db.Model(record).Update("project_id", projectID).Error
		if err != nil {
			return fixed, err
		}
		fixed++
	}

	if fixed > 0 {
		log.Infof("> 对账任务回填 project_id 完成: %d 条", fixed)
	}
	return fixed, nil
}

// projectForGrant resolves a grant's project, falling back to the pool's
// project when the grant row predates the project column.
func projectForGrant(db *gorm.DB, grantID uint) (uint, error) {
	var grant models.VestingGrant
	if err := db.Select("project_id, pool_id").First(&grant, grantID).Error; err != nil {
		return 0, err
	}
	if grant.ProjectID != 0 {
		return grant.ProjectID, nil
	}

	var pool models.VestingPool
	if err := db.Select("project_id").First(&pool, grant.PoolID).Error; err != nil {
		return 0, err
	}
	return pool.ProjectID, nil
}
