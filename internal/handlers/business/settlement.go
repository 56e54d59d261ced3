package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vestingcontrol/internal/models"
	"vestingcontrol/pkg/config"
	solanaUtil "vestingcontrol/pkg/solana"
	"vestingcontrol/pkg/utils"
)

const transferConfirmTimeout = 60 * time.Second

// ComputeResult is the phase-1 output: a signed plan plus the unsigned fee
// transaction the holder must pay before settling. FeeTransaction is empty
// on the no-fee path.
type ComputeResult struct {
	Plan           *SettlementPlan `json:"plan"`
	FeeTransaction string          `json:"fee_transaction,omitempty"`
	TotalAvailable decimal.Decimal `json:"total_available"`
}

// ComputeClaim runs phase 1 of a settlement: validates eligibility, splits
// the requested amount across the holder's grants oldest-first, prices the
// fee, and returns a signed plan. Nothing is mutated; the plan only becomes
// effective once settled within its TTL.
//
// A nil requested amount means "claim everything available".
func ComputeClaim(ctx context.Context, client *rpc.Client, holder string, requested *decimal.Decimal, tokenMint string) (*ComputeResult, error) {
	holderKey, err := solana.PublicKeyFromBase58(holder)
	if err != nil {
		return nil, fmt.Errorf("%w: holder address 不合法", ErrInvalidRequest)
	}
	if !claimsEnabled() {
		return nil, ErrClaimsDisabled
	}

	now := time.Now().UTC()

	// 1. 加载符合条件的 grants 并计算可用额度
	avails, err := LoadEligibleGrants(holder, tokenMint, now)
	if err != nil {
		return nil, err
	}
	avails, err = filterClaimableProjects(avails)
	if err != nil {
		return nil, err
	}
	if len(avails) == 0 {
		return nil, ErrNoEligibleGrants
	}

	// 2. 单次结算只允许一种代币
	mint := tokenMint
	for _, a := range avails {
		if a.Pool.Token == nil {
			return nil, fmt.Errorf("pool %d has no token config", a.Pool.ID)
		}
		if mint == "" {
			mint = a.Pool.Token.Mint
		} else if a.Pool.Token.Mint != mint {
			return nil, fmt.Errorf("%w: 持有多种代币的份额，请指定 token_mint", ErrInvalidRequest)
		}
	}

	total := TotalAvailable(avails)
	if !total.IsPositive() {
		return nil, ErrNoEligibleGrants
	}

	// 3. 按 FIFO 拆分领取金额
	amount := total
	if requested != nil {
		amount = *requested
	}
	entries, err := BuildDistribution(avails, amount)
	if err != nil {
		return nil, err
	}

	tokenInfo, err := solanaUtil.ResolveTokenInfo(ctx, config.DB, client, mint)
	if err != nil {
		return nil, err
	}

	// 4. 计算平台费 + 项目费
	project, pools := planParticipants(avails, entries)
	fee := CalculateFee(project, pools)

	plan := &SettlementPlan{
		ID:              newPlanID(),
		HolderAddress:   holder,
		RequestedAmount: amount,
		TokenMint:       mint,
		TokenDecimals:   tokenInfo.Decimals,
		Entries:         entries,
		Fee:             fee,
		NoFee:           fee.Total() == 0,
		CreatedAt:       now,
	}
	if err := plan.Sign(); err != nil {
		return nil, err
	}

	result := &ComputeResult{
		Plan:           plan,
		TotalAvailable: total,
	}

	// 5. 构造待签名的手续费交易（无费路径直接跳过）
	if !plan.NoFee {
		transfers, err := fee.Transfers()
		if err != nil {
			return nil, err
		}
		feeTx, err := solanaUtil.BuildFeeTransaction(ctx, client, holderKey, transfers)
		if err != nil {
			return nil, err
		}
		result.FeeTransaction = feeTx
	}

	writeAuditLog("INFO", "claim plan computed", models.JSONMap{
		"plan_id":         plan.ID,
		"holder_address":  holder,
		"token_mint":      mint,
		"requested":       amount.String(),
		"total_available": total.String(),
		"fee_lamports":    fee.Total(),
		"grants":          len(entries),
	})
	return result, nil
}

// SettleClaim runs phase 2: verifies the plan and the holder's fee payment,
// re-checks availability under the holder lock, moves tokens out of the
// vaults in one atomic transaction, and records the claim. Re-submitting
// with an already-settled fee signature (or plan id on the no-fee path)
// returns the original transfer signature instead of paying out again.
func SettleClaim(ctx context.Context, client *rpc.Client, plan *SettlementPlan, feeSignature string) (string, error) {
	if plan == nil {
		return "", ErrInvalidRequest
	}
	if err := plan.Verify(); err != nil {
		return "", err
	}
	if plan.Expired(time.Now().UTC()) {
		return "", ErrPlanExpired
	}
	if !plan.NoFee && feeSignature == "" {
		return "", fmt.Errorf("%w: 缺少手续费交易签名", ErrInvalidRequest)
	}

	unlock := lockHolder(plan.HolderAddress)
	defer unlock()

	// 1. 幂等检查：同一笔手续费只结算一次
	if existing, err := settledTransferFor(plan, feeSignature); err != nil {
		return "", err
	} else if existing != "" {
		log.Infof("> 重复结算请求，返回原转账签名: plan=%s transfer=%s", plan.ID, existing)
		return existing, nil
	}

	// 2. 确认手续费已上链
	if !plan.NoFee {
		if err := verifyFeePayment(ctx, client, feeSignature); err != nil {
			return "", err
		}
	}

	// 3. 用当前可用额度复核结算计划，防止计划过期窗口内的双花
	now := time.Now().UTC()
	avails, err := LoadEligibleGrants(plan.HolderAddress, plan.TokenMint, now)
	if err != nil {
		return "", err
	}
	availByGrant := make(map[uint]GrantAvailability, len(avails))
	for _, a := range avails {
		availByGrant[a.Grant.ID] = a
	}
	for _, entry := range plan.Entries {
		current, ok := availByGrant[entry.GrantID]
		if !ok {
			return "", fmt.Errorf("%w: grant %d 不再可领取", ErrPlanInvalid, entry.GrantID)
		}
		if entry.Amount.GreaterThan(current.Available) {
			return "", fmt.Errorf("%w: grant %d 可用额度不足", ErrPlanInvalid, entry.GrantID)
		}
	}

	// 4. 按 pool 聚合为转账腿，精确换算到最小单位
	legs, err := buildTransferLegs(plan, availByGrant)
	if err != nil {
		return "", err
	}
	if len(legs) == 0 {
		return "", fmt.Errorf("%w: 结算金额换算后为零", ErrInvalidRequest)
	}

	mintKey, err := solana.PublicKeyFromBase58(plan.TokenMint)
	if err != nil {
		return "", fmt.Errorf("%w: token mint 不合法", ErrPlanInvalid)
	}
	claimant, err := solana.PublicKeyFromBase58(plan.HolderAddress)
	if err != nil {
		return "", fmt.Errorf("%w: holder address 不合法", ErrPlanInvalid)
	}

	// 5. 提交原子转账
	sig, err := solanaUtil.BuildAndSubmitTransfer(ctx, client, mintKey, claimant, legs)
	if err != nil {
		publishAlert("transfer submit failed after fee confirmation", models.JSONMap{
			"plan_id":        plan.ID,
			"holder_address": plan.HolderAddress,
			"fee_signature":  feeSignature,
			"error":          err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := solanaUtil.WaitForConfirmation(ctx, client, sig, transferConfirmTimeout); err != nil {
		publishAlert("transfer not confirmed after fee confirmation", models.JSONMap{
			"plan_id":            plan.ID,
			"holder_address":     plan.HolderAddress,
			"fee_signature":      feeSignature,
			"transfer_signature": sig.String(),
			"error":              err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	// 6. 落账。转账已确认，记录失败只告警，不回滚结算结果
	if err := RecordClaims(plan, feeSignature, sig.String(), now); err != nil {
		log.Errorf("> 领取记录写入失败: plan=%s err=%v", plan.ID, err)
		publishAlert("claim record write failed after transfer", models.JSONMap{
			"plan_id":            plan.ID,
			"holder_address":     plan.HolderAddress,
			"transfer_signature": sig.String(),
			"error":              err.Error(),
		})
	}

	notifySettled(plan, feeSignature, sig.String())
	return sig.String(), nil
}

// claimsEnabled reads the global claim switch. A missing row means enabled.
func claimsEnabled() bool {
	var param models.SystemParams
	err := config.DB.Where("name = ?", "claims_enabled").First(&param).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	if err != nil {
		log.Errorf("> 读取 claims_enabled 失败: %v", err)
		return false
	}
	return param.IsActive
}

// filterClaimableProjects drops grants whose project has claims switched
// off. Returns ErrClaimsDisabled when the filter removes everything.
func filterClaimableProjects(avails []GrantAvailability) ([]GrantAvailability, error) {
	if len(avails) == 0 {
		return avails, nil
	}
	enabled := make(map[uint]bool)
	kept := make([]GrantAvailability, 0, len(avails))
	for _, a := range avails {
		projectID := a.Grant.ProjectID
		allowed, seen := enabled[projectID]
		if !seen {
			var project models.ProjectConfig
			err := config.DB.First(&project, projectID).Error
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, err
				}
				allowed = false
			} else {
				allowed = project.IsActive && project.ClaimsEnabled
			}
			enabled[projectID] = allowed
		}
		if allowed {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return nil, ErrClaimsDisabled
	}
	return kept, nil
}

// ClaimableGrants returns what a holder could actually settle right now:
// eligible grants with the project-level claim switches applied. A holder
// whose projects are all switched off gets an empty slice, not an error,
// so read-side callers show zero availability.
func ClaimableGrants(holder, tokenMint string, now time.Time) ([]GrantAvailability, error) {
	avails, err := LoadEligibleGrants(holder, tokenMint, now)
	if err != nil {
		return nil, err
	}
	kept, err := filterClaimableProjects(avails)
	if errors.Is(err, ErrClaimsDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return kept, nil
}

// planParticipants resolves the fee-relevant project and the distinct pools
// the distribution touches.
func planParticipants(avails []GrantAvailability, entries []DistributionEntry) (*models.ProjectConfig, []*models.VestingPool) {
	poolByID := make(map[uint]*models.VestingPool, len(avails))
	grantProject := make(map[uint]uint, len(avails))
	for _, a := range avails {
		poolByID[a.Pool.ID] = a.Pool
		grantProject[a.Grant.ID] = a.Grant.ProjectID
	}

	var project *models.ProjectConfig
	var pools []*models.VestingPool
	seen := make(map[uint]bool)
	for _, entry := range entries {
		if pool, ok := poolByID[entry.PoolID]; ok && !seen[entry.PoolID] {
			seen[entry.PoolID] = true
			pools = append(pools, pool)
		}
		if project == nil {
			var p models.ProjectConfig
			if err := config.DB.First(&p, grantProject[entry.GrantID]).Error; err == nil {
				project = &p
			}
		}
	}
	return project, pools
}

// settledTransferFor looks up a prior settlement of the same fee payment.
// No-fee plans are keyed by plan id instead.
func settledTransferFor(plan *SettlementPlan, feeSignature string) (string, error) {
	query := config.DB.Model(&models.ClaimRecord{})
	if plan.NoFee {
		query = query.Where("plan_id = ?", plan.ID)
	} else {
		query = query.Where("fee_signature = ?", feeSignature)
	}
	var record models.ClaimRecord
	err := query.First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return record.TransferSignature, nil
}

// verifyFeePayment polls the fee signature until it reaches confirmed or
// finalized. A transaction that executed and errored is FeeFailed; one that
// never lands within the poll budget is FeeNotConfirmed.
func verifyFeePayment(ctx context.Context, client *rpc.Client, feeSignature string) error {
	sig, err := solana.SignatureFromBase58(feeSignature)
	if err != nil {
		return fmt.Errorf("%w: 手续费签名不合法", ErrInvalidRequest)
	}
	if err := solanaUtil.PollSignatureStatus(ctx, client, sig); err != nil {
		if errors.Is(err, solanaUtil.ErrTransactionFailed) {
			return fmt.Errorf("%w: %v", ErrFeeFailed, err)
		}
		return fmt.Errorf("%w: %v", ErrFeeNotConfirmed, err)
	}
	return nil
}

// settledBaseByPool floors each entry to base units individually and sums
// the integers per pool. This is the same conversion RecordClaims applies,
// so the transferred and recorded base units are identical by construction.
func settledBaseByPool(entries []DistributionEntry, decimals int) (map[uint]uint64, []uint, error) {
	poolBase := make(map[uint]uint64)
	poolOrder := make([]uint, 0)
	for _, entry := range entries {
		base, err := utils.ToBaseUnits(entry.Amount, decimals)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := poolBase[entry.PoolID]; !ok {
			poolOrder = append(poolOrder, entry.PoolID)
		}
		poolBase[entry.PoolID] += base
	}
	return poolBase, poolOrder, nil
}

// buildTransferLegs groups plan entries by pool. Pools whose entries all
// floor to zero base units are dropped; they are never recorded either.
func buildTransferLegs(plan *SettlementPlan, availByGrant map[uint]GrantAvailability) ([]solanaUtil.TransferLeg, error) {
	poolBase, poolOrder, err := settledBaseByPool(plan.Entries, plan.TokenDecimals)
	if err != nil {
		return nil, err
	}

	legs := make([]solanaUtil.TransferLeg, 0, len(poolOrder))
	for _, poolID := range poolOrder {
		amountBase := poolBase[poolID]
		if amountBase == 0 {
			continue
		}

		var pool *models.VestingPool
		for _, a := range availByGrant {
			if a.Pool.ID == poolID {
				pool = a.Pool
				break
			}
		}
		if pool == nil {
			return nil, fmt.Errorf("%w: pool %d 不再可用", ErrPlanInvalid, poolID)
		}

		var vault models.VaultConfig
		if err := config.DB.Where("address = ?", pool.VaultAddress).First(&vault).Error; err != nil {
			return nil, fmt.Errorf("vault config for pool %d not found: %w", poolID, err)
		}
		custodian, err := solanaUtil.CustodianForVault(&vault)
		if err != nil {
			return nil, err
		}
		signer, err := custodian.Signer()
		if err != nil {
			return nil, err
		}
		legs = append(legs, solanaUtil.TransferLeg{
			Vault:  custodian.Address(),
			Signer: signer,
			Amount: amountBase,
		})
	}
	return legs, nil
}

// writeAuditLog appends a system log row. Best effort.
func writeAuditLog(level, message string, meta models.JSONMap) {
	entry := models.SystemLog{
		Level:   level,
		Message: message,
		Module:  "settlement",
		Meta:    meta,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		log.Errorf("> 写入系统日志失败: %v", err)
	}
}

// publishAlert records a failure that needs operator attention and pushes it
// onto the alert queue when the broker is up.
func publishAlert(message string, meta models.JSONMap) {
	writeAuditLog("ERROR", message, meta)
	if config.RabbitMQ == nil {
		return
	}
	publisher, err := config.NewPublisher()
	if err != nil {
		log.Errorf("> 告警发布器创建失败: %v", err)
		return
	}
	defer publisher.Close()
	payload := map[string]interface{}{"message": message, "meta": meta}
	if err := publisher.Publish(config.QueueSettlementAlerts, payload); err != nil {
		log.Errorf("> 告警消息发送失败: %v", err)
	}
}

// notifySettled pushes the settlement result onto the claim.settled queue.
func notifySettled(plan *SettlementPlan, feeSignature, transferSignature string) {
	if config.RabbitMQ == nil {
		return
	}
	publisher, err := config.NewPublisher()
	if err != nil {
		log.Errorf("> 结算消息发布器创建失败: %v", err)
		return
	}
	defer publisher.Close()
	payload := map[string]interface{}{
		"plan_id":            plan.ID,
		"holder_address":     plan.HolderAddress,
		"token_mint":         plan.TokenMint,
		"amount":             plan.RequestedAmount.String(),
		"fee_lamports":       plan.Fee.Total(),
		"fee_signature":      feeSignature,
		"transfer_signature": transferSignature,
	}
	if err := publisher.Publish(config.QueueClaimSettled, payload); err != nil {
		log.Errorf("> 结算消息发送失败: %v", err)
	}
}
