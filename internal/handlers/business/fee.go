package business

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"vestingcontrol/internal/models"
	"vestingcontrol/pkg/config"
	solanaUtil "vestingcontrol/pkg/solana"
	"vestingcontrol/pkg/utils"
)

// defaultPlatformFeeLamports applies when no platform fee is configured
// anywhere. 0.001 SOL.
const defaultPlatformFeeLamports = 1_000_000

// ProjectFeeLeg is one pool's fixed claim fee, routed to that pool's fee vault.
type ProjectFeeLeg struct {
	PoolID   uint   `json:"pool_id"`
	Lamports uint64 `json:"lamports"`
	Vault    string `json:"vault"`
}

// FeeBreakdown is the additive fee a holder owes for one settlement: the
// platform fee plus one leg per involved pool that configures a project fee.
// The components are never merged; each leg is its own transfer so both
// sides can audit their income independently.
type FeeBreakdown struct {
	PlatformLamports uint64          `json:"platform_lamports"`
	PlatformVault    string          `json:"platform_vault"`
	ProjectFees      []ProjectFeeLeg `json:"project_fees"`
}

func (f FeeBreakdown) Total() uint64 {
	total := f.PlatformLamports
	for _, leg := range f.ProjectFees {
		total += leg.Lamports
	}
	return total
}

// Transfers expands the breakdown into individual native transfers.
func (f FeeBreakdown) Transfers() ([]solanaUtil.FeeTransfer, error) {
	var transfers []solanaUtil.FeeTransfer
	if f.PlatformLamports > 0 && f.PlatformVault != "" {
		destination, err := solana.PublicKeyFromBase58(f.PlatformVault)
		if err != nil {
			return nil, fmt.Errorf("invalid platform fee vault %s: %w", f.PlatformVault, err)
		}
		transfers = append(transfers, solanaUtil.FeeTransfer{
			Lamports:    f.PlatformLamports,
			Destination: destination,
		})
	}
	for _, leg := range f.ProjectFees {
		if leg.Lamports == 0 || leg.Vault == "" {
			continue
		}
		destination, err := solana.PublicKeyFromBase58(leg.Vault)
		if err != nil {
			return nil, fmt.Errorf("invalid project fee vault %s: %w", leg.Vault, err)
		}
		transfers = append(transfers, solanaUtil.FeeTransfer{
			Lamports:    leg.Lamports,
			Destination: destination,
		})
	}
	return transfers, nil
}

// ResolvePlatformFeeLamports determines the platform fee for one settlement.
// A USD-denominated fee param takes precedence and is converted through the
// price oracle; on oracle failure or when no USD fee is set, the static
// lamport amount applies.
func ResolvePlatformFeeLamports() uint64 {
	if usd, ok := activeParamFloat("platform_fee_usd"); ok && usd > 0 {
		lamports, err := utils.GetUSDQuoteInLamports(usd)
		if err == nil {
			return lamports
		}
		log.Warnf("> 汇率查询失败，回退到固定手续费: %v", err)
	}
	if lamports, ok := activeParamFloat("platform_fee_lamports"); ok && lamports > 0 {
		return uint64(lamports)
	}
	if env := os.Getenv("PLATFORM_FEE_LAMPORTS"); env != "" {
		if lamports, err := strconv.ParseUint(env, 10, 64); err == nil {
			return lamports
		}
	}
	return defaultPlatformFeeLamports
}

// activeParamFloat reads a numeric system param by name. Returns false when
// the row is missing, inactive, or not numeric.
func activeParamFloat(name string) (float64, bool) {
	var param models.SystemParams
	err := config.DB.Where("name = ? AND is_active = ?", name, true).First(&param).Error
	if err != nil {
		return 0, false
	}
	value, ok := param.ParamsConfig["value"].(float64)
	return value, ok
}

// BuildFeeBreakdown assembles the fee for a settlement touching the given
// pools. Pools without a configured project fee contribute no leg.
func BuildFeeBreakdown(platformLamports uint64, platformVault string, pools []*models.VestingPool) FeeBreakdown {
	if platformLamports > 0 && platformVault == "" {
		log.Warn("> 平台手续费已配置但缺少收款地址，本次不收取平台费")
		platformLamports = 0
	}
	breakdown := FeeBreakdown{
		PlatformLamports: platformLamports,
		PlatformVault:    platformVault,
	}
	seen := make(map[uint]bool)
	for _, pool := range pools {
		if pool == nil || seen[pool.ID] {
			continue
		}
		seen[pool.ID] = true
		if pool.ProjectFeeLamports > 0 && pool.ProjectFeeVault != "" {
			breakdown.ProjectFees = append(breakdown.ProjectFees, ProjectFeeLeg{
				PoolID:   pool.ID,
				Lamports: pool.ProjectFeeLamports,
				Vault:    pool.ProjectFeeVault,
			})
		}
	}
	return breakdown
}

/// CalculateFee resolves the full fee for a settlement: platform fee routed to
// the project's fee vault override or the global platform vault, plus each
// involved pool's project fee.
func CalculateFee(project *models.ProjectConfig, pools []*models.VestingPool) FeeBreakdown {
	platformVault := os.Getenv("PLATFORM_FEE_VAULT")
	if project != nil && project.FeeVault != "" {
		platformVault = project.FeeVault
	}
	return BuildFeeBreakdown(ResolvePlatformFeeLamports(), platformVault, pools)
}
