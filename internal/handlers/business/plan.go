package business

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanTTL bounds how long a computed plan stays settleable. Availability
// keeps moving as time passes, so a stale plan must be recomputed.
const PlanTTL = 5 * time.Minute

// SettlementPlan is the signed contract between the compute and settle
// phases. The client carries it opaquely; the signature prevents tampering
// with amounts, fees or the distribution in between.
type SettlementPlan struct {
	ID              string              `json:"id"`
	HolderAddress   string              `json:"holder_address"`
	RequestedAmount decimal.Decimal     `json:"requested_amount"`
	TokenMint       string              `json:"token_mint"`
	TokenDecimals   int                 `json:"token_decimals"`
	Entries         []DistributionEntry `json:"entries"`
	Fee             FeeBreakdown        `json:"fee"`
	NoFee           bool                `json:"no_fee"`
	CreatedAt       time.Time           `json:"created_at"`
	Signature       string              `json:"signature"`
}

func planSecret() ([]byte, error) {
	secret := os.Getenv("CLAIM_PLAN_SECRET")
	if secret == "" {
		return nil, errors.New("CLAIM_PLAN_SECRET is not set")
	}
	return []byte(secret), nil
}

// payload is the canonical byte form covered by the signature.
func (p *SettlementPlan) payload() ([]byte, error) {
	clone := *p
	clone.Signature = ""
	return json.Marshal(&clone)
}

// Sign stamps the plan with an HMAC-SHA256 over its canonical form.
func (p *SettlementPlan) Sign() error {
	secret, err := planSecret()
	if err != nil {
		return err
	}
	body, err := p.payload()
	if err != nil {
		return err
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	p.Signature = hex.EncodeToString(mac.Sum(nil))
	return nil
}

// Verify recomputes the signature and compares in constant time.
func (p *SettlementPlan) Verify() error {
	secret, err := planSecret()
	if err != nil {
		return err
	}
	body, err := p.payload()
	if err != nil {
		return err
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(p.Signature)) {
		return ErrPlanInvalid
	}
	return nil
}

// Expired reports whether the plan has outlived its settle window.
func (p *SettlementPlan) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PlanTTL
}

func newPlanID() string {
	return uuid.New().String()
}
