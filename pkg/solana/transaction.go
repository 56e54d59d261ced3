package solana

import (
	"context"
	"fmt"
	"time"

	"vestingcontrol/pkg/utils"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// FeeTransfer is one fee routing leg: lamports to a single destination.
// Platform and project fees stay separate legs so apportionment is auditable
// per destination.
type FeeTransfer struct {
	Lamports    uint64
	Destination solana.PublicKey
}

// BuildFeeTransaction builds the phase-1 fee-only transaction. The holder is
// the sole signer and sole fee payer; the transaction contains nothing but
// the fee transfer instructions. Returned base64-encoded and unsigned for
// the holder's wallet to sign.
func BuildFeeTransaction(ctx context.Context, client *rpc.Client, holder solana.PublicKey, transfers []FeeTransfer) (string, error) {
	if len(transfers) == 0 {
		return "", fmt.Errorf("no fee transfers to build")
	}

	instructions := make([]solana.Instruction, 0, len(transfers))
	for _, t := range transfers {
		if t.Lamports == 0 {
			continue
		}
		ix := system.NewTransferInstruction(t.Lamports, holder, t.Destination).Build()
		instructions = append(instructions, ix)
	}
	if len(instructions) == 0 {
		return "", fmt.Errorf("all fee transfers are zero")
	}

	bh, err := GetRecentBlockhash(ctx, client)
	if err != nil {
		return "", err
	}

	tx, err := solana.NewTransaction(instructions, bh, solana.TransactionPayer(holder))
	if err != nil {
		return "", fmt.Errorf("failed to build fee transaction: %w", err)
	}

	return tx.ToBase64()
}

// TransferLeg is one custodial payout within the settlement transaction:
// base units moved from a vault's token account to the claimant.
type TransferLeg struct {
	Vault  solana.PublicKey
	Signer solana.PrivateKey
	Amount uint64
}

var submitRetry = utils.RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Curve:       utils.ExponentialBackoff,
}

// BuildAndSubmitTransfer builds and submits the phase-2 transfer: an
// account-creation instruction when the claimant has no token account for
// this mint, followed by one SPL transfer per vault leg. All instructions go
// out in a single transaction, so the payout is all-or-nothing, and only
// custodian keys sign.
func BuildAndSubmitTransfer(ctx context.Context, client *rpc.Client, mint, claimant solana.PublicKey, legs []TransferLeg) (solana.Signature, error) {
	if len(legs) == 0 {
		return solana.Signature{}, fmt.Errorf("no transfer legs")
	}

	payer := legs[0].Signer.PublicKey()

	claimantATA, err := GetAssociatedTokenAddress(mint, claimant)
	if err != nil {
		return solana.Signature{}, err
	}

	var instructions []solana.Instruction

	exists, err := TokenAccountExists(ctx, client, claimantATA)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to check claimant token account: %w", err)
	}
	if !exists {
		ix := associatedtokenaccount.NewCreateInstruction(payer, claimant, mint).Build()
		instructions = append(instructions, ix)
		log.Infof("> 领取人 %s 无代币账户，交易中附带创建指令", claimant)
	}

	signerByKey := make(map[string]*solana.PrivateKey, len(legs))
	for i := range legs {
		leg := &legs[i]
		key := leg.Signer
		signerByKey[key.PublicKey().String()] = &key

		if leg.Amount == 0 {
			continue
		}
		sourceATA, err := GetAssociatedTokenAddress(mint, leg.Vault)
		if err != nil {
			return solana.Signature{}, err
		}
		ix := token.NewTransferInstruction(leg.Amount, sourceATA, claimantATA, leg.Vault, nil).Build()
		instructions = append(instructions, ix)
	}
	if len(instructions) == 0 {
		return solana.Signature{}, fmt.Errorf("all transfer legs are zero")
	}

	bh, err := GetRecentBlockhash(ctx, client)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction(instructions, bh, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transfer transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return signerByKey[key.String()]
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transfer transaction: %w", err)
	}

	var sig solana.Signature
	err = submitRetry.Do(ctx, func() error {
		out, err := client.SendTransaction(ctx, tx)
		if err != nil {
			log.Warnf("> 提交转账交易失败，准备重试: %v", err)
			return err
		}
		sig = out
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transfer transaction: %w", err)
	}

	return sig, nil
}
