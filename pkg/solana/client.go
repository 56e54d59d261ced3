package solana

import (
	"context"
	"fmt"
	"os"
	"time"

	"vestingcontrol/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// NewRPCClient returns an RPC client for the configured ledger endpoint.
func NewRPCClient() *rpc.Client {
	endpoint := os.Getenv("DEFAULT_SOLANA_RPC")
	if endpoint == "" {
		endpoint = rpc.MainNetBeta_RPC
	}
	return rpc.New(endpoint)
}

// commitmentLadder orders the confidence levels a blockhash fetch walks
// through: start strict, relax on repeated failure.
var commitmentLadder = []rpc.CommitmentType{
	rpc.CommitmentFinalized,
	rpc.CommitmentConfirmed,
	rpc.CommitmentProcessed,
}

var blockhashRetry = utils.RetryPolicy{
	MaxAttempts: 2,
	BaseDelay:   500 * time.Millisecond,
	Curve:       utils.FixedBackoff,
}

// GetRecentBlockhash fetches a blockhash for transaction building, retrying
// each commitment level with fixed backoff before relaxing to the next.
func GetRecentBlockhash(ctx context.Context, client *rpc.Client) (solana.Hash, error) {
	var hash solana.Hash
	var lastErr error

	for _, commitment := range commitmentLadder {
		err := blockhashRetry.Do(ctx, func() error {
			out, err := client.GetLatestBlockhash(ctx, commitment)
			if err != nil {
				return err
			}
			hash = out.Value.Blockhash
			return nil
		})
		if err == nil {
			return hash, nil
		}
		lastErr = err
		log.Warnf("> 获取 blockhash 失败 (commitment=%s)，降级重试: %v", commitment, err)
	}

	return solana.Hash{}, fmt.Errorf("failed to fetch blockhash at any commitment level: %w", lastErr)
}
