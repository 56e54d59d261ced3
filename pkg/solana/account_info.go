package solana

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"vestingcontrol/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenMetadata represents the on-chain metadata of a token
type TokenMetadata struct {
	Key             uint8
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	Uri             string
}

// GetAssociatedTokenAddress derives the associated token account for an
// owner and mint.
func GetAssociatedTokenAddress(mint, owner solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{
		owner[:],
		solana.TokenProgramID[:],
		mint[:],
	}

	address, _, err := solana.FindProgramAddress(seeds, solana.SPLAssociatedTokenAccountProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to find associated token address: %w", err)
	}

	return address, nil
}

// TokenAccountExists reports whether the account exists on the ledger.
func TokenAccountExists(ctx context.Context, client *rpc.Client, account solana.PublicKey) (bool, error) {
	info, err := client.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return info != nil && info.Value != nil, nil
}

// GetMintDecimals fetches the decimals configuration of a mint.
func GetMintDecimals(ctx context.Context, client *rpc.Client, mint solana.PublicKey) (uint8, error) {
	supply, err := client.GetTokenSupply(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get token supply for %s: %w", mint, err)
	}
	if supply == nil || supply.Value == nil {
		return 0, fmt.Errorf("empty token supply response for %s", mint)
	}
	return supply.Value.Decimals, nil
}

func readString(buf *bytes.Buffer) (string, error) {
	var strLen uint32
	if err := binary.Read(buf, binary.LittleEndian, &strLen); err != nil {
		return "", err
	}
	strBytes := make([]byte, strLen)
	if _, err := buf.Read(strBytes); err != nil {
		return "", err
	}
	return string(strBytes), nil
}

// GetTokenMetadata reads the Metaplex metadata account for a mint.
func GetTokenMetadata(ctx context.Context, client *rpc.Client, mint solana.PublicKey) (*TokenMetadata, error) {
	// Metaplex Metadata Program
	metadataProgramID := solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

	// 标准 PDA seeds: ["metadata", programID, mint]
	seeds := [][]byte{
		[]byte("metadata"),
		metadataProgramID.Bytes(),
		mint.Bytes(),
	}

	metadataAddress, _, err := solana.FindProgramAddress(seeds, metadataProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata address: %w", err)
	}

	accountInfo, err := client.GetAccountInfo(ctx, metadataAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil || accountInfo.Value.Data == nil {
		return nil, fmt.Errorf("no metadata found for mint: %s", mint.String())
	}

	buf := bytes.NewBuffer(accountInfo.Value.Data.GetBinary())

	var meta TokenMetadata
	if err := binary.Read(buf, binary.LittleEndian, &meta.Key); err != nil {
		return nil, err
	}
	if _, err := buf.Read(meta.UpdateAuthority[:]); err != nil {
		return nil, err
	}
	if _, err := buf.Read(meta.Mint[:]); err != nil {
		return nil, err
	}

	if meta.Name, err = readString(buf); err != nil {
		return nil, err
	}
	if meta.Symbol, err = readString(buf); err != nil {
		return nil, err
	}
	if meta.Uri, err = readString(buf); err != nil {
		return nil, err
	}

	meta.Name = strings.TrimRight(meta.Name, "\x00")
	meta.Symbol = strings.TrimRight(meta.Symbol, "\x00")
	meta.Uri = strings.TrimRight(meta.Uri, "\x00")

	return &meta, nil
}

// ResolveTokenInfo returns the token configuration for a mint. The database
// row wins; when absent, symbol and decimals are resolved on-chain and the
// row is created so the next lookup is local.
func ResolveTokenInfo(ctx context.Context, db *gorm.DB, client *rpc.Client, mint string) (*models.TokenConfig, error) {
	var tokenInfo models.TokenConfig
	err := db.Where("mint = ?", mint).First(&tokenInfo).Error
	if err == nil {
		return &tokenInfo, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	mintPubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint: %w", err)
	}

	decimals, err := GetMintDecimals(ctx, client, mintPubkey)
	if err != nil {
		return nil, err
	}

	tokenInfo = models.TokenConfig{
		Mint:     mint,
		Symbol:   "UNKNOWN",
		Name:     mint,
		Decimals: int(decimals),
	}

	// 链上 metadata 作为 symbol/name 兜底，失败不阻塞
	if meta, metaErr := GetTokenMetadata(ctx, client, mintPubkey); metaErr == nil {
		if meta.Symbol != "" {
			tokenInfo.Symbol = meta.Symbol
		}
		if meta.Name != "" {
			tokenInfo.Name = meta.Name
		}
	} else {
		log.Warnf("> 获取 mint %s 的链上 metadata 失败: %v", mint, metaErr)
	}

	if err := db.Create(&tokenInfo).Error; err != nil {
		return nil, err
	}
	return &tokenInfo, nil
}
