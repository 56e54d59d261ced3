package solana

import (
	"fmt"
	"os"

	"vestingcontrol/internal/models"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"
	"gorm.io/gorm"
)

// Custodian resolves the signing key for a vault's custodial holding
// account. The backend was chosen once at vault creation; call sites never
// branch on it.
type Custodian interface {
	Address() solana.PublicKey
	Signer() (solana.PrivateKey, error)
}

// CustodianForVault returns the custodian implementation matching the
// backend flag recorded on the vault.
func CustodianForVault(vault *models.VaultConfig) (Custodian, error) {
	address, err := solana.PublicKeyFromBase58(vault.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid vault address %s: %w", vault.Address, err)
	}

	switch vault.Backend {
	case models.VaultBackendKeystore:
		return &keystoreCustodian{address: address, rawAddress: vault.Address}, nil
	case models.VaultBackendDatabase:
		return &databaseCustodian{address: address, encryptedKey: vault.EncryptedKey}, nil
	default:
		return nil, fmt.Errorf("unknown vault backend: %s", vault.Backend)
	}
}

// keystoreCustodian loads key material from the encrypted keystore file
// written at vault creation.
type keystoreCustodian struct {
	address    solana.PublicKey
	rawAddress string
}

func (c *keystoreCustodian) Address() solana.PublicKey {
	return c.address
}

func (c *keystoreCustodian) Signer() (solana.PrivateKey, error) {
	km := NewKeyManager()
	account, err := km.LoadKeyStoreEntry(c.rawAddress, os.Getenv("KEYSTORE_PASSWORD"))
	if err != nil {
		return nil, fmt.Errorf("keystore custodian %s: %w", c.rawAddress, err)
	}
	return solana.PrivateKey(account.PrivateKey), nil
}

// databaseCustodian decrypts key material stored on the vault row itself.
type databaseCustodian struct {
	address      solana.PublicKey
	encryptedKey string
}

func (c *databaseCustodian) Address() solana.PublicKey {
	return c.address
}

func (c *databaseCustodian) Signer() (solana.PrivateKey, error) {
	if c.encryptedKey == "" {
		return nil, fmt.Errorf("database custodian %s has no key material", c.address)
	}
	km := NewKeyManager()
	raw, err := km.DecryptPrivateKey(c.encryptedKey, os.Getenv("KEYSTORE_PASSWORD"))
	if err != nil {
		return nil, fmt.Errorf("database custodian %s: %w", c.address, err)
	}
	if _, err := types.AccountFromBytes(raw); err != nil {
		return nil, fmt.Errorf("database custodian %s holds invalid key material: %w", c.address, err)
	}
	return solana.PrivateKey(raw), nil
}

// CreateVaultAccount generates a new custodial keypair and persists its key
// material per the chosen backend, then records the vault row.
func CreateVaultAccount(db *gorm.DB, projectID uint, backend string) (*models.VaultConfig, error) {
	km := NewKeyManager()
	account, err := km.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	password := os.Getenv("KEYSTORE_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("KEYSTORE_PASSWORD not configured")
	}

	vault := models.VaultConfig{
		ProjectID: projectID,
		Address:   account.PublicKey.ToBase58(),
		Backend:   backend,
		Version:   1,
	}

	switch backend {
	case models.VaultBackendKeystore:
		if err := km.SaveKeyStoreEntry(account, password); err != nil {
			return nil, err
		}
	case models.VaultBackendDatabase:
		encrypted, err := km.EncryptPrivateKey(account.PrivateKey, password)
		if err != nil {
			return nil, err
		}
		vault.EncryptedKey = encrypted
	default:
		return nil, fmt.Errorf("unknown vault backend: %s", backend)
	}

	if err := db.Create(&vault).Error; err != nil {
		return nil, err
	}
	return &vault, nil
}
