package services

import (
  "context"
  "crypto/aes"
  "crypto/cipher"
  "crypto/rand"
  "encoding/base64"
  "encoding/hex"
  "errors"
  "fmt"
  "io"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/repos"
  "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

type KeyStatus struct {
  HasKeys             bool      `json:"has_keys"`
  GeminiConfigured    bool      `json:"gemini_configured"`
  CFConfigured        bool      `json:"cf_configured"`
  CFHandle            string    `json:"cf_handle,omitempty"`
}

// VaultService stores the per-user Gemini key encrypted at rest and the
// contest-platform handle verbatim.
type VaultService interface {
  Store(ctx context.Context, userID uuid.UUID, geminiKey, cfHandle string) error
  // Load returns the decrypted key and handle. A missing record or a
  // ciphertext that no longer decrypts both come back as an empty key,
  // not an error; the chat path decides whether that is fatal.
  Load(ctx context.Context, userID uuid.UUID) (string, string, error)
  Describe(ctx context.Context, userID uuid.UUID) (*KeyStatus, error)
}

type vaultService struct {
  db              *gorm.DB
  log             *logger.Logger
  userKeysRepo    repos.UserKeysRepo
  aead            cipher.AEAD
}

// NewVaultService requires a 64-hex-char (32 byte) encryption key. The key
// is external configuration on purpose: a generated fallback would strand
// every stored ciphertext on restart.
func NewVaultService(db *gorm.DB, log *logger.Logger, userKeysRepo repos.UserKeysRepo, encryptionKeyHex string) (VaultService, error) {
  serviceLog := log.With("service", "VaultService")
  keyBytes, err := hex.DecodeString(encryptionKeyHex)
  if err != nil {
    return nil, fmt.Errorf("ENCRYPTION_KEY is not valid hex: %w", err)
  }
  if len(keyBytes) != 32 {
    return nil, fmt.Errorf("ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(keyBytes))
  }
  block, err := aes.NewCipher(keyBytes)
  if err != nil {
    return nil, fmt.Errorf("failed to build AES cipher: %w", err)
  }
  aead, err := cipher.NewGCM(block)
  if err != nil {
    return nil, fmt.Errorf("failed to build GCM: %w", err)
  }
  return &vaultService{
    db:           db,
    log:          serviceLog,
    userKeysRepo: userKeysRepo,
    aead:         aead,
  }, nil
}

func (vs *vaultService) Store(ctx context.Context, userID uuid.UUID, geminiKey, cfHandle string) error {
  keys, err := vs.userKeysRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    if !errors.Is(err, gorm.ErrRecordNotFound) {
      return fmt.Errorf("failed to load user keys: %w", err)
    }
    keys = &types.UserKeys{UserID: userID}
  }
  if geminiKey != "" {
    ciphertext, err := vs.encrypt(geminiKey)
    if err != nil {
      vs.log.Warn("failed to encrypt gemini key", "error", err)
      return fmt.Errorf("failed to encrypt key: %w", err)
    }
    keys.GeminiAPIKey = ciphertext
  }
  if cfHandle != "" {
    keys.CFHandle = cfHandle
  }
  if _, err := vs.userKeysRepo.Upsert(ctx, nil, keys); err != nil {
    return fmt.Errorf("failed to store user keys: %w", err)
  }
  return nil
}

func (vs *vaultService) Load(ctx context.Context, userID uuid.UUID) (string, string, error) {
  keys, err := vs.userKeysRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return "", "", nil
    }
    return "", "", fmt.Errorf("failed to load user keys: %w", err)
  }
  plaintext := ""
  if keys.GeminiAPIKey != "" {
    plaintext, err = vs.decrypt(keys.GeminiAPIKey)
    if err != nil {
      // Ciphertext written under a different key is treated as absent.
      vs.log.Warn("failed to decrypt stored gemini key, treating as unconfigured", "userID", userID, "error", err)
      plaintext = ""
    }
  }
  return plaintext, keys.CFHandle, nil
}

func (vs *vaultService) Describe(ctx context.Context, userID uuid.UUID) (*KeyStatus, error) {
  keys, err := vs.userKeysRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return &KeyStatus{}, nil
    }
    return nil, fmt.Errorf("failed to load user keys: %w", err)
  }
  return &KeyStatus{
    HasKeys:          true,
    GeminiConfigured: keys.GeminiAPIKey != "",
    CFConfigured:     keys.CFHandle != "",
    CFHandle:         keys.CFHandle,
  }, nil
}

func (vs *vaultService) encrypt(plaintext string) (string, error) {
  nonce := make([]byte, vs.aead.NonceSize())
  if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
    return "", err
  }
  sealed := vs.aead.Seal(nonce, nonce, []byte(plaintext), nil)
  return base64.StdEncoding.EncodeToString(sealed), nil
}

func (vs *vaultService) decrypt(encoded string) (string, error) {
  sealed, err := base64.StdEncoding.DecodeString(encoded)
  if err != nil {
    return "", err
  }
  if len(sealed) < vs.aead.NonceSize() {
    return "", fmt.Errorf("ciphertext shorter than nonce")
  }
  nonce, ciphertext := sealed[:vs.aead.NonceSize()], sealed[vs.aead.NonceSize():]
  plaintext, err := vs.aead.Open(nil, nonce, ciphertext, nil)
  if err != nil {
    return "", err
  }
  return string(plaintext), nil
}
