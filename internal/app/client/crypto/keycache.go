package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/hkdf"
)

const (
	DefaultKeyCacheTTL   = 15 * time.Minute
	keyCachePermissions  = 0600
	keyCacheAssociatedID = "pixelvault/keycache"
)

// ErrKeyCacheMiss - кэша нет, он истек, поврежден или принадлежит другой сессии.
var ErrKeyCacheMiss = errors.New("key cache miss")

// KeyCache хранит выведенный ключ между запусками CLI, чтобы не вводить
// мастер-пароль на каждую команду.
//
// Ключ в файле зашифрован ключом, выведенным из owner и случайной соли.
// Сам ключ шифрования в файл не пишется: без owner файл бесполезен.
// В удаленном режиме owner получают из токена сессии, и после выхода кэш
// не открыть, даже если файл остался. В локальном режиме owner строится
// из пути к базе, его может вычислить любой, кто читает файл, так что там
// ключ защищают только права 0600.
type KeyCache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

type cachedKey struct {
	Key       []byte    `json:"key"`
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type keyCacheFile struct {
	Salt string `json:"salt"`
	Data string `json:"data"`
}

func NewKeyCache(path string, ttl time.Duration) *KeyCache {
	if ttl <= 0 {
		ttl = DefaultKeyCacheTTL
	}
	return &KeyCache{path: path, ttl: ttl, now: time.Now}
}

// Save сохраняет ключ. owner привязывает кэш к конкретной сессии.
func (c *KeyCache) Save(owner string, key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("key must be %d bytes", KeySize)
	}

	salt, err := GenerateRandomBytes(SaltSize)
	if err != nil {
		return err
	}
	cacheKey, err := sealingKey(owner, salt)
	if err != nil {
		return err
	}
	defer ClearMemory(cacheKey)

	now := c.now()
	data, err := json.Marshal(cachedKey{
		Key:       key,
		Owner:     owner,
		ExpiresAt: now.Add(c.ttl),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации кэша: %w", err)
	}
	defer ClearMemory(data)

	sealed, err := Seal(cacheKey, keyCacheAssociatedID, data)
	if err != nil {
		return fmt.Errorf("ошибка шифрования кэша: %w", err)
	}

	out, err := json.MarshalIndent(keyCacheFile{
		Salt: hex.EncodeToString(salt),
		Data: sealed,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	if err := os.WriteFile(c.path, out, keyCachePermissions); err != nil {
		return fmt.Errorf("ошибка сохранения кэша ключа: %w", err)
	}
	return nil
}

// Load возвращает ключ, если кэш жив и принадлежит owner.
// Испорченный или истекший файл удаляется.
func (c *KeyCache) Load(owner string) ([]byte, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения кэша ключа: %w", err)
	}

	var file keyCacheFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, c.discard()
	}

	salt, err := hex.DecodeString(file.Salt)
	if err != nil || len(salt) != SaltSize {
		return nil, c.discard()
	}
	cacheKey, err := sealingKey(owner, salt)
	if err != nil {
		return nil, err
	}
	defer ClearMemory(cacheKey)

	data, err := Open(cacheKey, keyCacheAssociatedID, file.Data)
	if err != nil {
		return nil, c.discard()
	}
	defer ClearMemory(data)

	var cached cachedKey
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, c.discard()
	}

	if !c.now().Before(cached.ExpiresAt) || cached.Owner != owner || len(cached.Key) != KeySize {
		ClearMemory(cached.Key)
		return nil, c.discard()
	}

	return cached.Key, nil
}

// Clear удаляет файл кэша
func (c *KeyCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления кэша ключа: %w", err)
	}
	return nil
}

func sealingKey(owner string, salt []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(owner), salt, []byte(keyCacheAssociatedID)), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

func (c *KeyCache) discard() error {
	if err := c.Clear(); err != nil {
		return err
	}
	return ErrKeyCacheMiss
}
