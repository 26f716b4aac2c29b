package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*KeyCache, *time.Time) {
	t.Helper()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewKeyCache(filepath.Join(t.TempDir(), "keycache"), 15*time.Minute)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestKeyCache_SaveLoad(t *testing.T) {
	c, _ := newTestCache(t)
	key := bytes.Repeat([]byte{42}, KeySize)

	require.NoError(t, c.Save("session-a", key))

	info, err := os.Stat(c.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(c.path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, key), "ключ не должен лежать открытым текстом")

	got, err := c.Load("session-a")
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestKeyCache_Misses(t *testing.T) {
	key := bytes.Repeat([]byte{1}, KeySize)

	tests := []struct {
		name  string
		setup func(c *KeyCache, now *time.Time)
		owner string
	}{
		{
			name:  "no file",
			setup: func(c *KeyCache, now *time.Time) {},
			owner: "s",
		},
		{
			name: "expired",
			setup: func(c *KeyCache, now *time.Time) {
				require.NoError(t, c.Save("s", key))
				*now = now.Add(16 * time.Minute)
			},
			owner: "s",
		},
		{
			name: "other session",
			setup: func(c *KeyCache, now *time.Time) {
				require.NoError(t, c.Save("s", key))
			},
			owner: "other",
		},
		{
			name: "corrupted",
			setup: func(c *KeyCache, now *time.Time) {
				require.NoError(t, os.WriteFile(c.path, []byte("{broken"), 0600))
			},
			owner: "s",
		},
		{
			name: "tampered data",
			setup: func(c *KeyCache, now *time.Time) {
				require.NoError(t, os.WriteFile(c.path, []byte(`{"salt":"00","data":"AAAA"}`), 0600))
			},
			owner: "s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, now := newTestCache(t)
			tt.setup(c, now)

			got, err := c.Load(tt.owner)
			assert.ErrorIs(t, err, ErrKeyCacheMiss)
			assert.Nil(t, got)

			_, statErr := os.Stat(c.path)
			assert.True(t, os.IsNotExist(statErr), "непригодный кэш удаляется")
		})
	}
}

func TestKeyCache_FileAloneDoesNotOpen(t *testing.T) {
	c, _ := newTestCache(t)
	key := bytes.Repeat([]byte{7}, KeySize)
	require.NoError(t, c.Save("session-a", key))

	raw, err := os.ReadFile(c.path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("session-a")))

	var file keyCacheFile
	require.NoError(t, json.Unmarshal(raw, &file))
	salt, err := hex.DecodeString(file.Salt)
	require.NoError(t, err)

	// все, что лежит в файле, не подходит как ключ
	_, err = Open(salt, keyCacheAssociatedID, file.Data)
	assert.Error(t, err)

	other, err := sealingKey("session-b", salt)
	require.NoError(t, err)
	_, err = Open(other, keyCacheAssociatedID, file.Data)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	own, err := sealingKey("session-a", salt)
	require.NoError(t, err)
	data, err := Open(own, keyCacheAssociatedID, file.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session-a")
}

func TestKeyCache_Clear(t *testing.T) {
	c, _ := newTestCache(t)

	assert.NoError(t, c.Clear(), "нет файла - не ошибка")

	require.NoError(t, c.Save("s", bytes.Repeat([]byte{1}, KeySize)))
	require.NoError(t, c.Clear())

	_, err := c.Load("s")
	assert.ErrorIs(t, err, ErrKeyCacheMiss)
}

func TestKeyCache_SaveRejectsBadKey(t *testing.T) {
	c, _ := newTestCache(t)
	assert.Error(t, c.Save("s", []byte("short")))
}

func TestNewKeyCache_DefaultTTL(t *testing.T) {
	c := NewKeyCache("x", 0)
	assert.Equal(t, DefaultKeyCacheTTL, c.ttl)
}
