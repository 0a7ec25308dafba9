package constructcycle

import (
	"github.com/eshaffer321/constructcycle-go/internal/session"
	"github.com/redis/go-redis/v9"
)

// Storage is the key-value backend a session lives in
type Storage = session.Storage

// StorageKeys names the token and user entries
type StorageKeys = session.Keys

// Storage backends
type (
	MemoryStorage = session.MemoryStorage
	FileStorage   = session.FileStorage
	RedisStorage  = session.RedisStorage
)

// NewMemoryStorage keeps the session for the lifetime of the process
func NewMemoryStorage() *MemoryStorage {
	return session.NewMemoryStorage()
}

// NewFileStorage keeps the session in a JSON file that survives restarts
func NewFileStorage(path string) *FileStorage {
	return session.NewFileStorage(path)
}

// NewRedisStorage shares one session between every process using the same
// redis. An empty prefix uses "constructcycle:".
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return session.NewRedisStorage(client, prefix)
}
