package store

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string
	Path      string // file directory or sqlite database
	RedisAddr string
	MongoURI  string
	MongoDB   string
	TTL       time.Duration
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config) (KV, error) {
	var (
		kv  KV
		err error
	)
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		kv, err = NewFile(cfg.Path)
	case BackendSQLite:
		kv, err = OpenSQLite(cfg.Path)
	case BackendRedis:
		kv, err = DialRedis(ctx, cfg.RedisAddr, cfg.TTL)
	case BackendMongo:
		db := cfg.MongoDB
		if db == "" {
			db = "multidle"
		}
		kv, err = DialMongo(ctx, cfg.MongoURI, db)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return kv, nil
}
