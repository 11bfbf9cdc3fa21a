package main

import (
	"context"

	"multidle/internal/store"
	"multidle/internal/words"
)

// storeConfigFromEnv reads the STORE_* settings.
func storeConfigFromEnv() store.Config {
	backend := getEnv("STORE_BACKEND", store.BackendMemory)
	defaultPath := "data/sessions"
	if backend == store.BackendSQLite {
		defaultPath = "data/multidle.db"
	}
	return store.Config{
		Backend:   backend,
		Path:      getEnv("STORE_PATH", defaultPath),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "multidle"),
		TTL:       getEnvDuration("COOKIE_MAX_AGE", defaultCookieMaxAge),
	}
}

// openStore opens the configured backend.
var openStore = func(ctx context.Context, cfg store.Config) (store.KV, error) {
	logInfo("Opening %s snapshot store", cfg.Backend)
	return store.Open(ctx, cfg)
}

// cleanupSnapshots removes file snapshots that no cookie can reach any more.
// Other backends expire keys themselves or keep them.
func (app *App) cleanupSnapshots() {
	fs, ok := app.Store.(*store.File)
	if !ok {
		return
	}
	removed, err := fs.Cleanup(app.CookieMaxAge)
	if err != nil {
		logWarn("Snapshot cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		logInfo("Removed %d expired snapshot files", removed)
	}
}

// loadWordSource reads the dictionary and picks the daily word source.
// WORD_SALT switches from the fixed schedule to a keyed hash of the day.
func loadWordSource(wordsFile, scheduleFile, salt string) (words.Source, words.Set, error) {
	list, err := words.Load(wordsFile)
	if err != nil {
		return nil, nil, err
	}
	dict := words.NewSet(list)
	if salt != "" {
		src, err := words.NewHashed(list, salt)
		if err != nil {
			return nil, nil, err
		}
		logInfo("Daily words chosen by keyed hash")
		return src, dict, nil
	}
	src, err := words.LoadSchedule(scheduleFile, list)
	if err != nil {
		return nil, nil, err
	}
	return src, dict, nil
}
