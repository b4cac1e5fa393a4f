// Command calcomctl administers the credential store used by calcom-server:
// admin flags, stored Cal.com credentials and legacy records.
package main

import (
	"context"
	"os"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/storage"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/config"
)

func main() {
	root := newRootCmd(openFromEnv)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openFromEnv opens the store described by the server's environment
// variables. Identity provider settings are not required.
func openFromEnv(ctx context.Context) (*storage.Stores, error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, err
	}

	return storage.Open(ctx, storage.Options{
		Backend:       cfg.StoreBackend,
		DBPath:        cfg.DBPath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		SecretKey:     cfg.SecretKey,
	}, cfg.NewLogger(os.Stderr))
}
