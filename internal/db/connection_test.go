package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/roster-sync/database"
	"github.com/stacklok/roster-sync/internal/config"
)

func TestNewPool_Errors(t *testing.T) {
	t.Parallel()

	passwordFile := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte("secret\n"), 0600))

	tests := []struct {
		name   string
		cfg    *config.DatabaseConfig
		errMsg string
	}{
		{
			name:   "nil config",
			cfg:    nil,
			errMsg: "database configuration is required",
		},
		{
			name: "unreadable password file",
			cfg: &config.DatabaseConfig{
				Host: "localhost", Port: 5432, User: "u", Database: "sis", PasswordFile: "/nonexistent/password",
			},
			errMsg: "failed to get database connection string",
		},
		{
			name: "bad connMaxLifetime",
			cfg: &config.DatabaseConfig{
				Host: "localhost", Port: 5432, User: "u", Database: "sis",
				PasswordFile: passwordFile, ConnMaxLifetime: "forever",
			},
			errMsg: "failed to parse connMaxLifetime",
		},
		{
			name: "unreachable server",
			cfg: &config.DatabaseConfig{
				Host: "127.0.0.1", Port: 1, User: "u", Database: "sis",
				PasswordFile: passwordFile, SSLMode: "disable",
			},
			errMsg: "failed to ping database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool, err := NewPool(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, pool)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewPool(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool, _ := database.SetupTestDBContainer(t, ctx)
	cfg := pool.Config().ConnConfig

	passwordFile := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte(cfg.Password), 0600))

	got, err := NewPool(ctx, &config.DatabaseConfig{
		Host:         cfg.Host,
		Port:         int(cfg.Port),
		User:         cfg.User,
		PasswordFile: passwordFile,
		Database:     cfg.Database,
		SSLMode:      "disable",
		MaxOpenConns: 3,
	})
	require.NoError(t, err)
	defer got.Close()

	assert.Equal(t, int32(3), got.Config().MaxConns)
	var one int
	require.NoError(t, got.QueryRow(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
