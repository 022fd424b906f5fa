package devops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DSN", "user:pass@tcp(localhost:3306)/renewtrack?parseTime=True")
	t.Setenv("RENEWTRACK_SIGNING_SECRET", "c2VjcmV0")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("MAIL_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8090", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "resend", cfg.Mail.Provider)
	assert.Equal(t, "re_123", cfg.Mail.APIKey)
	assert.Equal(t, "ops@example.com", cfg.Mail.AdminEmail)
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DSN", "")
	t.Setenv("RENEWTRACK_SIGNING_SECRET", "c2VjcmV0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DSN", "user:pass@tcp(localhost:3306)/renewtrack")
	t.Setenv("RENEWTRACK_SIGNING_SECRET", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadYamlOverlayDoesNotBeatEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dsn: file-dsn
addr: 127.0.0.1:9999
mail:
  admin_email: file@example.com
`), 0o600))

	t.Setenv("DSN", "env-dsn")
	t.Setenv("RENEWTRACK_SIGNING_SECRET", "c2VjcmV0")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADDR", "")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-dsn", cfg.DSN)
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, "file@example.com", cfg.Mail.AdminEmail)
}
