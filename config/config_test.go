package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "devconnector", cfg.MongoDatabase)
	assert.Equal(t, 100*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 10*time.Minute, cfg.GithubCacheTTL)
	assert.Equal(t, "https://api.github.com", cfg.GithubAPIURL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MONGODB_DATABASE=from_file\nGITHUB_TOKEN=ghp_test\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() {
		os.Unsetenv("MONGODB_DATABASE")
		os.Unsetenv("GITHUB_TOKEN")
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from_file", cfg.MongoDatabase)
	assert.Equal(t, "ghp_test", cfg.GithubToken)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:       "5000",
			Env:        "development",
			MongoURI:   "mongodb://localhost:27017",
			JWTSecret:  "0123456789abcdef0123456789abcdef",
			JWTTTL:     time.Hour,
			BcryptCost: 10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, true},
		{"cost too low", func(c *Config) { c.BcryptCost = 2 }, true},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "only-twenty-chars!!!"
		}, true},
		{"production strong secret", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := Config{AllowedOrigins: "http://localhost:3000, https://devconnector.app ,"}
	assert.Equal(t, []string{"http://localhost:3000", "https://devconnector.app"}, cfg.Origins())
}
