package app

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shop-graphql/internal/shopify"
)

// clearEnv unsets every variable the loader reads so the host environment
// does not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SHOPGQL_ADDR", "SHOPGQL_PATH",
		"SHOPGQL_SHOP_DOMAIN", "SHOPGQL_SHOP_API_VERSION", "SHOPGQL_SHOP_BASE_URL",
		"SHOPGQL_SHOP_API_KEY", "SHOPGQL_SHOP_PASSWORD", "SHOPGQL_SHOP_AUTH_TOKEN",
		"SHOP_DOMAIN", "SHOP_API", "SHOP_PASSWORD", "BASE64_AUTH", "PORT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPGQL_SHOP_DOMAIN", "example.myshopify.com")
	t.Setenv("SHOPGQL_SHOP_AUTH_TOKEN", "dG9rZW4=")

	cfg, err := loadConfig([]string{})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:4000", cfg.Addr)
	assert.Equal(t, "/graphql", cfg.Path)
	assert.Equal(t, "example.myshopify.com", cfg.Shop.Domain)
	assert.Equal(t, shopify.DefaultAPIVersion, cfg.Shop.APIVersion)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, 3*time.Second, cfg.Graceful.ReadinessDelay)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
}

func TestLoadConfig_LegacyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOP_DOMAIN", "legacy.myshopify.com")
	t.Setenv("SHOP_API", "key")
	t.Setenv("SHOP_PASSWORD", "secret")
	t.Setenv("PORT", "8081")

	cfg, err := loadConfig([]string{})
	require.NoError(t, err)

	assert.Equal(t, "legacy.myshopify.com", cfg.Shop.Domain)
	assert.Equal(t, "key", cfg.Shop.APIKey)
	assert.Equal(t, "secret", cfg.Shop.Password)
	assert.Equal(t, "0.0.0.0:8081", cfg.Addr)
}

func TestLoadConfig_PrefixedWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPGQL_SHOP_DOMAIN", "new.myshopify.com")
	t.Setenv("SHOP_DOMAIN", "old.myshopify.com")
	t.Setenv("SHOPGQL_SHOP_AUTH_TOKEN", "new")
	t.Setenv("BASE64_AUTH", "old")
	t.Setenv("SHOPGQL_ADDR", "127.0.0.1:9000")
	t.Setenv("PORT", "8081")

	cfg, err := loadConfig([]string{})
	require.NoError(t, err)

	assert.Equal(t, "new.myshopify.com", cfg.Shop.Domain)
	assert.Equal(t, "new", cfg.Shop.AuthToken)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoadConfig_Flags(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE64_AUTH", "dG9rZW4=")
	t.Setenv("SHOP_DOMAIN", "example.myshopify.com")

	cfg, err := loadConfig([]string{"-addr=127.0.0.1:0", "-path=/api/graphql"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:0", cfg.Addr)
	assert.Equal(t, "/api/graphql", cfg.Path)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for _, tt := range []struct {
		name string
		env  map[string]string
	}{
		{
			name: "NoDomain",
			env:  map[string]string{"BASE64_AUTH": "x"},
		},
		{
			name: "NoCredentials",
			env:  map[string]string{"SHOP_DOMAIN": "example.myshopify.com"},
		},
		{
			name: "KeyWithoutPassword",
			env:  map[string]string{"SHOP_DOMAIN": "example.myshopify.com", "SHOP_API": "key"},
		},
		{
			name: "RelativePath",
			env: map[string]string{
				"SHOP_DOMAIN":  "example.myshopify.com",
				"BASE64_AUTH":  "x",
				"SHOPGQL_PATH": "graphql",
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig([]string{})
			require.Error(t, err)
		})
	}
}

func TestShopConfig_ClientConfig(t *testing.T) {
	c := ShopConfig{
		Domain:     "example.myshopify.com",
		APIVersion: "2024-04",
		APIKey:     "key",
		Password:   "secret",
	}
	assert.Equal(t, shopify.Config{
		Domain:     "example.myshopify.com",
		APIVersion: "2024-04",
		APIKey:     "key",
		Password:   "secret",
	}, c.ClientConfig())
}
