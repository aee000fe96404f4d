package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/shop-graphql/internal/shopify"
)

const defaultAddr = "0.0.0.0:4000"

// Config holds the complete application configuration, loadable from
// environment variables (SHOPGQL_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string `default:"0.0.0.0:4000" usage:"GraphQL server listen address"`
	Path     string `default:"/graphql" usage:"GraphQL endpoint path"`
	Shop     ShopConfig
	CORS     CORSConfig
	Graceful GracefulConfig
}

// ShopConfig describes the upstream Admin API.
type ShopConfig struct {
	Domain     string `usage:"Shop domain, e.g. example.myshopify.com (SHOPGQL_SHOP_DOMAIN or SHOP_DOMAIN)"`
	APIVersion string `env:"API_VERSION" flag:"api-version" default:"2020-01" usage:"Admin API version"`
	BaseURL    string `env:"BASE_URL" flag:"base-url" usage:"Admin API base URL, overrides domain and version"`
	APIKey     string `env:"API_KEY" flag:"api-key" usage:"Admin API key (SHOPGQL_SHOP_API_KEY or SHOP_API)"`
	Password   string `usage:"Admin API password (SHOPGQL_SHOP_PASSWORD or SHOP_PASSWORD)"`
	AuthToken  string `env:"AUTH_TOKEN" flag:"auth-token" usage:"Pre-encoded base64 key:password (SHOPGQL_SHOP_AUTH_TOKEN or BASE64_AUTH)"`
}

// ClientConfig converts c to the upstream client configuration.
func (c ShopConfig) ClientConfig() shopify.Config {
	return shopify.Config{
		Domain:     c.Domain,
		APIVersion: c.APIVersion,
		BaseURL:    c.BaseURL,
		AuthToken:  c.AuthToken,
		APIKey:     c.APIKey,
		Password:   c.Password,
	}
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from command line flags, environment
// variables and YAML config files, then applies legacy variable names.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOPGQL",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/shop-graphql/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults fills unset fields from the unprefixed variable
// names used by existing deployments and from the platform PORT.
func (c *Config) applyPlatformDefaults() {
	fill := func(dst *string, env string) {
		if *dst != "" {
			return
		}
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	fill(&c.Shop.Domain, "SHOP_DOMAIN")
	fill(&c.Shop.APIKey, "SHOP_API")
	fill(&c.Shop.Password, "SHOP_PASSWORD")
	fill(&c.Shop.AuthToken, "BASE64_AUTH")

	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	if c.Shop.Domain == "" && c.Shop.BaseURL == "" {
		return errors.New("shop domain is required: set SHOPGQL_SHOP_DOMAIN or SHOP_DOMAIN")
	}
	if c.Shop.AuthToken == "" && (c.Shop.APIKey == "" || c.Shop.Password == "") {
		return errors.Wrap(shopify.ErrNoCredentials,
			"set SHOPGQL_SHOP_AUTH_TOKEN (BASE64_AUTH) or both SHOPGQL_SHOP_API_KEY (SHOP_API) and SHOPGQL_SHOP_PASSWORD (SHOP_PASSWORD)")
	}
	if c.Path == "" || c.Path[0] != '/' {
		return errors.Errorf("path %q must start with /", c.Path)
	}
	return nil
}
