package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"

	"github.com/totegamma/nextgen-portal/client"
)

const (
	EnvSearchServiceURL  = "API_SEARCH_SERVICE_URL"
	EnvCatalogServiceURL = "API_CATALOG_SERVICE_URL"
)

type Config struct {
	Services Services `yaml:"services"`
	Client   Client   `yaml:"client"`
	Search   Search   `yaml:"search"`
	Server   Server   `yaml:"server"`
}

type Services struct {
	Search  string `yaml:"search"`
	Catalog string `yaml:"catalog"`
}

type Client struct {
	Timeout       time.Duration `yaml:"timeout"`
	AttachBearer  bool          `yaml:"attachBearer"`
	FailurePolicy string        `yaml:"failurePolicy"` // swallow, propagate
	UserAgent     string        `yaml:"userAgent"`
	Language      string        `yaml:"language"`
}

type Search struct {
	Paginate     bool `yaml:"paginate"`
	DefaultLimit int  `yaml:"defaultLimit"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	SecureCookie  bool   `yaml:"secureCookie"`
	SessionStore  string `yaml:"sessionStore"` // memory, postgres, redis, memcached
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// Default is used for every value the file leaves out.
func Default() Config {
	return Config{
		Client: Client{
			Timeout:       30 * time.Second,
			FailurePolicy: string(client.PolicySwallow),
			UserAgent:     "nextgen-portal",
			Language:      "en",
		},
		Search: Search{
			DefaultLimit: 10,
		},
		Server: Server{
			Listen:       ":8000",
			SessionStore: "memory",
		},
	}
}

// Load reads the YAML file at path. An empty path yields the defaults. The
// service URLs can be overridden through the environment.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "open config")
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, errors.Wrap(err, "decode config")
		}
	}

	if v := os.Getenv(EnvSearchServiceURL); v != "" {
		config.Services.Search = v
	}
	if v := os.Getenv(EnvCatalogServiceURL); v != "" {
		config.Services.Catalog = v
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.Services.Search == "" {
		return errors.New("config: services.search is required")
	}
	if c.Services.Catalog == "" {
		return errors.New("config: services.catalog is required")
	}
	switch client.FailurePolicy(c.Client.FailurePolicy) {
	case client.PolicySwallow, client.PolicyPropagate:
	default:
		return errors.Errorf("config: unknown failurePolicy %q", c.Client.FailurePolicy)
	}
	switch c.Server.SessionStore {
	case "memory":
	case "postgres":
		if c.Server.PostgresDsn == "" {
			return errors.New("config: server.postgresDsn is required for the postgres session store")
		}
	case "redis":
		if c.Server.RedisAddr == "" {
			return errors.New("config: server.redisAddr is required for the redis session store")
		}
	case "memcached":
		if c.Server.MemcachedAddr == "" {
			return errors.New("config: server.memcachedAddr is required for the memcached session store")
		}
	default:
		return errors.Errorf("config: unknown sessionStore %q", c.Server.SessionStore)
	}
	if c.Server.EnableTrace && c.Server.TraceEndpoint == "" {
		return errors.New("config: server.traceEndpoint is required when tracing is enabled")
	}
	return nil
}

// ClientConfig translates the file sections into the gateway configuration.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		SearchURL:     c.Services.Search,
		CatalogURL:    c.Services.Catalog,
		Timeout:       c.Client.Timeout,
		AttachBearer:  c.Client.AttachBearer,
		FailurePolicy: client.FailurePolicy(c.Client.FailurePolicy),
		UserAgent:     c.Client.UserAgent,
	}
}
