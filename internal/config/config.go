package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/pkg/util"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by the configuration
const EnvPrefix = "SCHOOLHUB"

// storage drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverBadger   = "badger"
)

// errors
var (
	ErrUnknownDriver      = errors.New("unknown driver")
	ErrEmptyDSN           = errors.New("database dsn is empty")
	ErrEmptySecret        = errors.New("auth.secret is empty")
	ErrEmptyCacheDir      = errors.New("auth.cache_dir is empty")
	ErrEmptyPushRegion    = errors.New("push.region is empty")
	ErrNoPushApplications = errors.New("push is enabled but neither push.apns_arn nor push.gcm_arn is set")
)

// Config is the resolved configuration of the server
type Config struct {
	Server   Server
	Log      Log
	Database Database
	Content  Content
	Auth     Auth
	Password Password
	Push     Push
}

// Server is the http listener
type Server struct {
	Addr string
}

// Log sets up the primary logger
type Log struct {
	Debug bool
	Dir   string
}

// Database keeps accounts, passwords, groups and registrations
type Database struct {
	Driver string
	DSN    string
}

// Content keeps agenda items, bulletins, newsletters and contacts
type Content struct {
	Driver string
	DSN    string
}

// Auth configures sessions
type Auth struct {
	Secret     string
	SessionTTL time.Duration
	Cache      string
	CacheDir   string
}

// Password configures password hashing
type Password struct {
	Cost int
}

// Push configures bulletin announcements through AWS SNS
type Push struct {
	Enabled bool
	Region  string
	APNSARN string
	GCMARN  string
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.dir", "")
	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.dsn", "")
	v.SetDefault("content.driver", DriverMemory)
	v.SetDefault("content.dsn", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.session_ttl", 30*24*time.Hour)
	v.SetDefault("auth.cache", DriverMemory)
	v.SetDefault("auth.cache_dir", "")
	v.SetDefault("password.cost", 0)
	v.SetDefault("push.enabled", false)
	v.SetDefault("push.region", "")
	v.SetDefault("push.apns_arn", "")
	v.SetDefault("push.gcm_arn", "")
}

// NewViper initializes a viper instance reading defaults, an optional
// configuration file and the environment
//
// NOTE: an empty file name looks for ~/.schoolhub.yaml, which may be absent;
// an explicitly named file must exist. A .env file in the working directory
// is loaded into the environment first, without overriding what is already set
func NewViper(file string) (*viper.Viper, error) {
	if util.Exists(".env") {
		if err := godotenv.Load(); err != nil {
			return nil, errors.Wrap(err, "failed to load .env")
		}
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", file)
		}

		return v, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve home directory")
	}

	v.AddConfigPath(home)
	v.SetConfigName(".schoolhub")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	return v, nil
}

// FromViper extracts and validates the configuration
func FromViper(v *viper.Viper) (c Config, err error) {
	c = Config{
		Server: Server{
			Addr: v.GetString("server.addr"),
		},
		Log: Log{
			Debug: v.GetBool("log.debug"),
			Dir:   v.GetString("log.dir"),
		},
		Database: Database{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
			DSN:    v.GetString("database.dsn"),
		},
		Content: Content{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("content.driver"))),
			DSN:    v.GetString("content.dsn"),
		},
		Auth: Auth{
			Secret:     v.GetString("auth.secret"),
			SessionTTL: v.GetDuration("auth.session_ttl"),
			Cache:      strings.ToLower(strings.TrimSpace(v.GetString("auth.cache"))),
			CacheDir:   v.GetString("auth.cache_dir"),
		},
		Password: Password{
			Cost: v.GetInt("password.cost"),
		},
		Push: Push{
			Enabled: v.GetBool("push.enabled"),
			Region:  v.GetString("push.region"),
			APNSARN: v.GetString("push.apns_arn"),
			GCMARN:  v.GetString("push.gcm_arn"),
		},
	}

	if err = c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

// Load resolves the configuration from a given file (or the default one)
// and the environment
func Load(file string) (Config, error) {
	v, err := NewViper(file)
	if err != nil {
		return Config{}, err
	}

	return FromViper(v)
}

// Validate checks the consistency of the configuration
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.Wrap(ErrEmptyDSN, "database.dsn")
		}
	default:
		return errors.Wrapf(ErrUnknownDriver, "database.driver %q", c.Database.Driver)
	}

	switch c.Content.Driver {
	case DriverMemory:
	case DriverMySQL:
		if strings.TrimSpace(c.Content.DSN) == "" {
			return errors.Wrap(ErrEmptyDSN, "content.dsn")
		}
	default:
		return errors.Wrapf(ErrUnknownDriver, "content.driver %q", c.Content.Driver)
	}

	if strings.TrimSpace(c.Auth.Secret) == "" {
		return ErrEmptySecret
	}

	switch c.Auth.Cache {
	case DriverMemory:
	case DriverBadger:
		if strings.TrimSpace(c.Auth.CacheDir) == "" {
			return ErrEmptyCacheDir
		}
	default:
		return errors.Wrapf(ErrUnknownDriver, "auth.cache %q", c.Auth.Cache)
	}

	if c.Push.Enabled {
		if c.Push.Region == "" {
			return ErrEmptyPushRegion
		}

		if c.Push.APNSARN == "" && c.Push.GCMARN == "" {
			return ErrNoPushApplications
		}
	}

	return nil
}
