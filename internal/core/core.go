package core

import (
	"context"
	"fmt"

	"github.com/gocraft/dbr/v2"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/config"
	"github.com/sebastiaanschool/schoolhub/pkg/account"
	"github.com/sebastiaanschool/schoolhub/pkg/content"
	"github.com/sebastiaanschool/schoolhub/pkg/database"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/sebastiaanschool/schoolhub/pkg/enrollment"
	"github.com/sebastiaanschool/schoolhub/pkg/group"
	"github.com/sebastiaanschool/schoolhub/pkg/push"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
	"github.com/sebastiaanschool/schoolhub/pkg/security/password"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stores is the storage backend of every manager
type Stores struct {
	Accounts  account.Store
	Groups    group.Store
	Passwords password.Store
	Devices   device.Store
	Content   content.Store
}

// Validate checks that every store is set
func (s Stores) Validate() error {
	switch {
	case s.Accounts == nil:
		return errors.Wrap(ErrNilStore, "accounts")
	case s.Groups == nil:
		return errors.Wrap(ErrNilStore, "groups")
	case s.Passwords == nil:
		return errors.Wrap(ErrNilStore, "passwords")
	case s.Devices == nil:
		return errors.Wrap(ErrNilStore, "devices")
	case s.Content == nil:
		return errors.Wrap(ErrNilStore, "content")
	}

	return nil
}

// Core is an aggregate of every manager the server needs
type Core struct {
	accounts   *account.Manager
	groups     *group.Manager
	passwords  password.Manager
	devices    *device.Manager
	enrollment *enrollment.Service
	auth       *auth.Authenticator
	content    *content.Manager
	closers    []func() error
	logger     *zap.Logger
}

// New opens every backend named by the configuration and assembles the core
func New(ctx context.Context, conf config.Config, logger *zap.Logger) (_ *Core, err error) {
	if err = conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	c := &Core{}
	if err = c.SetLogger(logger); err != nil {
		return nil, err
	}

	l := c.Logger()

	// releasing whatever has been opened so far
	defer func() {
		if err != nil {
			if xerr := c.Close(); xerr != nil {
				l.Warn("failed to release resources", zap.Error(xerr))
			}
		}
	}()

	//---------------------------------------------------------------------------
	// identity stores
	//---------------------------------------------------------------------------
	var stores Stores

	switch conf.Database.Driver {
	case config.DriverPostgres:
		l.Info("connecting to postgres")

		var pool *pgx.ConnPool
		pool, err = database.PostgreSQLConnection(database.PostgreSQLConfig{
			DSN:   conf.Database.DSN,
			Debug: conf.Log.Debug,
		}, l)
		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, func() error { pool.Close(); return nil })

		if stores.Accounts, err = account.NewPostgreSQLStore(pool); err != nil {
			return nil, err
		}

		if stores.Groups, err = group.NewPostgreSQLStore(pool); err != nil {
			return nil, err
		}

		if stores.Passwords, err = password.NewPostgreSQLStore(pool); err != nil {
			return nil, err
		}

		if stores.Devices, err = device.NewPostgreSQLStore(pool); err != nil {
			return nil, err
		}
	default:
		l.Warn("identity stores are kept in memory")

		stores.Accounts = account.NewMemoryStore()
		stores.Groups = group.NewMemoryStore()
		stores.Passwords = password.NewMemoryStore()
		stores.Devices = device.NewMemoryStore()
	}

	//---------------------------------------------------------------------------
	// content store
	//---------------------------------------------------------------------------
	switch conf.Content.Driver {
	case config.DriverMySQL:
		l.Info("connecting to mysql")

		var conn *dbr.Connection
		if conn, err = database.MySQLConnection(conf.Content.DSN); err != nil {
			return nil, err
		}

		c.closers = append(c.closers, conn.Close)

		if stores.Content, err = content.NewMySQLStore(conn); err != nil {
			return nil, err
		}
	default:
		l.Warn("content store is kept in memory")
		stores.Content = content.NewMemoryStore()
	}

	//---------------------------------------------------------------------------
	// session cache
	//---------------------------------------------------------------------------
	var cache auth.Cache

	switch conf.Auth.Cache {
	case config.DriverBadger:
		cache, err = auth.NewBadgerCache(conf.Auth.CacheDir, l)
	default:
		cache, err = auth.NewMemoryCache(conf.Auth.SessionTTL)
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize session cache")
	}

	c.closers = append(c.closers, cache.Close)

	if err = c.assemble(stores, cache, conf); err != nil {
		return nil, err
	}

	//---------------------------------------------------------------------------
	// bulletin announcements
	//---------------------------------------------------------------------------
	if conf.Push.Enabled {
		if err = c.enablePush(conf.Push); err != nil {
			return nil, errors.Wrap(err, "failed to enable push")
		}
	}

	l.Info("core is ready")

	return c, nil
}

// assemble builds every manager on top of the given stores
// and registers the account deletion cascades
func (c *Core) assemble(stores Stores, cache auth.Cache, conf config.Config) (err error) {
	if err = stores.Validate(); err != nil {
		return err
	}

	if cache == nil {
		return ErrNilCache
	}

	l := c.Logger()

	if c.accounts, err = account.NewManager(stores.Accounts); err != nil {
		return err
	}

	if c.groups, err = group.NewManager(stores.Groups); err != nil {
		return err
	}

	if c.passwords, err = password.NewManager(stores.Passwords, conf.Password.Cost); err != nil {
		return err
	}

	if c.devices, err = device.NewManager(stores.Devices); err != nil {
		return err
	}

	if c.content, err = content.NewManager(stores.Content); err != nil {
		return err
	}

	c.auth, err = auth.NewAuthenticator(c.accounts, c.passwords, cache, []byte(conf.Auth.Secret), conf.Auth.SessionTTL)
	if err != nil {
		return err
	}

	c.enrollment, err = enrollment.NewService(c.accounts, c.groups, c.passwords, c.devices, c.auth)
	if err != nil {
		return err
	}

	for _, setLogger := range []func(*zap.Logger) error{
		c.accounts.SetLogger,
		c.groups.SetLogger,
		c.devices.SetLogger,
		c.content.SetLogger,
		c.auth.SetLogger,
		c.enrollment.SetLogger,
	} {
		if err = setLogger(l); err != nil {
			return err
		}
	}

	//---------------------------------------------------------------------------
	// whatever an account owns goes away with it
	//---------------------------------------------------------------------------
	cascades := []struct {
		name string
		fn   account.CascadeFunc
	}{
		{"password", c.passwords.Delete},
		{"groups", c.groups.ReleaseAccount},
		{"registration", c.devices.DeleteRegistration},
	}

	for _, cascade := range cascades {
		if err = c.accounts.OnDelete(cascade.name, cascade.fn); err != nil {
			return errors.Wrapf(err, "failed to register %s cascade", cascade.name)
		}
	}

	return nil
}

// enablePush announces new bulletins to the active registrations
func (c *Core) enablePush(conf config.Push) error {
	client, err := push.NewSNSClient(conf.Region)
	if err != nil {
		return err
	}

	d, err := push.NewDispatcher(c.devices, client, conf.APNSARN, conf.GCMARN)
	if err != nil {
		return err
	}

	if err = d.SetLogger(c.Logger()); err != nil {
		return err
	}

	c.content.SetNotifier(d)

	return nil
}

// Close releases every backend held by the core
func (c *Core) Close() (err error) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.closers[i]())
	}

	c.closers = nil

	return err
}

// AccountManager returns the account manager
func (c *Core) AccountManager() *account.Manager {
	return c.accounts
}

// GroupManager returns the group manager
func (c *Core) GroupManager() *group.Manager {
	return c.groups
}

// PasswordManager returns the password manager
func (c *Core) PasswordManager() password.Manager {
	return c.passwords
}

// DeviceManager returns the push registration manager
func (c *Core) DeviceManager() *device.Manager {
	return c.devices
}

// Enrollment returns the enrollment service
func (c *Core) Enrollment() *enrollment.Service {
	return c.enrollment
}

// Authenticator returns the session authenticator
func (c *Core) Authenticator() *auth.Authenticator {
	return c.auth
}

// ContentManager returns the content manager
func (c *Core) ContentManager() *content.Manager {
	return c.content
}

// SetLogger setting a primary logger for the core
func (c *Core) SetLogger(logger *zap.Logger) error {
	// if logger is set, then giving it a name
	// to know the log context
	if logger != nil {
		logger = logger.Named("[schoolhub]")
	}

	c.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
// a new default emergency logger
// NOTE: will panic if it finally fails to obtain a logger
func (c *Core) Logger() *zap.Logger {
	if c.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			// having a working logger is crucial, thus must panic() if initialization fails
			panic(fmt.Errorf("failed to initialize core logger: %s", err))
		}

		c.logger = l
	}

	return c.logger
}
