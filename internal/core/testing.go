package core

import (
	"time"

	"github.com/sebastiaanschool/schoolhub/internal/config"
	"github.com/sebastiaanschool/schoolhub/pkg/account"
	"github.com/sebastiaanschool/schoolhub/pkg/content"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/sebastiaanschool/schoolhub/pkg/group"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
	"github.com/sebastiaanschool/schoolhub/pkg/security/password"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// NewForTesting returns a core kept entirely in memory, with the cheapest
// password hashing and a silent logger
func NewForTesting() (*Core, error) {
	conf := config.Config{
		Auth: config.Auth{
			Secret:     "test secret",
			SessionTTL: time.Hour,
			Cache:      config.DriverMemory,
		},
		Password: config.Password{Cost: bcrypt.MinCost},
	}

	stores := Stores{
		Accounts:  account.NewMemoryStore(),
		Groups:    group.NewMemoryStore(),
		Passwords: password.NewMemoryStore(),
		Devices:   device.NewMemoryStore(),
		Content:   content.NewMemoryStore(),
	}

	cache, err := auth.NewMemoryCache(conf.Auth.SessionTTL)
	if err != nil {
		return nil, err
	}

	c := &Core{}
	if err = c.SetLogger(zap.NewNop()); err != nil {
		return nil, err
	}

	c.closers = append(c.closers, cache.Close)

	if err = c.assemble(stores, cache, conf); err != nil {
		return nil, err
	}

	return c, nil
}
