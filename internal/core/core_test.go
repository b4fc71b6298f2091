package core_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/config"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/pkg/account"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/sebastiaanschool/schoolhub/pkg/enrollment"
	"github.com/sebastiaanschool/schoolhub/pkg/group"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewInMemory(t *testing.T) {
	a := assert.New(t)

	c, err := core.New(context.Background(), config.Config{
		Database: config.Database{Driver: config.DriverMemory},
		Content:  config.Content{Driver: config.DriverMemory},
		Auth:     config.Auth{Secret: "secret", Cache: config.DriverMemory},
	}, zap.NewNop())
	a.NoError(err)
	a.NotNil(c.AccountManager())
	a.NotNil(c.ContentManager())
	a.NotNil(c.Authenticator())
	a.NoError(c.Close())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	a := assert.New(t)

	_, err := core.New(context.Background(), config.Config{
		Database: config.Database{Driver: config.DriverMemory},
		Content:  config.Content{Driver: config.DriverMemory},
		Auth:     config.Auth{Cache: config.DriverMemory},
	}, zap.NewNop())
	a.Equal(config.ErrEmptySecret, errors.Cause(err))
}

func TestUnenrollCascades(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	c, err := core.NewForTesting()
	a.NoError(err)
	defer c.Close()

	req := enrollment.Request{
		Username: "device-" + strings.Repeat("a", 20),
		Password: strings.Repeat("p", 20),
	}

	acc, err := c.Enrollment().Enroll(ctx, req)
	a.NoError(err)

	_, err = c.DeviceManager().Registration(ctx, acc.ID)
	a.NoError(err)

	g, err := c.GroupManager().GroupByKey(ctx, group.SelfEnrolledKey)
	a.NoError(err)

	isMember, err := c.GroupManager().IsMember(ctx, g, acc.ID)
	a.NoError(err)
	a.True(isMember)

	_, token, err := c.Authenticator().Login(ctx, req.Username, []byte(req.Password))
	a.NoError(err)

	s, err := c.Authenticator().SessionByAccessToken(ctx, token)
	a.NoError(err)

	a.NoError(c.Enrollment().Unenroll(ctx, acc.ID, s.ID))

	_, err = c.AccountManager().AccountByID(ctx, acc.ID)
	a.Equal(account.ErrAccountNotFound, errors.Cause(err))

	_, err = c.DeviceManager().Registration(ctx, acc.ID)
	a.Equal(device.ErrRegistrationNotFound, errors.Cause(err))

	isMember, err = c.GroupManager().IsMember(ctx, g, acc.ID)
	a.NoError(err)
	a.False(isMember)

	ok, err := c.PasswordManager().Compare(ctx, acc.ID, []byte(req.Password))
	a.NoError(err)
	a.False(ok)

	_, err = c.Authenticator().SessionByAccessToken(ctx, token)
	a.Error(err)
}
