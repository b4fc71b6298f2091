package auth_test

import (
	"context"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testCache(a *assert.Assertions, c auth.Cache) {
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	a.Equal(auth.ErrCacheMiss, errors.Cause(err))

	a.NoError(c.Put(ctx, "key", []byte("value"), time.Hour))

	entry, err := c.Get(ctx, "key")
	a.NoError(err)
	a.Equal([]byte("value"), entry)

	a.NoError(c.Delete(ctx, "key"))
	a.NoError(c.Delete(ctx, "key"))

	_, err = c.Get(ctx, "key")
	a.Equal(auth.ErrCacheMiss, errors.Cause(err))
}

func TestMemoryCache(t *testing.T) {
	a := assert.New(t)

	c, err := auth.NewMemoryCache(time.Hour)
	a.NoError(err)
	defer c.Close()

	testCache(a, c)
}

func TestBadgerCache(t *testing.T) {
	a := assert.New(t)

	dir, err := ioutil.TempDir("", "schoolhub-badger")
	a.NoError(err)
	defer os.RemoveAll(dir)

	c, err := auth.NewBadgerCache(dir, zap.NewNop())
	a.NoError(err)
	defer c.Close()

	testCache(a, c)
}
