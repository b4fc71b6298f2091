package util_test

import (
	"testing"

	"github.com/sebastiaanschool/schoolhub/pkg/util"
	"github.com/stretchr/testify/assert"
)

func TestETag(t *testing.T) {
	a := assert.New(t)

	a.Equal(util.ETag([]byte("[]")), util.ETag([]byte("[]")))
	a.NotEqual(util.ETag([]byte("[]")), util.ETag([]byte("[{}]")))

	tag := util.ETag([]byte("payload"))
	a.True(len(tag) > 2)
	a.Equal(byte('"'), tag[0])
	a.Equal(byte('"'), tag[len(tag)-1])
}
