package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.NotNil(t, Conf)
	assert.Equal(t, 1048576, Conf.Readv.MAX_IOV)
	assert.Equal(t, 32, Conf.Readv.SCRATCH_IOV)
}

func TestReadConfig(t *testing.T) {
	c := ReadConfig(stress)
	assert.Equal(t, 1024, c.Readv.MAX_IOV)
}
