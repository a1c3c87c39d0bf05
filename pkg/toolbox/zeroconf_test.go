package toolbox

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestZeroConf(t *testing.T) {
	assert := require.New(t)

	ip, err := FindPublicIPv4()
	if err != nil {
		t.Skip("no public IPv4 interface on this host")
	}

	zr := NewZeroconfRegistry("test-cluster")
	assert.NoError(zr.Register("topology", "0", 9999))

	assert.Error(zr.Register("topology", "0", 9998), "Should not be able to register two endpoints")

	assert.NoError(zr.Register("topology", "1", 9999))

	defer zr.Shutdown()

	results, err := zr.Resolve("topology", 550*time.Millisecond)
	assert.NoError(err)
	assert.NotNil(results)

	res, err := zr.ResolveFirst("topology", 250*time.Millisecond)
	assert.NoError(err)
	assert.Equal(res, fmt.Sprintf("%s:9999", ip))
}
