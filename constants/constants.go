package constants

import (
	"time"

	"github.com/keymint-io/keymint"
)

// ValidityCacheTTL bounds how long a cached key-validity result may be
// served. Status changes (revoke/refund) invalidate eagerly; this TTL is the
// worst-case staleness window for nodes that miss the invalidation.
const ValidityCacheTTL = time.Minute * 5

type Header struct {
	Name  string
	Value string
}

var (
	DefaultResponseHeaders = []Header{
		{Name: "Server", Value: "KeyMint/" + keymint.VERSION},
	}
)
