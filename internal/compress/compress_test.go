package compress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	payload := []byte(`{"type":"headline.created","headline_id":1,"forward_ref_ids":[2,3]}` + strings.Repeat(" ", 256))

	for _, name := range []string{"none", "gzip", "brotli", "lz4"} {
		t.Run(name, func(t *testing.T) {
			c, err := New(name)
			require.NoError(t, err)

			encoded, err := c.Encode(payload)
			require.NoError(t, err)
			if name != "none" {
				assert.Less(t, len(encoded), len(payload))
			}

			decoded, err := c.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}

	_, err := New("zstd")
	assert.Error(t, err)
}
