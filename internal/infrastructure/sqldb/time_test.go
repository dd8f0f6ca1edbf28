package sqldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeDestScan(t *testing.T) {
	want := time.Date(2024, 3, 9, 14, 5, 6, 123000000, time.UTC)

	for _, src := range []any{
		"2024-03-09 14:05:06.123",
		[]byte("2024-03-09 14:05:06.123000"),
		"2024-03-09T14:05:06.123Z",
		want.In(time.FixedZone("x", 3600)),
	} {
		var got time.Time
		require.NoError(t, timeDest{&got}.Scan(src), "%v", src)
		assert.True(t, want.Equal(got), "%v -> %v", src, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	var got time.Time
	require.NoError(t, timeDest{&got}.Scan(int64(1700000000)))
	assert.Equal(t, int64(1700000000), got.Unix())

	assert.Error(t, timeDest{&got}.Scan("yesterday"))
	assert.Error(t, timeDest{&got}.Scan(3.14))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
	assert.Equal(t, "p.thumbnail_url", fieldColumns("p")[:len("p.thumbnail_url")])
}
