package countermeasure_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/nightkernel/sentinel/pkg/infra/countermeasure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipBombDecompressesToZeros(t *testing.T) {
	payload, err := countermeasure.ZipBomb()
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	// compressed zeros stay tiny relative to what they expand to
	assert.Less(t, len(payload), 1<<20)

	r, err := gzip.NewReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer r.Close()

	expanded, err := io.Copy(io.Discard, r) // #nosec G110
	require.NoError(t, err)
	assert.EqualValues(t, 10*1024*1024, expanded)
}

func TestZipBombIsCached(t *testing.T) {
	first, err := countermeasure.ZipBomb()
	require.NoError(t, err)
	second, err := countermeasure.ZipBomb()
	require.NoError(t, err)
	assert.Equal(t, &first[0], &second[0])
}

func TestEntropyHeaders(t *testing.T) {
	headers := countermeasure.EntropyHeaders(50)
	assert.Len(t, headers, 50)
	for name, value := range headers {
		assert.Contains(t, name, "X-")
		assert.NotEmpty(t, value)
	}

	fallback := countermeasure.EntropyHeaders(0)
	assert.Len(t, fallback, 200)
}

func TestLooksLikeSQLProbe(t *testing.T) {
	probes := []string{
		"id=1 UNION SELECT username, password FROM users",
		"name=' OR 1=1 --",
		"q='; DROP TABLE fans; --",
		"select * from information_schema.tables",
		"id=1 AND SLEEP(5)",
		"id=1%20UNION%20SELECT%20null",
	}
	for _, probe := range probes {
		assert.True(t, countermeasure.LooksLikeSQLProbe(probe), probe)
	}

	benign := []string{
		"",
		"message=loved the show last night",
		"search=union station directions",
		"email=fan@example.com",
	}
	for _, content := range benign {
		assert.False(t, countermeasure.LooksLikeSQLProbe(content), content)
	}
}
