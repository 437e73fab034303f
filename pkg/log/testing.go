// Test helpers: capture log output in memory so tests can assert on the
// structured fields without touching the process-wide logger configuration.
package log

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
)

// Capture is an in-memory log sink for tests.
type Capture struct {
	buf *bytes.Buffer
}

// NewCapture returns a zerolog logger writing JSON lines into the capture.
func NewCapture(level zerolog.Level) (zerolog.Logger, *Capture) {
	c := &Capture{buf: &bytes.Buffer{}}
	l := zerolog.New(c.buf).Level(level)
	return l, c
}

// String returns everything logged so far.
func (c *Capture) String() string {
	return c.buf.String()
}

// Contains reports whether any logged line contains the substring.
func (c *Capture) Contains(sub string) bool {
	return strings.Contains(c.buf.String(), sub)
}

// Entries decodes each logged JSON line into a map. Lines that fail to decode
// are skipped.
func (c *Capture) Entries() []map[string]interface{} {
	var out []map[string]interface{}
	for _, line := range strings.Split(c.buf.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}
