// Package id provides identifier generation for locally created jobs.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefixes that distinguish locally generated ids from backend-issued ones.
const (
	MockPrefix     = "mock_"
	FallbackPrefix = "dalle_"
)

const randomLen = 9

// Generate creates a new id of the form <prefix><unix-ms>_<random>.
// Example: mock_1701432000123_3f9a1c0b2
func Generate(prefix string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:randomLen]
	return fmt.Sprintf("%s%d_%s", prefix, now.UnixMilli(), random)
}

// Mock creates a mock-mode job id stamped with now.
func Mock(now time.Time) string {
	return Generate(MockPrefix, now)
}

// Fallback creates an image-fallback job id stamped with now.
func Fallback(now time.Time) string {
	return Generate(FallbackPrefix, now)
}

// IsMock reports whether id was generated for mock mode.
func IsMock(id string) bool {
	return strings.HasPrefix(id, MockPrefix)
}

// IsFallback reports whether id was generated by the image fallback.
func IsFallback(id string) bool {
	return strings.HasPrefix(id, FallbackPrefix)
}

// Timestamp extracts the creation time embedded in a generated id.
// It returns false if id carries no parsable timestamp.
func Timestamp(id string) (time.Time, bool) {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) < 2 {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
