package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns "<prefix>_<unixMillis>_<7 random chars>". Uniqueness rests on
// the millisecond plus random suffix; nothing checks for collisions.
func NewID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), randomSuffix(7))
}

func randomSuffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s[:n]
}
