package council

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock supplies event timestamps. Pluggable so tests can replay a session
// with a frozen clock and get byte-identical streams.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock (UTC).
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator mints session and motion ids. Pluggable for the same reason
// as Clock.
type IDGenerator interface {
	NewSessionID() string
	NewMotionID() string
}

// UUIDGenerator is the production id source.
type UUIDGenerator struct{}

func (UUIDGenerator) NewSessionID() string { return "sess-" + uuid.NewString() }
func (UUIDGenerator) NewMotionID() string  { return "motion-" + uuid.NewString() }

// SequentialIDGenerator mints predictable ids; intended for tests and
// replay tooling.
type SequentialIDGenerator struct {
	Prefix   string
	sessions int
	motions  int
}

func (g *SequentialIDGenerator) NewSessionID() string {
	g.sessions++
	return fmt.Sprintf("%ssess-%03d", g.Prefix, g.sessions)
}

func (g *SequentialIDGenerator) NewMotionID() string {
	g.motions++
	return fmt.Sprintf("%smotion-%03d", g.Prefix, g.motions)
}
