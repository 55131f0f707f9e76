package checkout

import (
	"strconv"
	"sync"
	"time"
)

const OrderNumberPrefix = "PED"

// NumberGenerator issues PED<unix-millis> order numbers. Numbers are
// strictly increasing within a process, so two attempts in the same
// millisecond still get distinct numbers.
type NumberGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{now: time.Now}
}

func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return OrderNumberPrefix + strconv.FormatInt(ms, 10)
}
