package orders

import (
	"fmt"
	"time"
)

// NumberFor derives an order number from the order time. Collisions are
// possible at millisecond granularity; the orders table carries a unique index
// and a duplicate insert surfaces as ErrOrderNumberConflict so the caller can
// retry with a fresh number.
func NumberFor(t time.Time) string {
	return fmt.Sprintf("PC%d", t.UnixMilli())
}
