package resource

import "context"

// Reservation is memory held by one operation across several steps. Grow
// replaces the held bytes with a single larger request, so an operation never
// waits on memory it holds itself.
type Reservation struct {
	c     *Controller
	bytes int64
}

// Reserve acquires bytes and returns them as a Reservation.
func (c *Controller) Reserve(ctx context.Context, bytes int64) (*Reservation, error) {
	if err := c.AcquireMemory(ctx, bytes); err != nil {
		return nil, err
	}
	return &Reservation{c: c, bytes: max(bytes, 0)}, nil
}

// Grow extends the reservation by bytes. The held and the new bytes are
// requested together: if their sum exceeds the limit Grow fails with a
// MemoryLimitError. On error the reservation holds nothing.
func (r *Reservation) Grow(ctx context.Context, bytes int64) error {
	if bytes <= 0 {
		return nil
	}
	total := r.bytes + bytes
	r.c.ReleaseMemory(r.bytes)
	r.bytes = 0
	if err := r.c.AcquireMemory(ctx, total); err != nil {
		return err
	}
	r.bytes = total
	return nil
}

// Bytes returns the bytes currently held.
func (r *Reservation) Bytes() int64 { return r.bytes }

// Release returns the held bytes to the controller. It is safe to call more
// than once.
func (r *Reservation) Release() {
	r.c.ReleaseMemory(r.bytes)
	r.bytes = 0
}
