package srv

import "context"

// cleanupService runs fn at shutdown and does nothing on start, for
// resources like a database handle that outlive every other service.
type cleanupService struct {
	fn func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.fn == nil {
		return nil
	}
	return c.fn()
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{fn: fn}
}
