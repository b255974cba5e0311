//go:build !linux

package camera

import (
	"context"

	"github.com/aaearon/authlive/internal/scan"
)

// Open always fails: video capture needs V4L2.
func (c *V4L2) Open(ctx context.Context) (scan.Stream, error) {
	return nil, ErrUnsupported
}
