// Package device moves data buffers onto compute devices with a
// retry-once-after-reclaim fallback for memory pressure.
package device

import (
	"context"
	"runtime"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/port"
	"github.com/ducnd58233/dataset-cache/internal/util/retry"
)

// Mover transfers buffers to a device. The first attempt is non-blocking;
// on failure a memory reclaim step runs and the transfer is retried once,
// blocking.
type Mover struct {
	reclaim func(ctx context.Context)
	logger  *zap.Logger
}

// NewMover creates a new Mover. reclaim may be nil, in which case the
// default reclaim (garbage collection plus returning freed memory to the
// OS) is used.
func NewMover(reclaim func(ctx context.Context), logger *zap.Logger) *Mover {
	if reclaim == nil {
		reclaim = defaultReclaim
	}
	return &Mover{reclaim: reclaim, logger: logger}
}

// Move transfers buf onto dev. On the initial non-blocking failure the
// reclaim step runs and one blocking retry follows; a second failure
// surfaces a composite error that includes the original failure.
func (m *Mover) Move(ctx context.Context, buf []byte, dev port.Device) error {
	return retry.WithRecovery(ctx, 1,
		func(ctx context.Context) {
			m.logger.Warn("device transfer failed, reclaiming memory",
				zap.String("device", dev.Name()),
				zap.Int("buffer_size", len(buf)))
			m.reclaim(ctx)
		},
		func(ctx context.Context, attempt int) error {
			block := attempt > 0
			return dev.Transfer(ctx, buf, block)
		},
	)
}

func defaultReclaim(_ context.Context) {
	runtime.GC()
	debug.FreeOSMemory()
}
