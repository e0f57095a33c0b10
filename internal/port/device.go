package port

import "context"

// Device is a compute device that can receive data buffers. Transfer with
// block=false may fail fast under memory pressure instead of waiting for
// capacity; block=true waits.
type Device interface {
	// Name identifies the device for error messages
	Name() string

	// Transfer copies buf onto the device
	Transfer(ctx context.Context, buf []byte, block bool) error
}
