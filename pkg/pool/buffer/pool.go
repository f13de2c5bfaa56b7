package buffer

import (
	"bytes"

	"github.com/huynhanx03/go-commons/pkg/pool/internal/calibrated"
)

var defaultPool = calibrated.New(
	func(size int) *bytes.Buffer {
		return bytes.NewBuffer(make([]byte, 0, size))
	},
	func(b *bytes.Buffer) int {
		return b.Cap()
	},
	func(b *bytes.Buffer) {
		b.Reset()
	},
)

// Get returns an empty buffer sized for the most common use.
func Get() *bytes.Buffer {
	return defaultPool.Get(0)
}

// Put returns a buffer to the pool. The buffer must not be used afterwards.
func Put(b *bytes.Buffer) {
	defaultPool.Put(b)
}
