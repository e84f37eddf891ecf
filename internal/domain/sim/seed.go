// Package sim plays possessions, games and seasons on a built matrix
// pair and orchestrates multi-season runs.
package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"
)

// NewSeed draws a simulation seed from the system entropy pool,
// falling back to the clock if the pool is unavailable.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
