package pipeline

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are 26-character ULID-style strings: a 48-bit millisecond
// timestamp followed by 80 random bits, Crockford base32 encoded, so IDs
// sort by creation time.

var crockford = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

var (
	idMu     sync.Mutex
	idLastMs uint64
	idSeq    uint16
)

func newJobID() string {
	idMu.Lock()
	ms := uint64(time.Now().UnixMilli())
	if ms == idLastMs {
		idSeq++
	} else {
		idLastMs, idSeq = ms, 0
	}
	seq := idSeq
	idMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ms<<16)
	_, _ = rand.Read(b[6:])
	// Same-millisecond IDs stay ordered.
	binary.BigEndian.PutUint16(b[6:8], seq)
	return crockford.EncodeToString(b[:])
}
