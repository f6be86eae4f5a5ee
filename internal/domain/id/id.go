// Package id produces the two resource identifier kinds stored on the
// network: time-ordered ids for mutable records and content-derived ids
// for immutable blobs.
package id

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

const (
	// TimestampIDLen is the length of a TimestampID: 64 bits in 5-bit groups.
	TimestampIDLen = 13
	// ContentIDLen is the length of a ContentID: 128 bits in 5-bit groups.
	ContentIDLen = 26

	crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	contentDigestSize = 16
)

var (
	ErrInvalidTimestampID = errors.New("invalid timestamp id")

	crockford = base32.NewEncoding(crockfordAlphabet).WithPadding(base32.NoPadding)
)

// Clock abstracts time retrieval so generated ids are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// TimestampID encodes t as a 13-character base-32 string. Lexical order
// of the result matches chronological order of t.
func TimestampID(t time.Time) string {
	return encodeMicros(uint64(t.UnixMicro()))
}

// ParseTimestampID recovers the time encoded in s.
func ParseTimestampID(s string) (time.Time, error) {
	if !IsTimestampID(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestampID, s)
	}
	raw, err := crockford.DecodeString(s)
	if err != nil || len(raw) != 8 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestampID, s)
	}
	return time.UnixMicro(int64(binary.BigEndian.Uint64(raw))).UTC(), nil
}

// IsTimestampID reports whether s has the shape of a TimestampID.
func IsTimestampID(s string) bool {
	return len(s) == TimestampIDLen && inAlphabet(s)
}

// ContentID derives the blob id for data from half of its BLAKE3 digest.
// Identical bytes always yield the same id.
func ContentID(data []byte) string {
	sum := blake3.Sum256(data)
	return crockford.EncodeToString(sum[:contentDigestSize])
}

// IsContentID reports whether s has the shape of a ContentID.
func IsContentID(s string) bool {
	return len(s) == ContentIDLen && inAlphabet(s)
}

// Generator hands out strictly increasing TimestampIDs within a process,
// even when the clock stalls or steps backwards.
type Generator struct {
	clock Clock
	mu    sync.Mutex
	last  uint64
}

// NewGenerator returns a Generator reading from clock. A nil clock uses
// the wall clock.
func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = RealClock{}
	}
	return &Generator{clock: clock}
}

// Now reads the generator's clock.
func (g *Generator) Now() time.Time {
	return g.clock.Now()
}

// Next returns the next TimestampID.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	micros := uint64(g.clock.Now().UnixMicro())
	if micros <= g.last {
		micros = g.last + 1
	}
	g.last = micros
	return encodeMicros(micros)
}

func encodeMicros(micros uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], micros)
	return crockford.EncodeToString(buf[:])
}

func inAlphabet(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(crockfordAlphabet, r) {
			return false
		}
	}
	return true
}
