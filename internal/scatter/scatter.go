// Package scatter implements a constant-access-pattern lookup table: a
// fixed set of fixed-size records, laid out at construction under a
// seed-driven permutation, such that gathering any logical index reads
// every physical record exactly once. The permutation is there to keep
// a cache-timing observer from learning anything from *which* physical
// address holds the record a caller asked for; it is not
// cryptographic, and the seed is not secret-keyed, only table-keyed.
package scatter

import (
	"crypto/subtle"
	"errors"
)

// ErrRecordSize is returned when a record does not match the table's
// fixed record size.
var ErrRecordSize = errors.New("scatter: record size mismatch")

// ErrIndexRange is returned when a logical index is out of range.
var ErrIndexRange = errors.New("scatter: index out of range")

// Table is a constant-access-pattern lookup table of n fixed-size
// records.
type Table struct {
	recordSize int
	n          int
	// physical holds the n records in permuted physical order.
	physical [][]byte
	// logicalToPhysical[i] is the physical slot holding logical record i.
	logicalToPhysical []int
}

// New builds a Table from records, each of length recordSize, permuting
// their physical storage order deterministically from seed. Two tables
// built from the same records and seed are byte-for-byte identical;
// different seeds produce different physical layouts of the same
// logical contents.
func New(records [][]byte, recordSize int, seed uint64) (*Table, error) {
	n := len(records)
	for _, r := range records {
		if len(r) != recordSize {
			return nil, ErrRecordSize
		}
	}

	perm := permutation(n, seed)

	physical := make([][]byte, n)
	logicalToPhysical := make([]int, n)
	for logical, phys := range perm {
		buf := make([]byte, recordSize)
		copy(buf, records[logical])
		physical[phys] = buf
		logicalToPhysical[logical] = phys
	}

	return &Table{
		recordSize:        recordSize,
		n:                 n,
		physical:          physical,
		logicalToPhysical: logicalToPhysical,
	}, nil
}

// Len returns the number of logical records in the table.
func (t *Table) Len() int { return t.n }

// RecordSize returns the fixed size of each record.
func (t *Table) RecordSize() int { return t.recordSize }

// Gather copies the logical-index'th record into out (which must be
// RecordSize() bytes). Every physical record is read and
// mask-accumulated into out regardless of logicalIndex, so the
// sequence of addresses touched is the same for every call on a given
// table.
func (t *Table) Gather(out []byte, logicalIndex uint64) error {
	if len(out) != t.recordSize {
		return ErrRecordSize
	}
	if logicalIndex >= uint64(t.n) {
		return ErrIndexRange
	}

	targetPhys := t.logicalToPhysical[logicalIndex]

	for i := range out {
		out[i] = 0
	}

	for phys := 0; phys < t.n; phys++ {
		// subtle.ConstantTimeEq selects without a secret-dependent branch;
		// the loop itself still touches physical[phys] for every phys in
		// [0,n) on every call, regardless of logicalIndex.
		eq := subtle.ConstantTimeEq(int32(phys), int32(targetPhys))
		mask := byte(0 - eq)
		rec := t.physical[phys]
		for i := 0; i < t.recordSize; i++ {
			out[i] |= rec[i] & mask
		}
	}

	return nil
}

// permutation deterministically derives a permutation of [0,n) from
// seed using a splitmix64 stream feeding a Fisher-Yates shuffle. This
// is for address-layout diffusion only, not for secrecy: seed need not
// be kept secret, only varied per table instance.
func permutation(n int, seed uint64) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	state := seed
	next := func() uint64 {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		return z ^ (z >> 31)
	}

	for i := n - 1; i > 0; i-- {
		j := int(next() % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}

	return perm
}
