// Package crc implements the CRC-32 checksum used by ZIP archives.
//
// The lookup table for the IEEE polynomial is built once on first use and is safe for concurrent reads afterwards.
package crc

import (
	"hash"
	"sync"
)

const (
	// IEEE is the reversed form of the CRC-32 polynomial used by ZIP, gzip, and PNG.
	IEEE = 0xedb88320

	// Size is the size of a CRC-32 checksum in bytes.
	Size = 4
)

// Table is a 256-word table representing the polynomial for efficient processing.
type Table [256]uint32

// MakeTable returns a Table constructed from the specified reversed polynomial.
//
// The contents of the returned Table must not be modified.
func MakeTable(poly uint32) *Table {
	t := new(Table)
	for i := range t {
		crc := uint32(i)
		for j := 0; j < 8; j++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		t[i] = crc
	}

	return t
}

var ieeeTable = sync.OnceValue(func() *Table {
	return MakeTable(IEEE)
})

// IEEETable returns the shared Table for the IEEE polynomial.
func IEEETable() *Table {
	return ieeeTable()
}

// Update returns the result of adding the bytes in p to the crc.
//
// crc is the complemented running value, i.e. the return value of a previous Checksum or Update call (0 to start).
func Update(crc uint32, tab *Table, p []byte) uint32 {
	crc = ^crc
	for _, b := range p {
		crc = tab[byte(crc)^b] ^ (crc >> 8)
	}
	return ^crc
}

// Checksum returns the CRC-32 checksum of data using the polynomial represented by the Table.
func Checksum(data []byte, tab *Table) uint32 {
	return Update(0, tab, data)
}

// ChecksumIEEE returns the CRC-32 checksum of data using the IEEE polynomial.
func ChecksumIEEE(data []byte) uint32 {
	return Update(0, IEEETable(), data)
}

// digest implements hash.Hash32.
type digest struct {
	crc uint32
	tab *Table
}

// New creates a new hash.Hash32 computing the CRC-32 checksum using the polynomial represented by the Table.
func New(tab *Table) hash.Hash32 {
	return &digest{tab: tab}
}

// NewIEEE creates a new hash.Hash32 computing the CRC-32 checksum using the IEEE polynomial.
func NewIEEE() hash.Hash32 {
	return New(IEEETable())
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.crc = 0 }

func (d *digest) Write(p []byte) (n int, err error) {
	d.crc = Update(d.crc, d.tab, p)
	return len(p), nil
}

func (d *digest) Sum32() uint32 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}
