package crc

import (
	"bytes"
	"hash/crc32"
	"io"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumIEEE(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint32
	}{
		{
			name:     "empty",
			data:     []byte{},
			expected: 0,
		},
		{
			name:     "nil",
			expected: 0,
		},
		{
			name:     "check value",
			data:     []byte("123456789"),
			expected: 0xcbf43926,
		},
		{
			name:     "single zero byte",
			data:     []byte{0},
			expected: 0xd202ef8d,
		},
		{
			name:     "pangram",
			data:     []byte("The quick brown fox jumps over the lazy dog"),
			expected: 0x414fa339,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equalf(t, tt.expected, ChecksumIEEE(tt.data), "ChecksumIEEE(%q)", tt.data)
			assert.Equalf(t, tt.expected, Checksum(tt.data, IEEETable()), "Checksum(%q)", tt.data)
		})
	}
}

func TestMakeTable_MatchesStdlib(t *testing.T) {
	got := MakeTable(IEEE)
	want := crc32.MakeTable(crc32.IEEE)
	for i := range got {
		assert.Equalf(t, want[i], got[i], "table[%d]", i)
	}

	assert.Equal(t, uint32(0), got[0])
	assert.Equal(t, uint32(0x77073096), got[1])
	assert.Equal(t, uint32(0x2d02ef8d), got[255])
}

func TestChecksum_Random(t *testing.T) {
	for i := 0; i < 20; i++ {
		data := make([]byte, rand.IntN(64*1024))
		for j := range data {
			data[j] = byte(rand.Uint32())
		}

		a, b := ChecksumIEEE(data), ChecksumIEEE(data)
		assert.Equal(t, a, b)
		assert.Equal(t, crc32.ChecksumIEEE(data), a)
	}
}

func TestUpdate_Incremental(t *testing.T) {
	data := []byte("hello, world! this checksum is computed in several chunks.")

	var c uint32
	for _, chunk := range [][]byte{data[:5], data[5:17], data[17:], {}} {
		c = Update(c, IEEETable(), chunk)
	}

	assert.Equal(t, ChecksumIEEE(data), c)
}

func TestNewIEEE(t *testing.T) {
	data := bytes.Repeat([]byte("zipcheck"), 4096)

	h := NewIEEE()
	n, err := io.Copy(h, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, crc32.ChecksumIEEE(data), h.Sum32())
	assert.Equal(t, Size, h.Size())

	want := crc32.NewIEEE()
	_, _ = want.Write(data)
	assert.Equal(t, want.Sum([]byte{0xff}), h.Sum([]byte{0xff}))

	h.Reset()
	assert.Equal(t, uint32(0), h.Sum32())
}

func TestIEEETable_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]uint32, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = ChecksumIEEE([]byte("123456789"))
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, uint32(0xcbf43926), r)
	}
	assert.Same(t, IEEETable(), IEEETable())
}
