package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBigEndianRoundTrip(t *testing.T) {
	var u16 uint16 = 0xBEEF
	assert.Equal(t, u16, GetUint16(PutUint16(nil, u16)))

	var u32 uint32 = 0xDEADBEEF
	assert.Equal(t, u32, GetUint32(PutUint32(nil, u32)))

	var u64 uint64 = 0x0102030405060708
	assert.Equal(t, u64, GetUint64(PutUint64(nil, u64)))
}

func TestPutAppendsToExistingSlice(t *testing.T) {
	dst := []byte{0xFF}
	out := PutUint16(dst, 1)
	assert.Equal(t, []byte{0xFF, 0x00, 0x01}, out)
}

func TestGetUintShortReadZeroPads(t *testing.T) {
	// Missing trailing bytes are treated as zero, as if appended after buf.
	assert.Equal(t, uint32(0x00010000), GetUint32([]byte{0x00, 0x01}))
	assert.Equal(t, uint64(0), GetUint64(nil))
}

func TestGetUintWidth(t *testing.T) {
	assert.Equal(t, uint64(0x01), GetUintWidth([]byte{0x01}, 1))
	assert.Equal(t, uint64(0x0102), GetUintWidth([]byte{0x01, 0x02}, 2))
}
