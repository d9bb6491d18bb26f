package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C_KnownVector(t *testing.T) {
	// RFC 3720 appendix B.4 test vector.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))
}

func TestNewCRC32C_MatchesOneShot(t *testing.T) {
	data := []byte("snapshot section payload")

	h := NewCRC32C()
	_, _ = h.Write(data[:8])
	_, _ = h.Write(data[8:])

	assert.Equal(t, CRC32C(data), h.Sum32())
}
