package hostsrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAuthResultSpecificCodes(t *testing.T) {
	assert.Equal(t, AuthUnknownUser, ClassifyAuthResult(0x0002_0001))
	assert.Equal(t, AuthUserLocked, ClassifyAuthResult(0x0002_0002))
	assert.Equal(t, AuthUserMismatch, ClassifyAuthResult(0x0002_0003))
	assert.Equal(t, AuthBadPassword, ClassifyAuthResult(0x0003_000B))
	assert.Equal(t, AuthBadPasswordWillRevoke, ClassifyAuthResult(0x0003_000C))
	assert.Equal(t, AuthPasswordExpired, ClassifyAuthResult(0x0003_000D))
	assert.Equal(t, AuthPasswordPreV2R2Encrypted, ClassifyAuthResult(0x0003_000E))
	assert.Equal(t, AuthPasswordIsNone, ClassifyAuthResult(0x0003_0010))
}

func TestClassifyAuthResultUpperBitsFallback(t *testing.T) {
	assert.Equal(t, AuthRequestDataError, ClassifyAuthResult(0x0001_00FF))
	assert.Equal(t, AuthGeneralSecurityFailure, ClassifyAuthResult(0x0004_0001))
	assert.Equal(t, AuthTokenError, ClassifyAuthResult(0x0006_0002))
}

func TestClassifyAuthResultUnknown(t *testing.T) {
	assert.Equal(t, AuthUnknown, ClassifyAuthResult(0x00FF_00FF))
}

func TestServerInfoResultOK(t *testing.T) {
	for _, code := range []uint16{0x0000, 0x0100, 0x0104, 0x0105, 0x0106, 0x0107, 0x0108} {
		assert.True(t, ServerInfoResultOK(code), "code %#x should be acceptable", code)
	}
	assert.False(t, ServerInfoResultOK(0x0200))
}

func TestMessageOptionForThresholds(t *testing.T) {
	assert.Equal(t, uint8(0), MessageOptionFor(0))
	assert.Equal(t, uint8(0), MessageOptionFor(6))
	assert.Equal(t, uint8(2), MessageOptionFor(7))
	assert.Equal(t, uint8(2), MessageOptionFor(9))
	assert.Equal(t, uint8(4), MessageOptionFor(10))
	assert.Equal(t, uint8(4), MessageOptionFor(12))
}
