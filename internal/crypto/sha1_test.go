package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA1PasswordProofDeterministic(t *testing.T) {
	a := SHA1PasswordProof("QSECOFR", "QSECOFR", 0, 0)
	b := SHA1PasswordProof("QSECOFR", "QSECOFR", 0, 0)
	assert.Equal(t, a, b)
	assert.Len(t, a, 20)
}

func TestSHA1PasswordProofSeedSensitivity(t *testing.T) {
	base := SHA1PasswordProof("QSECOFR", "QSECOFR", 0, 0)
	flippedServer := SHA1PasswordProof("QSECOFR", "QSECOFR", 1, 0)
	flippedClient := SHA1PasswordProof("QSECOFR", "QSECOFR", 0, 1)
	assert.NotEqual(t, base, flippedServer)
	assert.NotEqual(t, base, flippedClient)
	assert.NotEqual(t, flippedServer, flippedClient)
}

func TestSHA1PasswordProofCredentialSensitivity(t *testing.T) {
	base := SHA1PasswordProof("QSECOFR", "QSECOFR", 0x1122_3344_5566_7788, 0x0102_0304_0506_0708)
	differentPassword := SHA1PasswordProof("QSECOFR", "OTHERPWD", 0x1122_3344_5566_7788, 0x0102_0304_0506_0708)
	differentUser := SHA1PasswordProof("OTHERUSR", "QSECOFR", 0x1122_3344_5566_7788, 0x0102_0304_0506_0708)
	assert.NotEqual(t, base, differentPassword)
	assert.NotEqual(t, base, differentUser)
}

func TestSelectProofPicksDESAtOrBelowLevelTwo(t *testing.T) {
	assert.True(t, SelectProof(0))
	assert.True(t, SelectProof(1))
	assert.True(t, SelectProof(2))
	assert.False(t, SelectProof(3))
	assert.False(t, SelectProof(10))
}
