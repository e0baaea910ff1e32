package crypto

import (
	"crypto/sha1"
	"strings"

	"github.com/jguillaumes/go-ibmi/internal/codec"
)

// SHA1PasswordProof computes the 20-byte SHA-1 password authenticator used
// when the negotiated password level is above 2.
func SHA1PasswordProof(userName, password string, serverSeed, clientSeed uint64) [20]byte {
	paddedName := codec.PadRight(strings.ToUpper(userName), 10)
	nameUTF16, err := codec.ToUTF16BE(paddedName)
	if err != nil {
		panic(err)
	}
	tokenInput, err := codec.ToUTF16BE(paddedName + password)
	if err != nil {
		panic(err)
	}
	token := sha1.Sum(tokenInput)

	serverSeedBytes := beBytes(serverSeed)
	clientSeedBytes := beBytes(clientSeed)
	oneBytes := beBytes(1)

	mix := make([]byte, 0, len(token)+8+8+len(nameUTF16)+8)
	mix = append(mix, token[:]...)
	mix = append(mix, serverSeedBytes[:]...)
	mix = append(mix, clientSeedBytes[:]...)
	mix = append(mix, nameUTF16...)
	mix = append(mix, oneBytes[:]...)

	return sha1.Sum(mix)
}

// SelectProof reports whether DES (rather than SHA-1) should be used for the
// given negotiated password level, per spec §4.4's selection rule.
func SelectProof(passwordLevel uint8) (useDES bool) {
	return passwordLevel <= 2
}
