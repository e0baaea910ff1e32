// Package crypto implements the two password-proof constructions the IBM i
// host servers require during authentication: the platform's DES variant
// of RFC 2877 §5 and its SHA-1 successor. Neither is available from any
// third-party package in the retrieval pack — both are direct, bit-exact
// use of the standard library's block-cipher and hash primitives, not a
// protocol a higher-level crypto package would simplify.
package crypto

import (
	"crypto/des"
	"encoding/binary"
	"strings"

	"github.com/jguillaumes/go-ibmi/internal/codec"
)

// DESPasswordProof computes the 8-byte DES password authenticator of
// RFC 2877 §5 for userName/password, keyed by the current server and client
// seeds.
func DESPasswordProof(userName, password string, serverSeed, clientSeed uint64) [8]byte {
	token := passwordToken(userName, password)
	ua, ub := userNameHalves(userName)

	seedPlusOne := serverSeed + 1

	r1 := desEncryptBlock(token, beBytes(seedPlusOne))
	r2 := desEncryptBlock(token, beBytes(beUint64(r1)^clientSeed))
	r3 := desEncryptBlock(token, beBytes(beUint64(ua)^seedPlusOne^beUint64(r2)))
	r4 := desEncryptBlock(token, beBytes(beUint64(ub)^seedPlusOne^beUint64(r3)))
	result := desEncryptBlock(token, beBytes(beUint64(r4)^1))
	return result
}

// passwordToken forms the 8-byte password token of RFC 2877 §5 step 1.
func passwordToken(userName, password string) [8]byte {
	if len(password) <= 8 {
		return tokenForPasswordHalf(userName, password)
	}
	first := password[:8]
	second := password[8:]
	t1 := tokenForPasswordHalf(userName, first)
	t2 := tokenForPasswordHalf(userName, second)
	var out [8]byte
	for i := range out {
		out[i] = t1[i] ^ t2[i]
	}
	return out
}

// tokenForPasswordHalf encrypts the DES-prepared user name with a key
// derived from one 8-byte password half.
func tokenForPasswordHalf(userName, passwordHalf string) [8]byte {
	key := passwordKey(passwordHalf)
	plaintext := prepareUserNameForDES(userName)
	return desEncryptBlock(key, plaintext)
}

// passwordKey derives the DES key from one password half: uppercase,
// space-pad/truncate to 8, EBCDIC-encode, XOR with the alternating-bit
// pattern, then shift left by one bit.
func passwordKey(passwordHalf string) [8]byte {
	padded := codec.PadRight(strings.ToUpper(passwordHalf), 8)
	ebc := codec.ASCIIToEBCDIC37([]byte(padded))
	var v [8]byte
	copy(v[:], ebc)
	u := beUint64(v) ^ 0x5555_5555_5555_5555
	u <<= 1
	return beBytes(u)
}

// prepareUserNameForDES builds the "U" plaintext block used as the DES
// password-token input. Names of 8 characters or fewer are simply
// space-padded and EBCDIC-encoded; names of 9 or 10 characters fold the
// 9th/10th EBCDIC byte into the 8-byte block as 2-bit fields, per RFC 2877.
func prepareUserNameForDES(userName string) [8]byte {
	name := strings.ToUpper(userName)
	if len(name) <= 8 {
		padded := codec.PadRight(name, 8)
		var out [8]byte
		copy(out[:], codec.ASCIIToEBCDIC37([]byte(padded)))
		return out
	}

	var out [8]byte
	copy(out[:], codec.ASCIIToEBCDIC37([]byte(name[:8])))
	extra := codec.ASCIIToEBCDIC37([]byte(codec.PadRight(name[8:], 2)))
	e9, e10 := extra[0], extra[1]

	out[0] ^= e9 & 0xC0
	out[1] ^= (e9 & 0x30) << 2
	out[2] ^= (e9 & 0x0C) << 4
	out[3] ^= (e9 & 0x03) << 6

	out[4] ^= e10 & 0xC0
	out[5] ^= (e10 & 0x30) << 2
	out[6] ^= (e10 & 0x0C) << 4
	out[7] ^= (e10 & 0x03) << 6

	return out
}

// userNameHalves builds UA and UB: the plain (unfolded) EBCDIC encoding of
// the user name, space-padded to 16 characters and split into two 8-byte
// halves.
func userNameHalves(userName string) (ua, ub [8]byte) {
	padded := codec.PadRight(strings.ToUpper(userName), 16)
	ebc := codec.ASCIIToEBCDIC37([]byte(padded))
	copy(ua[:], ebc[:8])
	copy(ub[:], ebc[8:16])
	return ua, ub
}

// desEncryptBlock performs one single-block DES-ECB encryption.
func desEncryptBlock(key, plaintext [8]byte) [8]byte {
	block, err := des.NewCipher(key[:])
	if err != nil {
		// des.NewCipher only fails on a key of the wrong length; key is
		// always exactly 8 bytes here.
		panic(err)
	}
	var out [8]byte
	block.Encrypt(out[:], plaintext[:])
	return out
}

func beUint64(b [8]byte) uint64 {
	return binary.BigEndian.Uint64(b[:])
}

func beBytes(v uint64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b
}
