package ibmi

import (
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/jguillaumes/go-ibmi/internal/codec"
	"github.com/jguillaumes/go-ibmi/internal/framing"
	"github.com/jguillaumes/go-ibmi/internal/hostsrv"
)

// signonExchangeAttributesResponsePayload builds a Sign-on Verify
// exchange-attributes response carrying serverLevel as the negotiated
// client datastream level, per spec §4.5 step 1.
func signonExchangeAttributesResponsePayload(serverLevel uint16) []byte {
	body := framingDynamicFields(
		dynField{hostsrv.CPClientVersion, codec.PutUint32(nil, 1)},
		dynField{hostsrv.CPClientDatastreamLevel, codec.PutUint16(nil, serverLevel)},
		dynField{hostsrv.CPClientSeed, codec.PutUint64(nil, 0x0102030405060708)},
	)
	payload := make([]byte, 20)
	payload = append(payload, body...)
	return payload
}

// signonAuthenticateResponsePayload builds a successful Sign-on Verify
// authenticate response (resultCode 0, no trailing fields).
func signonAuthenticateResponsePayload() []byte {
	payload := make([]byte, 20)
	payload = append(payload, 0, 0, 0, 0) // resultCode = 0
	return payload
}

// dynField is one {CP, data} pair used to assemble a response body.
type dynField struct {
	cp   uint16
	data []byte
}

// framingDynamicFields mirrors writeDynamicField's wire layout directly so
// fake-server responses stay byte-for-byte compatible with production
// parsing without importing internal/framing here.
func framingDynamicFields(fields ...dynField) []byte {
	var out []byte
	for _, f := range fields {
		var ll [4]byte
		binary.BigEndian.PutUint32(ll[:], uint32(len(f.data)+6))
		out = append(out, ll[:]...)
		var cp [2]byte
		binary.BigEndian.PutUint16(cp[:], f.cp)
		out = append(out, cp[:]...)
		out = append(out, f.data...)
	}
	return out
}

// runSignonHandshakeAgainstFakeServer connects and authenticates to a
// one-shot fake Sign-on Verify server that negotiates serverLevel, then
// returns the raw bytes of the authenticate request it captured.
func runSignonHandshakeAgainstFakeServer(t *testing.T, serverLevel uint16) []byte {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	responses := [][]byte{
		signonExchangeAttributesResponsePayload(serverLevel),
		signonAuthenticateResponsePayload(),
	}
	var captured [][]byte
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, acceptErr := ln.Accept()
		require.NoError(t, acceptErr)
		defer conn.Close()

		for _, resp := range responses {
			var reqLenBuf [4]byte
			_, readErr := io.ReadFull(conn, reqLenBuf[:])
			require.NoError(t, readErr)
			reqLen := binary.BigEndian.Uint32(reqLenBuf[:])
			reqBody := make([]byte, reqLen-4)
			_, readErr = io.ReadFull(conn, reqBody)
			require.NoError(t, readErr)
			captured = append(captured, reqBody)

			var out [4]byte
			binary.BigEndian.PutUint32(out[:], uint32(len(resp)+4))
			_, writeErr := conn.Write(out[:])
			require.NoError(t, writeErr)
			_, writeErr = conn.Write(resp)
			require.NoError(t, writeErr)
		}
	}()

	sess := NewSession(ConnectionConfig{
		Host:             "127.0.0.1",
		UserName:         "TESTUSER",
		Password:         "secret12",
		SignonVerifyPort: ln.Addr().(*net.TCPAddr).Port,
	}, logrus.StandardLogger())

	require.NoError(t, sess.connectSignonVerify())
	require.NoError(t, sess.authenticateSignonVerify())
	<-done

	require.Len(t, captured, 2)
	return captured[1]
}

func TestAuthenticateSignonVerifyOmitsReturnErrorMessagesBelowLevel5(t *testing.T) {
	authReq := runSignonHandshakeAgainstFakeServer(t, 4)

	r := framing.NewReader(authReq)
	require.NoError(t, r.Skip(17)) // 16-byte header + 1-byte encType
	fields, err := parseDynamicFields(r)
	require.NoError(t, err)

	_, ok := findField(fields, hostsrv.CPReturnErrorMessages)
	require.False(t, ok, "CP 0x1128 must not be sent when serverLevel < 5")
}

func TestAuthenticateSignonVerifyIncludesReturnErrorMessagesAtLevel5(t *testing.T) {
	authReq := runSignonHandshakeAgainstFakeServer(t, 5)

	r := framing.NewReader(authReq)
	require.NoError(t, r.Skip(17))
	fields, err := parseDynamicFields(r)
	require.NoError(t, err)

	f, ok := findField(fields, hostsrv.CPReturnErrorMessages)
	require.True(t, ok, "CP 0x1128 must be sent when serverLevel >= 5")
	require.Equal(t, []byte{1}, f.Data)
}
