package ibmi

import (
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/jguillaumes/go-ibmi/internal/codec"
	"github.com/jguillaumes/go-ibmi/internal/crypto"
	"github.com/jguillaumes/go-ibmi/internal/framing"
	"github.com/jguillaumes/go-ibmi/internal/hostsrv"
)

// HandshakeSuite drives Session.Connect() end-to-end against a fake
// dual-channel listener standing in for the Sign-on Verify and Remote
// Command host servers, and pins the exact wire bytes of each of the five
// handshake steps of spec §4.5. Mirrors callengine_test.go's
// fakeRemoteCommandServer/dialTestRcSession pattern, generalized to a
// persistent multi-round-trip connection per channel.
type HandshakeSuite struct {
	suite.Suite

	signonLn net.Listener
	rcLn     net.Listener

	signonReqs [][]byte
	rcReqs     [][]byte

	config ConnectionConfig
	sess   *Session
}

func TestHandshakeSuite(t *testing.T) {
	suite.Run(t, new(HandshakeSuite))
}

// Negotiated values the fake servers hand back. serverLevel is kept at 5
// or above so the Sign-on Verify authenticate step also exercises the
// CP 0x1128 return-error-messages field (see signon_test.go for the
// below-5 case).
const (
	fakeServerVersion         uint32 = 3
	fakeServerLevel           uint16 = 5
	fakeSignonServerSeed      uint64 = 0xAABBCCDD11223344
	fakePasswordLevel         uint8  = 0
	fakeSignonJobName                = "SIGNJOB01"
	fakeServerCCSID           uint32 = 1208
	fakeRcServerSeed          uint64 = 0x1122334455667788
	fakeRcJobName                    = "RCJOB0007"
	fakeServerDatastreamLevel uint16 = 9
)

func (s *HandshakeSuite) SetupTest() {
	var err error
	s.signonLn, err = net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.rcLn, err = net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	s.signonReqs = nil
	s.rcReqs = nil

	s.config = ConnectionConfig{
		Host:              "127.0.0.1",
		UserName:          "TESTUSER",
		Password:          "secret12",
		SignonVerifyPort:  s.signonLn.Addr().(*net.TCPAddr).Port,
		RemoteCommandPort: s.rcLn.Addr().(*net.TCPAddr).Port,
	}
	s.sess = NewSession(s.config, logrus.StandardLogger())

	signonDone := make(chan struct{})
	rcDone := make(chan struct{})
	go s.runFakeChannel(s.signonLn, signonResponsePayloads(), &s.signonReqs, signonDone)
	go s.runFakeChannel(s.rcLn, rcResponsePayloads(), &s.rcReqs, rcDone)

	s.Require().NoError(s.sess.Connect())
	<-signonDone
	<-rcDone
}

func (s *HandshakeSuite) TearDownTest() {
	s.signonLn.Close()
	s.rcLn.Close()
}

// runFakeChannel accepts exactly one connection and services len(responses)
// request/response round trips on it in order, capturing each request's
// body (with the outer length prefix already stripped) into *captured.
func (s *HandshakeSuite) runFakeChannel(ln net.Listener, responses [][]byte, captured *[][]byte, done chan<- struct{}) {
	defer close(done)
	conn, err := ln.Accept()
	s.Require().NoError(err)
	defer conn.Close()

	for _, resp := range responses {
		var reqLenBuf [4]byte
		_, err := io.ReadFull(conn, reqLenBuf[:])
		s.Require().NoError(err)
		reqLen := binary.BigEndian.Uint32(reqLenBuf[:])
		reqBody := make([]byte, reqLen-4)
		_, err = io.ReadFull(conn, reqBody)
		s.Require().NoError(err)
		*captured = append(*captured, reqBody)

		var out [4]byte
		binary.BigEndian.PutUint32(out[:], uint32(len(resp)+4))
		_, err = conn.Write(out[:])
		s.Require().NoError(err)
		_, err = conn.Write(resp)
		s.Require().NoError(err)
	}
}

// signonResponsePayloads builds the Sign-on Verify exchange-attributes and
// authenticate responses, in that order.
func signonResponsePayloads() [][]byte {
	exchangeBody := framingDynamicFields(
		dynField{hostsrv.CPClientVersion, codec.PutUint32(nil, fakeServerVersion)},
		dynField{hostsrv.CPClientDatastreamLevel, codec.PutUint16(nil, fakeServerLevel)},
		dynField{hostsrv.CPClientSeed, codec.PutUint64(nil, fakeSignonServerSeed)},
		dynField{hostsrv.CPPasswordLevel, []byte{fakePasswordLevel}},
		dynField{hostsrv.CPJobName, append(make([]byte, 4), codec.ASCIIStringToEBCDIC37(fakeSignonJobName)...)},
	)
	exchangeResp := append(make([]byte, 20), exchangeBody...)

	authBody := framingDynamicFields(
		dynField{hostsrv.CPServerCCSID, codec.PutUint32(nil, fakeServerCCSID)},
	)
	authResp := append(make([]byte, 20), append([]byte{0, 0, 0, 0}, authBody...)...) // resultCode=0

	return [][]byte{exchangeResp, authResp}
}

// rcResponsePayloads builds the Remote Command exchange-attributes,
// authenticate and retrieve-server-information responses, in that order.
func rcResponsePayloads() [][]byte {
	exchangeResp := make([]byte, 20+16) // header filler + reserved
	exchangeResp = append(exchangeResp, 0, 0, 0, 0) // resultCode=0
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], fakeRcServerSeed)
	exchangeResp = append(exchangeResp, seed[:]...)

	authBody := framingDynamicFields(
		dynField{hostsrv.CPJobName, append(make([]byte, 4), codec.ASCIIStringToEBCDIC37(fakeRcJobName)...)},
	)
	authResp := append(make([]byte, 20), append([]byte{0, 0, 0, 0}, authBody...)...)

	retrieveResp := make([]byte, 20)
	retrieveResp = append(retrieveResp, 0, 0) // resultCode=0 (uint16)
	var ccsid [4]byte
	binary.BigEndian.PutUint32(ccsid[:], fakeServerCCSID)
	retrieveResp = append(retrieveResp, ccsid[:]...)
	retrieveResp = append(retrieveResp, codec.ASCIIStringToEBCDIC37(defaultNLV)...)
	retrieveResp = append(retrieveResp, 0, 0, 0, 0) // reserved
	var dsLevel [2]byte
	binary.BigEndian.PutUint16(dsLevel[:], fakeServerDatastreamLevel)
	retrieveResp = append(retrieveResp, dsLevel[:]...)

	return [][]byte{exchangeResp, authResp, retrieveResp}
}

func (s *HandshakeSuite) TestConnectNegotiatesServerState() {
	s.Equal(Ready, s.sess.State())
	s.Equal(fakeServerVersion, s.sess.ServerVersion())
	s.Equal(fakeServerLevel, s.sess.ServerLevel())
	s.Equal(fakePasswordLevel, s.sess.PasswordLevel())
	s.Equal(fakeServerCCSID, s.sess.ServerCCSID())
	s.Equal(defaultNLV, s.sess.ServerNLV())
	s.Equal(fakeServerDatastreamLevel, s.sess.ServerDatastreamLevel())
	s.Equal(fakeRcJobName, s.sess.JobName())
}

func (s *HandshakeSuite) TestSignonExchangeAttributesRequestBytes() {
	body := framing.NewWriter(32)
	writeDynamicField(body, hostsrv.CPClientVersion, codec.PutUint32(nil, 1))
	writeDynamicField(body, hostsrv.CPClientDatastreamLevel, codec.PutUint16(nil, 2))
	writeDynamicField(body, hostsrv.CPClientSeed, codec.PutUint64(nil, s.sess.signonClientSeed))

	full := framing.NewWriter(20 + body.Len())
	writeHeader(full, 0, 0, hostsrv.ServerIDSignonVerify, 0, hostsrv.ReqRepSignonExchangeAttributes)
	full.PutBytes(body.Bytes())

	s.Require().Len(s.signonReqs, 2)
	s.Equal(full.Bytes(), s.signonReqs[0])
}

func (s *HandshakeSuite) TestSignonAuthenticateRequestBytes() {
	useDES := crypto.SelectProof(fakePasswordLevel)
	s.Require().True(useDES)
	proof := crypto.DESPasswordProof(s.config.UserName, s.config.Password, fakeSignonServerSeed, s.sess.signonClientSeed)

	body := framing.NewWriter(64)
	writeDynamicField(body, hostsrv.CPClientCCSID, codec.PutUint32(nil, 1200))
	writeDynamicField(body, hostsrv.CPPassword, proof[:])
	writeDynamicField(body, hostsrv.CPUserID, codec.ASCIIStringToEBCDIC37(codec.PadRight(s.config.UserName, 10)))
	writeDynamicField(body, hostsrv.CPReturnErrorMessages, []byte{1}) // serverLevel 5 >= 5

	full := framing.NewWriter(20 + 1 + body.Len())
	writeHeader(full, 0, 0, hostsrv.ServerIDSignonVerify, 1, hostsrv.ReqRepSignonAuthenticate)
	full.PutUint8(hostsrv.PasswordEncryptionDES)
	full.PutBytes(body.Bytes())

	s.Require().Len(s.signonReqs, 2)
	s.Equal(full.Bytes(), s.signonReqs[1])
}

func (s *HandshakeSuite) TestRemoteCommandExchangeAttributesRequestBytes() {
	full := framing.NewWriter(32)
	writeHeader(full, clientAttrSHA1Capable, 0, hostsrv.ServerIDRemoteCommand, 8, hostsrv.ReqRepRCExchangeAttributes)
	full.PutUint64(s.sess.rcClientSeed)

	s.Require().Len(s.rcReqs, 3)
	s.Equal(full.Bytes(), s.rcReqs[0])
}

func (s *HandshakeSuite) TestRemoteCommandAuthenticateRequestBytes() {
	useDES := crypto.SelectProof(fakePasswordLevel)
	s.Require().True(useDES)
	proof := crypto.DESPasswordProof(s.config.UserName, s.config.Password, fakeRcServerSeed, s.sess.rcClientSeed)

	body := framing.NewWriter(64)
	writeDynamicField(body, hostsrv.CPPassword, proof[:])
	writeDynamicField(body, hostsrv.CPUserID, codec.ASCIIStringToEBCDIC37(codec.PadRight(s.config.UserName, 10)))

	full := framing.NewWriter(20 + 2 + body.Len())
	writeHeader(full, clientAttrReturnJobInfo, 0, hostsrv.ServerIDRemoteCommand, 2, hostsrv.ReqRepRCAuthenticate)
	full.PutUint8(hostsrv.PasswordEncryptionDES)
	full.PutUint8(1)
	full.PutBytes(body.Bytes())

	s.Require().Len(s.rcReqs, 3)
	s.Equal(full.Bytes(), s.rcReqs[1])
}

func (s *HandshakeSuite) TestRemoteCommandRetrieveInfoRequestBytes() {
	full := framing.NewWriter(34)
	writeHeader(full, 0, 0, hostsrv.ServerIDRemoteCommand, 14, hostsrv.ReqRepRCRetrieveInfo)
	full.PutUint32(1200)
	full.PutBytes(codec.ASCIIStringToEBCDIC37(defaultNLV))
	full.PutUint32(1)
	full.PutUint16(0)

	s.Require().Len(s.rcReqs, 3)
	s.Equal(full.Bytes(), s.rcReqs[2])
}
