package ibmi

import (
	"fmt"
	"time"

	"github.com/jguillaumes/go-ibmi/internal/codec"
	"github.com/jguillaumes/go-ibmi/internal/crypto"
	"github.com/jguillaumes/go-ibmi/internal/framing"
	"github.com/jguillaumes/go-ibmi/internal/hostsrv"
	"github.com/jguillaumes/go-ibmi/internal/transport"
)

// clientAttrSHA1Capable and clientAttrReturnJobInfo are the Remote Command
// exchange-attributes and authenticate frames' client-attributes byte, per
// spec §4.5.
const (
	clientAttrSHA1Capable   uint8 = 1
	clientAttrReturnJobInfo uint8 = 2
)

// connectRemoteCommand opens the Remote Command channel and exchanges
// seeds, per spec §4.5 step 1.
func (s *Session) connectRemoteCommand() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.remoteCommandPort())
	conn, err := transport.Dial(addr, s.config.TLSEnabled, tlsPolicy(s.config), s.config.TLSCACertPEM, s.log)
	if err != nil {
		return fmt.Errorf("%w: connect remote command: %v", ErrTransport, err)
	}
	s.rcConn = conn
	s.rcClientSeed = uint64(time.Now().UnixMilli())
	s.rcServerSeed = 0

	full := framing.NewWriter(32)
	writeHeader(full, clientAttrSHA1Capable, 0, hostsrv.ServerIDRemoteCommand, 8, hostsrv.ReqRepRCExchangeAttributes)
	full.PutUint64(s.rcClientSeed)

	if err := s.rcConn.Write(full.Bytes()); err != nil {
		return fmt.Errorf("%w: send remote command exchange-attributes: %v", ErrTransport, err)
	}
	resp, err := s.rcConn.Read()
	if err != nil {
		return fmt.Errorf("%w: read remote command exchange-attributes response: %v", ErrTransport, err)
	}
	// outer length(4) + header(20) + reserved(16) + resultCode(4) + serverSeed(8)
	if len(resp) < 52 {
		return fmt.Errorf("%w: remote command exchange-attributes response too short (%d bytes)", ErrProtocol, len(resp))
	}

	r := framing.NewReader(resp)
	if err := r.Skip(24); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if err := r.Skip(16); err != nil { // reserved
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	resultCode, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if resultCode != 0 {
		return fmt.Errorf("%w: remote command exchange-attributes failed, result=0x%08X", ErrAuthentication, resultCode)
	}
	serverSeed, err := r.ReadUint64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	s.rcServerSeed = serverSeed

	s.state = RcConnected
	return nil
}

// authenticateRemoteCommand computes the password proof and authenticates
// on the Remote Command channel, per spec §4.5 step 2.
func (s *Session) authenticateRemoteCommand() error {
	if s.state != RcConnected {
		return fmt.Errorf("%w: AuthenticateToRemoteCommand called from state %s", ErrProtocol, s.state)
	}

	useDES := crypto.SelectProof(s.passwordLevel)
	var encPwd []byte
	var encType uint8
	if useDES {
		proof := crypto.DESPasswordProof(s.config.UserName, s.config.Password, s.rcServerSeed, s.rcClientSeed)
		encPwd = proof[:]
		encType = hostsrv.PasswordEncryptionDES
	} else {
		proof := crypto.SHA1PasswordProof(s.config.UserName, s.config.Password, s.rcServerSeed, s.rcClientSeed)
		encPwd = proof[:]
		encType = hostsrv.PasswordEncryptionSHA1
	}

	body := framing.NewWriter(64)
	writeDynamicField(body, hostsrv.CPPassword, encPwd)
	writeDynamicField(body, hostsrv.CPUserID, codec.ASCIIStringToEBCDIC37(codec.PadRight(s.config.UserName, 10)))

	full := framing.NewWriter(20 + 2 + body.Len())
	writeHeader(full, clientAttrReturnJobInfo, 0, hostsrv.ServerIDRemoteCommand, 2, hostsrv.ReqRepRCAuthenticate)
	full.PutUint8(encType)
	full.PutUint8(1) // sendReply
	full.PutBytes(body.Bytes())

	if err := s.rcConn.Write(full.Bytes()); err != nil {
		return fmt.Errorf("%w: send remote command authenticate: %v", ErrTransport, err)
	}
	resp, err := s.rcConn.Read()
	if err != nil {
		return fmt.Errorf("%w: read remote command authenticate response: %v", ErrTransport, err)
	}
	if len(resp) < 28 {
		return fmt.Errorf("%w: remote command authenticate response too short (%d bytes)", ErrProtocol, len(resp))
	}

	r := framing.NewReader(resp)
	if err := r.Skip(24); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	resultCode, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if resultCode != 0 {
		class := hostsrv.ClassifyAuthResult(resultCode)
		return fmt.Errorf("%w: remote command authenticate failed, result=0x%08X class=%d", ErrAuthentication, resultCode, class)
	}

	fields, err := parseDynamicFields(r)
	if err != nil {
		return err
	}
	if f, ok := findField(fields, hostsrv.CPJobName); ok && len(f.Data) > 4 {
		s.jobName = codec.EBCDIC37ToASCIIString(f.Data[4:])
	}

	s.state = RcAuthed
	return nil
}

// retrieveRemoteCommandServerInformation negotiates CCSID, NLV and
// datastream level, per spec §4.5 step 3.
func (s *Session) retrieveRemoteCommandServerInformation() error {
	if s.state != RcAuthed {
		return fmt.Errorf("%w: RetrieveRemoteCommandServerInformation called from state %s", ErrProtocol, s.state)
	}

	full := framing.NewWriter(20 + 14)
	writeHeader(full, 0, 0, hostsrv.ServerIDRemoteCommand, 14, hostsrv.ReqRepRCRetrieveInfo)
	full.PutUint32(1200)
	full.PutBytes(codec.ASCIIStringToEBCDIC37(defaultNLV))
	full.PutUint32(1)
	full.PutUint16(0)

	if err := s.rcConn.Write(full.Bytes()); err != nil {
		return fmt.Errorf("%w: send retrieve server information: %v", ErrTransport, err)
	}
	resp, err := s.rcConn.Read()
	if err != nil {
		return fmt.Errorf("%w: read retrieve server information response: %v", ErrTransport, err)
	}
	if len(resp) < 20 {
		return fmt.Errorf("%w: retrieve server information response too short (%d bytes)", ErrProtocol, len(resp))
	}

	r := framing.NewReader(resp)
	if err := r.Skip(24); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	resultCode, err := r.ReadUint16()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if !hostsrv.ServerInfoResultOK(resultCode) {
		return fmt.Errorf("%w: retrieve server information failed, result=0x%04X", ErrServerInfo, resultCode)
	}

	if r.Len() >= 14 {
		ccsid, _ := r.ReadUint32()
		nlv, _ := r.ReadBytes(4)
		_, _ = r.ReadUint32() // reserved
		dsLevel, _ := r.ReadUint16()

		s.serverCCSID = ccsid
		s.serverNLV = codec.EBCDIC37ToASCIIString(nlv)
		s.serverDatastreamLevel = dsLevel
	}

	s.state = Ready
	return nil
}
