package ibmi

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jguillaumes/go-ibmi/internal/codec"
	"github.com/jguillaumes/go-ibmi/internal/crypto"
	"github.com/jguillaumes/go-ibmi/internal/framing"
	"github.com/jguillaumes/go-ibmi/internal/hostsrv"
	"github.com/jguillaumes/go-ibmi/internal/transport"
)

// connectSignonVerify opens the Sign-on Verify channel, exchanges seeds and
// negotiated capabilities, per spec §4.5 step 1.
func (s *Session) connectSignonVerify() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.signonPort())
	conn, err := transport.Dial(addr, s.config.TLSEnabled, tlsPolicy(s.config), s.config.TLSCACertPEM, s.log)
	if err != nil {
		return fmt.Errorf("%w: connect signon verify: %v", ErrTransport, err)
	}
	s.signonConn = conn
	s.signonClientSeed = uint64(time.Now().UnixMilli())
	s.signonServerSeed = 0

	body := framing.NewWriter(32)
	writeDynamicField(body, hostsrv.CPClientVersion, codec.PutUint32(nil, 1))
	writeDynamicField(body, hostsrv.CPClientDatastreamLevel, codec.PutUint16(nil, 2))
	writeDynamicField(body, hostsrv.CPClientSeed, codec.PutUint64(nil, s.signonClientSeed))

	full := framing.NewWriter(20 + body.Len())
	writeHeader(full, 0, 0, hostsrv.ServerIDSignonVerify, 0, hostsrv.ReqRepSignonExchangeAttributes)
	full.PutBytes(body.Bytes())

	if s.log.IsLevelEnabled(logrus.TraceLevel) {
		s.log.Trace("sending Sign-on Verify exchange-attributes request")
	}
	if err := s.signonConn.Write(full.Bytes()); err != nil {
		return fmt.Errorf("%w: send signon exchange-attributes: %v", ErrTransport, err)
	}
	resp, err := s.signonConn.Read()
	if err != nil {
		return fmt.Errorf("%w: read signon exchange-attributes response: %v", ErrTransport, err)
	}
	if len(resp) < 24 {
		return fmt.Errorf("%w: signon exchange-attributes response too short (%d bytes)", ErrProtocol, len(resp))
	}

	r := framing.NewReader(resp)
	if err := r.Skip(24); err != nil { // outer length(4) + header(20)
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	fields, err := parseDynamicFields(r)
	if err != nil {
		return err
	}

	if f, ok := findField(fields, hostsrv.CPClientVersion); ok {
		s.serverVersion = codec.GetUint32(f.Data)
	}
	if f, ok := findField(fields, hostsrv.CPClientDatastreamLevel); ok {
		s.serverLevel = codec.GetUint16(f.Data)
	}
	if f, ok := findField(fields, hostsrv.CPClientSeed); ok {
		s.signonServerSeed = codec.GetUint64(f.Data)
	}
	if f, ok := findField(fields, hostsrv.CPPasswordLevel); ok && len(f.Data) >= 1 {
		s.passwordLevel = f.Data[0]
	}
	if f, ok := findField(fields, hostsrv.CPJobName); ok && len(f.Data) > 4 {
		s.jobName = codec.EBCDIC37ToASCIIString(f.Data[4:])
	}

	s.state = SignonConnected
	return nil
}

// authenticateSignonVerify computes the password proof and authenticates,
// per spec §4.5 step 2.
func (s *Session) authenticateSignonVerify() error {
	if s.state != SignonConnected {
		return fmt.Errorf("%w: AuthenticateToSignonVerify called from state %s", ErrProtocol, s.state)
	}

	useDES := crypto.SelectProof(s.passwordLevel)
	var encPwd []byte
	var encType uint8
	if useDES {
		proof := crypto.DESPasswordProof(s.config.UserName, s.config.Password, s.signonServerSeed, s.signonClientSeed)
		encPwd = proof[:]
		encType = hostsrv.PasswordEncryptionDES
	} else {
		proof := crypto.SHA1PasswordProof(s.config.UserName, s.config.Password, s.signonServerSeed, s.signonClientSeed)
		encPwd = proof[:]
		encType = hostsrv.PasswordEncryptionSHA1
	}

	body := framing.NewWriter(64)
	writeDynamicField(body, hostsrv.CPClientCCSID, codec.PutUint32(nil, 1200))
	writeDynamicField(body, hostsrv.CPPassword, encPwd)
	writeDynamicField(body, hostsrv.CPUserID, codec.ASCIIStringToEBCDIC37(codec.PadRight(s.config.UserName, 10)))
	if s.serverLevel >= 5 {
		writeDynamicField(body, hostsrv.CPReturnErrorMessages, []byte{1})
	}

	full := framing.NewWriter(20 + 1 + body.Len())
	writeHeader(full, 0, 0, hostsrv.ServerIDSignonVerify, 1, hostsrv.ReqRepSignonAuthenticate)
	full.PutUint8(encType)
	full.PutBytes(body.Bytes())

	if err := s.signonConn.Write(full.Bytes()); err != nil {
		return fmt.Errorf("%w: send signon authenticate: %v", ErrTransport, err)
	}
	resp, err := s.signonConn.Read()
	if err != nil {
		return fmt.Errorf("%w: read signon authenticate response: %v", ErrTransport, err)
	}
	if len(resp) < 28 {
		return fmt.Errorf("%w: signon authenticate response too short (%d bytes)", ErrProtocol, len(resp))
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
		return fmt.Errorf("%w: signon authenticate failed, result=0x%08X class=%d", ErrAuthentication, resultCode, class)
	}

	fields, err := parseDynamicFields(r)
	if err != nil {
		return err
	}
	if f, ok := findField(fields, hostsrv.CPServerCCSID); ok {
		s.serverCCSID = codec.GetUint32(f.Data)
	}

	s.state = SignonAuthed
	return nil
}
