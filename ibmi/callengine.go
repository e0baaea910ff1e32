package ibmi

import (
	"fmt"

	"github.com/jguillaumes/go-ibmi/internal/codec"
	"github.com/jguillaumes/go-ibmi/internal/framing"
	"github.com/jguillaumes/go-ibmi/internal/hostsrv"
)

// responseFixedPrefix is the number of bytes skipped at the start of a
// CallCommand/CallProgram response before its u16 result code and u16
// message count: the 4-byte outer length and 16 reserved bytes. Message and
// output-parameter entries follow those two fields, at offset 24, per spec
// §4.6.
const responseFixedPrefix = 20 // length(4) + reserved(16); result code and count follow

// CallCommand runs a CL command string on the authenticated Remote
// Command channel and appends any returned messages to outMessages (which
// may be nil). It returns the server's result code; per spec §7 a non-zero
// CL result code, including the warning code 0x0400, is a normal return
// value, never an error.
func (s *Session) CallCommand(cmd string, outMessages *CallMessages) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireReady(); err != nil {
		return 0, err
	}

	msgOption := hostsrv.MessageOptionFor(s.serverDatastreamLevel)

	body := framing.NewWriter(64)
	if s.serverDatastreamLevel > 10 {
		textBytes, err := codec.ToUTF16BE(cmd)
		if err != nil {
			return 0, fmt.Errorf("%w: encode command text: %v", ErrConfiguration, err)
		}
		body.PutUint32(uint32(10 + len(textBytes)))
		body.PutUint16(hostsrv.CPCommandTextUTF16)
		body.PutUint16(1200)
		body.PutBytes(textBytes)
	} else {
		ebcdic := codec.ASCIIToEBCDIC37([]byte(cmd))
		writeDynamicField(body, hostsrv.CPCommandTextEBCDIC, ebcdic)
	}

	full := framing.NewWriter(21 + body.Len())
	writeHeader(full, 0, 0, hostsrv.ServerIDRemoteCommand, 1, hostsrv.ReqRepRCCallCommand)
	full.PutUint8(msgOption)
	full.PutBytes(body.Bytes())

	resp, err := s.doRequest(full.Bytes())
	if err != nil {
		return 0, err
	}

	r, resultCode, msgCount, err := s.parseCallResponsePrefix(resp)
	if err != nil {
		return 0, err
	}

	if outMessages != nil && msgCount > 0 {
		if err := parseMessageStream(r, int(msgCount), outMessages); err != nil {
			return resultCode, err
		}
	}

	return resultCode, nil
}

// CallProgram calls a named program in library with the given typed
// parameters. On a zero result code it updates Output/InputOutput parameter
// payloads in place from the server's response and does not read messages;
// on a non-zero result code it leaves the parameters unchanged and appends
// any returned messages to outMessages (which may be nil).
func (s *Session) CallProgram(name, library string, params *ProgramCallParameters, outMessages *CallMessages) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callProgramLocked(name, library, params, outMessages)
}

func (s *Session) callProgramLocked(name, library string, params *ProgramCallParameters, outMessages *CallMessages) (uint16, error) {
	if err := s.requireReady(); err != nil {
		return 0, err
	}
	if len(name) > 10 {
		return 0, fmt.Errorf("%w: program name %q longer than 10 characters", ErrConfiguration, name)
	}
	if len(library) > 10 {
		return 0, fmt.Errorf("%w: library name %q longer than 10 characters", ErrConfiguration, library)
	}

	msgOption := hostsrv.MessageOptionFor(s.serverDatastreamLevel)

	body := framing.NewWriter(256)
	for _, p := range params.All() {
		typ := p.Type
		payload := p.Payload
		if typ == ParameterNull && s.serverDatastreamLevel < 6 {
			typ = ParameterInput
			payload = nil
		}
		body.PutUint32(uint32(12 + len(payload)))
		body.PutUint16(hostsrv.CPProgramParameter)
		body.PutUint32(p.MaxLength())
		body.PutUint16(uint16(typ))
		body.PutBytes(payload)
	}

	full := framing.NewWriter(20 + 23 + body.Len())
	writeHeader(full, 0, 0, hostsrv.ServerIDRemoteCommand, 23, hostsrv.ReqRepRCCallProgram)
	full.PutBytes(codec.ASCIIStringToEBCDIC37(codec.PadRight(name, 10)))
	full.PutBytes(codec.ASCIIStringToEBCDIC37(codec.PadRight(library, 10)))
	full.PutUint8(msgOption)
	full.PutUint16(uint16(params.Len()))
	full.PutBytes(body.Bytes())

	resp, err := s.doRequest(full.Bytes())
	if err != nil {
		return 0, err
	}

	r, resultCode, msgCount, err := s.parseCallResponsePrefix(resp)
	if err != nil {
		return 0, err
	}

	if resultCode != 0 {
		if outMessages != nil && msgCount > 0 {
			if err := parseMessageStream(r, int(msgCount), outMessages); err != nil {
				return resultCode, err
			}
		}
		return resultCode, nil
	}

	for _, p := range params.All() {
		if p.Type != ParameterOutput && p.Type != ParameterInputOutput {
			continue
		}
		if !readOutputParameter(r, p) {
			break
		}
	}

	return resultCode, nil
}

// readOutputParameter reads one {LL, CP, outMaxLen, outType, data} block
// from r and stores data into p.Payload. It returns false if a sentinel or
// short buffer was encountered and the scan should stop (gracefully,
// leaving p and any later parameters unchanged).
func readOutputParameter(r *framing.Reader, p *ProgramCallParameter) bool {
	startPos := r.Pos()
	if r.Len() < 4 {
		return false
	}
	ll, err := r.ReadUint32()
	if err != nil {
		return false
	}
	if ll == 0 || ll == 0x40404040 {
		r.SetPos(startPos)
		return false
	}
	if ll < 12 || r.Len() < 8 {
		r.SetPos(startPos)
		return false
	}
	if _, err := r.ReadUint16(); err != nil { // CP, not used
		r.SetPos(startPos)
		return false
	}
	if _, err := r.ReadUint32(); err != nil { // outMaxLen, not used
		r.SetPos(startPos)
		return false
	}
	if _, err := r.ReadUint16(); err != nil { // outType, not used
		r.SetPos(startPos)
		return false
	}
	dataLen := int(ll) - 12
	if dataLen < 0 || r.Len() < dataLen {
		r.SetPos(startPos)
		return false
	}
	data, err := r.ReadBytes(dataLen)
	if err != nil {
		r.SetPos(startPos)
		return false
	}
	p.Payload = data
	return true
}

// doRequest sends a request frame on the Remote Command channel and
// returns the raw response buffer (including its 4-byte length prefix). A
// transport failure closes both channels and moves the session to Closed.
func (s *Session) doRequest(frame []byte) ([]byte, error) {
	if err := s.rcConn.Write(frame); err != nil {
		s.closeLocked()
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp, err := s.rcConn.Read()
	if err != nil {
		s.closeLocked()
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

// parseCallResponsePrefix validates and consumes the fixed prefix of a
// CallCommand/CallProgram response (length, reserved, result code, message
// count) and returns a Reader positioned at offset 24, ready to parse the
// message/parameter stream.
func (s *Session) parseCallResponsePrefix(resp []byte) (*framing.Reader, uint16, uint16, error) {
	if len(resp) < 4 {
		return nil, 0, 0, fmt.Errorf("%w: response too short", ErrProtocol)
	}
	declaredLen := codec.GetUint32(resp[:4])
	if declaredLen < 20 {
		return nil, 0, 0, fmt.Errorf("%w: declared response length %d < 20", ErrProtocol, declaredLen)
	}

	r := framing.NewReader(resp)
	if err := r.Skip(responseFixedPrefix); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	resultCode, err := r.ReadUint16()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	msgCount, err := r.ReadUint16()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return r, resultCode, msgCount, nil
}
