package ibmi

import (
	"fmt"

	"github.com/jguillaumes/go-ibmi/internal/codec"
)

// qzruclspFixedParams is the number of fixed leading parameters QZRUCLSP
// takes before the caller's own N parameters, per spec §4.6: service
// program/library, function name, return format, pass-type vector, N,
// alignment buffer, return-value receiver.
const qzruclspFixedParams = 7

// CallServiceProgram calls a named function in a service program through
// QSYS/QZRUCLSP, the IBM i trampoline program that adapts CallProgram's
// fixed parameter-passing convention to an arbitrary C-style function
// signature. On success it decodes the function's return value into
// params's Returned* fields and copies output bytes back into params's
// own parameter list.
func (s *Session) CallServiceProgram(srvName, srvLib, function string, params *ServiceProgramCallParameters, outMessages *CallMessages) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireReady(); err != nil {
		return 0, err
	}
	if len(srvName) > 10 {
		return 0, fmt.Errorf("%w: service program name %q longer than 10 characters", ErrConfiguration, srvName)
	}
	if len(srvLib) > 10 {
		return 0, fmt.Errorf("%w: service program library %q longer than 10 characters", ErrConfiguration, srvLib)
	}
	n := params.Len()
	if n > MaxServiceProgramParameters {
		return 0, fmt.Errorf("%w: %d service program parameters exceeds limit of %d", ErrConfiguration, n, MaxServiceProgramParameters)
	}

	p1 := append(codec.ASCIIStringToEBCDIC37(codec.PadRight(srvName, 10)), codec.ASCIIStringToEBCDIC37(codec.PadRight(srvLib, 10))...)
	p2 := append(codec.ASCIIToEBCDIC37([]byte(function)), 0x00)

	passTypes := make([]byte, 0, 4*n)
	for _, cp := range params.All() {
		passTypes = codec.PutUint32(passTypes, uint32(cp.PassType))
	}
	if n == 0 {
		passTypes = codec.PutUint32(nil, 0)
	}

	receiverSize := params.ReturnValueFormat.receiverSize()

	headerBytes := len(p2) + len(passTypes) + int(receiverSize) + 28
	var alignPayload []byte
	if params.AlignReceiver16Bytes && n > 0 {
		padLen := 64 - (headerBytes % 16)
		alignPayload = make([]byte, padLen)
	} else {
		alignPayload = make([]byte, 4)
	}

	trampoline := NewProgramCallParameters(
		NewProgramCallParameter(ParameterInput, p1, uint32(len(p1))),
		NewProgramCallParameter(ParameterInput, p2, uint32(len(p2))),
		NewProgramCallParameter(ParameterInput, codec.PutUint32(nil, uint32(params.ReturnValueFormat)), 4),
		NewProgramCallParameter(ParameterInput, passTypes, uint32(len(passTypes))),
		NewProgramCallParameter(ParameterInput, codec.PutUint32(nil, uint32(n)), 4),
		NewProgramCallParameter(ParameterInputOutput, alignPayload, uint32(len(alignPayload))),
		NewProgramCallParameter(ParameterOutput, nil, receiverSize),
	)
	for _, cp := range params.All() {
		trampoline.items = append(trampoline.items, NewProgramCallParameter(ParameterInputOutput, cp.Payload, cp.DeclaredMaxLength))
	}

	code, err := s.callProgramLocked("QZRUCLSP", "QSYS", trampoline, outMessages)
	if err != nil {
		return code, err
	}

	for i, cp := range params.All() {
		cp.Payload = trampoline.At(qzruclspFixedParams + i).Payload
	}

	receiver := trampoline.At(6).Payload
	switch params.ReturnValueFormat {
	case ReturnInteger:
		if len(receiver) >= 4 {
			params.ReturnedInteger = codec.GetUint32(receiver[0:4])
		}
	case ReturnIntegerErrno:
		if len(receiver) >= 8 {
			params.ReturnedInteger = codec.GetUint32(receiver[0:4])
			params.ReturnedErrno = codec.GetUint32(receiver[4:8])
		}
	case ReturnPointer:
		if len(receiver) >= 16 {
			copy(params.ReturnedPointer[:], receiver[:16])
		}
	case ReturnNone:
		// No receiver decoding.
	}

	return code, nil
}
