package ibmi

// PassType selects by-value or by-reference passing for one
// ServiceProgramCallParameter.
type PassType uint32

const (
	PassByValue     PassType = 1
	PassByReference PassType = 2
)

func normalizePassType(v PassType) PassType {
	switch v {
	case PassByValue, PassByReference:
		return v
	default:
		return PassByReference
	}
}

// ReturnValueFormat selects how CallServiceProgram decodes the function's
// return value out of the QZRUCLSP receiver.
type ReturnValueFormat uint32

const (
	ReturnNone         ReturnValueFormat = 0
	ReturnInteger      ReturnValueFormat = 1
	ReturnPointer      ReturnValueFormat = 2
	ReturnIntegerErrno ReturnValueFormat = 3
)

// receiverSize returns the byte size of the QZRUCLSP return-value receiver
// (parameter index 6) for this format, per spec §4.6's table.
func (f ReturnValueFormat) receiverSize() uint32 {
	switch f {
	case ReturnPointer:
		return 16
	case ReturnIntegerErrno:
		return 8
	default: // None, Integer
		return 4
	}
}

// ServiceProgramCallParameter is one caller-supplied parameter to
// CallServiceProgram.
type ServiceProgramCallParameter struct {
	PassType PassType

	Payload           []byte
	DeclaredMaxLength uint32
}

// NewServiceProgramCallParameter normalizes passType and returns a
// ready-to-use parameter.
func NewServiceProgramCallParameter(passType PassType, payload []byte, declaredMaxLength uint32) *ServiceProgramCallParameter {
	return &ServiceProgramCallParameter{
		PassType:          normalizePassType(passType),
		Payload:           payload,
		DeclaredMaxLength: declaredMaxLength,
	}
}

// MaxLength is max(declared, len(payload)).
func (p *ServiceProgramCallParameter) MaxLength() uint32 {
	if uint32(len(p.Payload)) > p.DeclaredMaxLength {
		return uint32(len(p.Payload))
	}
	return p.DeclaredMaxLength
}

// ServiceProgramCallParameters is the ordered parameter list (at most 7)
// passed to CallServiceProgram, plus the return-value and alignment
// options and the post-call result fields.
type ServiceProgramCallParameters struct {
	items []*ServiceProgramCallParameter

	ReturnValueFormat    ReturnValueFormat
	AlignReceiver16Bytes bool

	// Populated by CallServiceProgram after a successful call.
	ReturnedInteger uint32
	ReturnedErrno   uint32
	ReturnedPointer [16]byte
}

// MaxServiceProgramParameters is the protocol limit on caller parameters
// to a service-program function call, per spec §3.
const MaxServiceProgramParameters = 7

// NewServiceProgramCallParameters builds a parameter list. It does not
// itself enforce the 7-parameter limit; CallServiceProgram does, raising
// ErrConfiguration, since that is a call-time, not construction-time,
// protocol boundary per spec §7.
func NewServiceProgramCallParameters(format ReturnValueFormat, alignReceiver16Bytes bool, items ...*ServiceProgramCallParameter) *ServiceProgramCallParameters {
	return &ServiceProgramCallParameters{
		items:                items,
		ReturnValueFormat:    format,
		AlignReceiver16Bytes: alignReceiver16Bytes,
	}
}

// Len returns the number of caller parameters.
func (p *ServiceProgramCallParameters) Len() int { return len(p.items) }

// At returns the i'th caller parameter.
func (p *ServiceProgramCallParameters) At(i int) *ServiceProgramCallParameter { return p.items[i] }

// All iterates over the caller parameters in order.
func (p *ServiceProgramCallParameters) All() []*ServiceProgramCallParameter { return p.items }
