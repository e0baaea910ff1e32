package ibmi

// ParameterType tags a ProgramCallParameter's direction, per spec §3.
type ParameterType uint16

const (
	ParameterNull        ParameterType = 255
	ParameterInput       ParameterType = 11
	ParameterOutput      ParameterType = 12
	ParameterInputOutput ParameterType = 13
)

// normalizeParameterType coerces any value outside the known set to
// InputOutput, per spec §3's invariant.
func normalizeParameterType(v ParameterType) ParameterType {
	switch v {
	case ParameterNull, ParameterInput, ParameterOutput, ParameterInputOutput:
		return v
	default:
		return ParameterInputOutput
	}
}

// ProgramCallParameter is one typed, ordered parameter to CallProgram.
type ProgramCallParameter struct {
	Type ParameterType

	// Payload is the parameter's current byte value. It may be empty for
	// a pure-output parameter before the call; CallProgram replaces it
	// in-place with the server's returned bytes for Output/InputOutput
	// parameters.
	Payload []byte

	// DeclaredMaxLength is the caller-declared maximum length, used for
	// Output/InputOutput parameters whose payload is not yet known.
	DeclaredMaxLength uint32
}

// NewProgramCallParameter normalizes typ and returns a ready-to-use
// parameter.
func NewProgramCallParameter(typ ParameterType, payload []byte, declaredMaxLength uint32) *ProgramCallParameter {
	return &ProgramCallParameter{
		Type:              normalizeParameterType(typ),
		Payload:           payload,
		DeclaredMaxLength: declaredMaxLength,
	}
}

// MaxLength computes the effective maximum length per spec §3's invariant
// table.
func (p *ProgramCallParameter) MaxLength() uint32 {
	switch p.Type {
	case ParameterNull:
		return 0
	case ParameterOutput:
		return p.DeclaredMaxLength
	default: // Input, InputOutput
		if uint32(len(p.Payload)) > p.DeclaredMaxLength {
			return uint32(len(p.Payload))
		}
		return p.DeclaredMaxLength
	}
}

// ProgramCallParameters is a fixed-length ordered sequence of
// ProgramCallParameter, passed to CallProgram.
type ProgramCallParameters struct {
	items []*ProgramCallParameter
}

// NewProgramCallParameters builds a fixed-length parameter list.
func NewProgramCallParameters(items ...*ProgramCallParameter) *ProgramCallParameters {
	return &ProgramCallParameters{items: items}
}

// Len returns the number of parameters.
func (p *ProgramCallParameters) Len() int { return len(p.items) }

// At returns the i'th parameter.
func (p *ProgramCallParameters) At(i int) *ProgramCallParameter { return p.items[i] }

// All iterates over the parameters in order.
func (p *ProgramCallParameters) All() []*ProgramCallParameter { return p.items }
