package ibmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgramCallParameterNormalizesUnknownType(t *testing.T) {
	p := NewProgramCallParameter(ParameterType(9999), nil, 0)
	assert.Equal(t, ParameterInputOutput, p.Type)
}

func TestNewProgramCallParameterKeepsKnownTypes(t *testing.T) {
	for _, typ := range []ParameterType{ParameterNull, ParameterInput, ParameterOutput, ParameterInputOutput} {
		p := NewProgramCallParameter(typ, nil, 0)
		assert.Equal(t, typ, p.Type)
	}
}

func TestMaxLengthInvariantTable(t *testing.T) {
	cases := []struct {
		name     string
		typ      ParameterType
		payload  []byte
		declared uint32
		want     uint32
	}{
		{"null is always zero", ParameterNull, []byte("ignored"), 99, 0},
		{"output uses declared length regardless of payload", ParameterOutput, []byte("xy"), 10, 10},
		{"input uses declared when payload is shorter", ParameterInput, []byte("ab"), 10, 10},
		{"input uses payload length when longer than declared", ParameterInput, []byte("abcdefghij"), 4, 10},
		{"input-output uses declared when payload is shorter", ParameterInputOutput, []byte("ab"), 10, 10},
		{"input-output uses payload length when longer than declared", ParameterInputOutput, []byte("abcdefghij"), 4, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewProgramCallParameter(c.typ, c.payload, c.declared)
			assert.Equal(t, c.want, p.MaxLength())
		})
	}
}

func TestProgramCallParametersAccessors(t *testing.T) {
	p1 := NewProgramCallParameter(ParameterInput, []byte("a"), 1)
	p2 := NewProgramCallParameter(ParameterOutput, nil, 4)
	params := NewProgramCallParameters(p1, p2)

	assert.Equal(t, 2, params.Len())
	assert.Same(t, p1, params.At(0))
	assert.Same(t, p2, params.At(1))
	assert.Equal(t, []*ProgramCallParameter{p1, p2}, params.All())
}

func TestNewProgramCallParametersEmpty(t *testing.T) {
	params := NewProgramCallParameters()
	assert.Equal(t, 0, params.Len())
	assert.Empty(t, params.All())
}
