package ibmi

import (
	"fmt"

	"github.com/jguillaumes/go-ibmi/internal/framing"
)

// writeHeader appends the 16 bytes of fixed header fields of spec §4.5:
// header ID (2), server ID (2), CS instance (4), correlation ID (4),
// template length (2) and ReqRep ID (2). headerIDHigh/
// headerIDLow are the first two bytes — normally {0,0}, except on the
// Remote Command initial frames, which carry {clientAttributes,
// serverAttributes} there instead.
func writeHeader(w *framing.Writer, headerIDHigh, headerIDLow uint8, serverID uint16, templateLen, reqRep uint16) {
	w.PutUint8(headerIDHigh).PutUint8(headerIDLow)
	w.PutUint16(serverID)
	w.PutUint32(0) // CS instance
	w.PutUint32(0) // correlation ID
	w.PutUint16(templateLen)
	w.PutUint16(reqRep)
}

// dynamicField is one parsed {LL, CP, data} dynamic field from a response.
type dynamicField struct {
	CP   uint16
	Data []byte
}

// parseDynamicFields reads LL/CP/data triplets from r until it is
// exhausted, stopping early (without error) if fewer than 6 bytes remain —
// the idiom used throughout spec §4.5/§4.6 for trailing padding or
// sentinel values.
func parseDynamicFields(r *framing.Reader) ([]dynamicField, error) {
	var out []dynamicField
	for r.Len() >= 6 {
		startPos := r.Pos()
		ll, err := r.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("%w: dynamic field length: %v", ErrProtocol, err)
		}
		if ll == 0 || ll == 0x40404040 {
			r.SetPos(startPos)
			break
		}
		if ll < 6 {
			return nil, fmt.Errorf("%w: dynamic field LL=%d < 6", ErrProtocol, ll)
		}
		cp, err := r.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("%w: dynamic field CP: %v", ErrProtocol, err)
		}
		dataLen := int(ll) - 6
		if dataLen > r.Len() {
			// Truncated trailing field: stop gracefully.
			r.SetPos(startPos)
			break
		}
		data, err := r.ReadBytes(dataLen)
		if err != nil {
			return nil, fmt.Errorf("%w: dynamic field data: %v", ErrProtocol, err)
		}
		out = append(out, dynamicField{CP: cp, Data: data})
	}
	return out, nil
}

// findField returns the first field with the given CP code.
func findField(fields []dynamicField, cp uint16) (dynamicField, bool) {
	for _, f := range fields {
		if f.CP == cp {
			return f, true
		}
	}
	return dynamicField{}, false
}

// writeDynamicField appends {u32 LL, u16 CP, data} where LL = len(data)+6.
func writeDynamicField(w *framing.Writer, cp uint16, data []byte) {
	w.PutUint32(uint32(len(data) + 6)).PutUint16(cp).PutBytes(data)
}
