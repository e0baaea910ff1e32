package ibmi

import (
	"fmt"

	"github.com/jguillaumes/go-ibmi/internal/codec"
	"github.com/jguillaumes/go-ibmi/internal/framing"
	"github.com/jguillaumes/go-ibmi/internal/hostsrv"
)

// CallMessage is one server message attached to a CallCommand/CallProgram/
// CallServiceProgram response, parsed from either the legacy (0x1102) or
// extended (0x1106) wire format.
type CallMessage struct {
	MessageID        string
	MessageType      uint16
	Severity         uint16
	SubstitutionText string
	MessageText      string
	HelpText         string
}

// CallMessages is an ordered sequence of CallMessage.
type CallMessages struct {
	items []CallMessage
}

// Len returns the number of messages.
func (m *CallMessages) Len() int { return len(m.items) }

// At returns the i'th message.
func (m *CallMessages) At(i int) CallMessage { return m.items[i] }

// All iterates over the messages in order.
func (m *CallMessages) All() []CallMessage { return m.items }

func (m *CallMessages) append(msg CallMessage) { m.items = append(m.items, msg) }

// parseMessageStream reads up to count LL/CP-framed message entries
// starting at the reader's current position (fewer if under 6 bytes remain
// before an entry) and appends each successfully decoded one to out. Unrecognized CP values are skipped. Any entry with
// LL < 6 is a fatal framing error, per spec §4.6.
func parseMessageStream(r *framing.Reader, count int, out *CallMessages) error {
	for i := 0; i < count; i++ {
		if r.Len() < 6 {
			// Spec §9 Open Question 3: server sent fewer bytes than
			// messageCount declared. Stop rather than erroring.
			return nil
		}
		ll, err := r.ReadUint32()
		if err != nil {
			return fmt.Errorf("%w: message %d: %v", ErrProtocol, i, err)
		}
		if ll < 6 {
			return fmt.Errorf("%w: message %d: LL=%d < 6", ErrProtocol, i, ll)
		}
		cp, err := r.ReadUint16()
		if err != nil {
			return fmt.Errorf("%w: message %d: %v", ErrProtocol, i, err)
		}
		data, err := r.ReadBytes(int(ll) - 6)
		if err != nil {
			return fmt.Errorf("%w: message %d: %v", ErrProtocol, i, err)
		}

		switch cp {
		case hostsrv.CPMessageLegacy:
			msg, err := parseLegacyMessage(data)
			if err != nil {
				return err
			}
			out.append(msg)
		case hostsrv.CPMessageExtended:
			msg, err := parseExtendedMessage(data)
			if err != nil {
				return err
			}
			out.append(msg)
		default:
			// Unknown message format: skip.
		}
	}
	return nil
}

// parseLegacyMessage decodes the 0x1102 message format, per spec §4.6.
func parseLegacyMessage(data []byte) (CallMessage, error) {
	if len(data) < 35 {
		return CallMessage{}, fmt.Errorf("%w: legacy message too short (%d bytes)", ErrProtocol, len(data))
	}
	id := codec.EBCDIC37ToASCIIString(data[0:7])
	msgType := codec.GetUint16(data[7:9])
	severity := codec.GetUint16(data[9:11])
	substLen := int(codec.GetUint16(data[31:33]))
	textLen := int(codec.GetUint16(data[33:35]))

	off := 35
	var subst, text string
	if off+substLen <= len(data) {
		subst = codec.EBCDIC37ToASCIIString(data[off : off+substLen])
	}
	off += substLen
	if off+textLen <= len(data) {
		text = codec.EBCDIC37ToASCIIString(data[off : off+textLen])
	}

	return CallMessage{
		MessageID:        id,
		MessageType:      msgType,
		Severity:         severity,
		SubstitutionText: subst,
		MessageText:      text,
	}, nil
}

// parseExtendedMessage decodes the 0x1106 message format: a fixed prefix
// followed by a chain of length-prefixed sub-fields, per spec §4.6.
func parseExtendedMessage(data []byte) (CallMessage, error) {
	r := framing.NewReader(data)

	textCCSID, err := r.ReadUint32()
	if err != nil {
		return CallMessage{}, fmt.Errorf("%w: extended message prefix: %v", ErrProtocol, err)
	}
	substCCSID, err := r.ReadUint32()
	if err != nil {
		return CallMessage{}, fmt.Errorf("%w: extended message prefix: %v", ErrProtocol, err)
	}
	severity, err := r.ReadUint16()
	if err != nil {
		return CallMessage{}, fmt.Errorf("%w: extended message prefix: %v", ErrProtocol, err)
	}
	typeLen, err := r.ReadUint32()
	if err != nil {
		return CallMessage{}, fmt.Errorf("%w: extended message prefix: %v", ErrProtocol, err)
	}
	msgType, err := r.ReadUint16()
	if err != nil {
		return CallMessage{}, fmt.Errorf("%w: extended message prefix: %v", ErrProtocol, err)
	}
	if typeLen >= 2 {
		if err := r.Skip(int(typeLen) - 2); err != nil {
			return CallMessage{}, fmt.Errorf("%w: extended message reserved: %v", ErrProtocol, err)
		}
	}

	id, err := readLenPrefixedEBCDIC(r, textEncoder(textCCSID))
	if err != nil {
		return CallMessage{}, err
	}
	if _, err := readLenPrefixedRaw(r); err != nil { // file
		return CallMessage{}, err
	}
	if _, err := readLenPrefixedRaw(r); err != nil { // library
		return CallMessage{}, err
	}
	text, err := readLenPrefixedEBCDIC(r, textEncoder(textCCSID))
	if err != nil {
		return CallMessage{}, err
	}
	subst, err := readLenPrefixedEBCDIC(r, textEncoder(substCCSID))
	if err != nil {
		return CallMessage{}, err
	}
	help, err := readLenPrefixedEBCDIC(r, textEncoder(textCCSID))
	if err != nil {
		return CallMessage{}, err
	}

	return CallMessage{
		MessageID:        id,
		MessageType:      msgType,
		Severity:         severity,
		SubstitutionText: subst,
		MessageText:      text,
		HelpText:         help,
	}, nil
}

func textEncoder(ccsid uint32) func([]byte) string {
	enc, err := codec.NewEncoder(ccsid)
	if err != nil {
		return codec.EBCDIC37ToASCIIString
	}
	return func(b []byte) string {
		out, err := enc.FromHost(b)
		if err != nil {
			return codec.EBCDIC37ToASCIIString(b)
		}
		return string(out)
	}
}

func readLenPrefixedRaw(r *framing.Reader) ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: extended message field length: %v", ErrProtocol, err)
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, fmt.Errorf("%w: extended message field data: %v", ErrProtocol, err)
	}
	return b, nil
}

func readLenPrefixedEBCDIC(r *framing.Reader, decode func([]byte) string) (string, error) {
	b, err := readLenPrefixedRaw(r)
	if err != nil {
		return "", err
	}
	return decode(b), nil
}
