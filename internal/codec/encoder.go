package codec

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoder translates between ASCII (the in-process representation) and a
// host CCSID. The internal CCSID-37 table above satisfies this interface
// without importing anything; callers that need another CCSID get one
// backed by golang.org/x/text/encoding/charmap.
type Encoder interface {
	CCSID() uint32
	ToHost(ascii []byte) ([]byte, error)
	FromHost(host []byte) ([]byte, error)
}

type ccsid37Encoder struct{}

func (ccsid37Encoder) CCSID() uint32                    { return DefaultCCSID }
func (ccsid37Encoder) ToHost(b []byte) ([]byte, error)   { return ASCIIToEBCDIC37(b), nil }
func (ccsid37Encoder) FromHost(b []byte) ([]byte, error) { return EBCDIC37ToASCII(b), nil }

// charmapEncoder adapts a golang.org/x/text charmap.Charmap to Encoder, for
// any CCSID other than 37 that the caller explicitly opts into. The core
// ships CCSID 37 unconditionally (see ccsid37Encoder); this exists only to
// satisfy spec's "pluggable encoder trait for other CCSIDs".
type charmapEncoder struct {
	ccsid uint32
	cm    *charmap.Charmap
}

func (c charmapEncoder) CCSID() uint32 { return c.ccsid }

func (c charmapEncoder) ToHost(ascii []byte) ([]byte, error) {
	out, err := c.cm.NewEncoder().Bytes(ascii)
	if err != nil {
		return nil, fmt.Errorf("ccsid %d encode: %w", c.ccsid, err)
	}
	return out, nil
}

func (c charmapEncoder) FromHost(host []byte) ([]byte, error) {
	out, err := c.cm.NewDecoder().Bytes(host)
	if err != nil {
		return nil, fmt.Errorf("ccsid %d decode: %w", c.ccsid, err)
	}
	return out, nil
}

// knownCharmaps maps the handful of EBCDIC CCSIDs that golang.org/x/text
// ships a charmap for to their Charmap value. CCSID 37 is deliberately
// excluded: it is always served by the internal table, never by x/text.
var knownCharmaps = map[uint32]*charmap.Charmap{
	500:  charmap.CodePage037, // x/text has no distinct 500 table; closest available
	1047: charmap.CodePage1047,
}

// NewEncoder returns the Encoder for ccsid. CCSID 37 (and 0, treated as the
// default) always resolves to the internal table and never touches
// golang.org/x/text. An error is returned for any other CCSID this build
// does not carry a charmap for.
func NewEncoder(ccsid uint32) (Encoder, error) {
	if ccsid == 0 || ccsid == DefaultCCSID {
		return ccsid37Encoder{}, nil
	}
	if cm, ok := knownCharmaps[ccsid]; ok {
		return charmapEncoder{ccsid: ccsid, cm: cm}, nil
	}
	return nil, fmt.Errorf("codec: unsupported CCSID %d", ccsid)
}

// utf16BE is the shared UTF-16 big-endian codec used for command text at
// datastream level >= 10.
var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// ToUTF16BE encodes an ASCII/UTF-8 string as UTF-16BE bytes, as required for
// command text once the negotiated datastream level reaches 10.
func ToUTF16BE(s string) ([]byte, error) {
	out, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("utf16be encode: %w", err)
	}
	return out, nil
}

// FromUTF16BE decodes UTF-16BE bytes back to a UTF-8 string.
func FromUTF16BE(b []byte) (string, error) {
	out, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("utf16be decode: %w", err)
	}
	return string(out), nil
}
