// Package transport implements the single-connection TCP (optionally TLS)
// client and the outer 4-byte length frame shared by both IBM i host-server
// channels. Grounded on jguillaumes-ims-injector's iconsess.go (dial/close)
// and interaction.go (length-then-body read loop and its
// IsLevelEnabled(TraceLevel)-gated hd.HexDump of the wire buffer), enriched
// with the TLS strict/permissive pattern from canonical-maas/src/rackd_spike's
// internal/config/tls.go.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	hd "github.com/jguillaumes/go-hexdump"
	"github.com/sirupsen/logrus"
)

// idleMarker is the 4-byte length value the server sends in place of a real
// frame as a keep-alive/idle signal: four EBCDIC spaces, 0x40404040.
const idleMarker uint32 = 0x40404040

// TLSPolicy selects how the transport validates the server's certificate
// when TLS is enabled.
type TLSPolicy int

const (
	// TLSStrict rejects the connection on any certificate verification
	// error.
	TLSStrict TLSPolicy = iota
	// TLSAcceptAny skips certificate verification and logs one warning for
	// each connection it accepts; individual verification errors are not
	// computed or logged. Spec §9 Open Question: left as an explicit,
	// caller-opted-in policy, never a default.
	TLSAcceptAny
)

// Conn is one logical channel's transport: a dialed TCP connection,
// optionally wrapped in TLS, with the outer length frame applied to every
// Write/Read.
type Conn struct {
	netConn net.Conn
	log     *logrus.Logger
}

// Dial opens a TCP connection to addr (host:port). If useTLS is set the
// connection is wrapped in TLS per policy before being returned.
func Dial(addr string, useTLS bool, policy TLSPolicy, caCertPEM []byte, log *logrus.Logger) (*Conn, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	raw, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	if !useTLS {
		return &Conn{netConn: raw, log: log}, nil
	}

	cfg := &tls.Config{
		InsecureSkipVerify: policy == TLSAcceptAny,
	}
	if len(caCertPEM) > 0 {
		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(caCertPEM); !ok {
			raw.Close()
			return nil, fmt.Errorf("transport: failed to parse CA certificate for %s", addr)
		}
		cfg.RootCAs = pool
	}
	if policy == TLSAcceptAny {
		cfg.VerifyPeerCertificate = func(_ [][]byte, _ [][]*x509.Certificate) error {
			log.Warnf("transport: accepting %s despite permissive TLS policy", addr)
			return nil
		}
	}

	tlsConn := tls.Client(raw, cfg)
	if err := tlsConn.Handshake(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("transport: TLS handshake with %s: %w", addr, err)
	}
	return &Conn{netConn: tlsConn, log: log}, nil
}

// Write prepends a 4-byte big-endian length (payload length + 4, including
// the length field itself) and writes the whole frame in one call.
func (c *Conn) Write(payload []byte) error {
	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)+4))
	copy(frame[4:], payload)
	if c.log.IsLevelEnabled(logrus.TraceLevel) {
		c.log.Tracef("wire frame sent:\n%s", hd.HexDump(frame, "ISO8859-1"))
	}
	if _, err := c.netConn.Write(frame); err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// Read reads exactly one datagram: the 4-byte length prefix, then
// length-4 further bytes. It returns an empty, nil-error result when the
// length is the idle/keep-alive marker (0x00000000 or 0x40404040), per
// spec §4.3. The returned buffer includes the 4-byte length prefix at
// offset 0, since downstream parsers expect it there.
func (c *Conn) Read() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(c.netConn, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("transport: read length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 || length == idleMarker {
		return nil, nil
	}
	if length < 4 {
		return nil, fmt.Errorf("transport: invalid frame length %d", length)
	}
	body := make([]byte, length)
	copy(body, lenBuf[:])
	if _, err := io.ReadFull(c.netConn, body[4:]); err != nil {
		return nil, fmt.Errorf("transport: read body (%d bytes): %w", length-4, err)
	}
	if c.log.IsLevelEnabled(logrus.TraceLevel) {
		c.log.Tracef("wire frame received:\n%s", hd.HexDump(body, "ISO8859-1"))
	}
	return body, nil
}

// Disconnect closes the underlying socket. It is safe to call more than
// once.
func (c *Conn) Disconnect() error {
	if c.netConn == nil {
		return nil
	}
	err := c.netConn.Close()
	c.netConn = nil
	if err != nil {
		return fmt.Errorf("transport: close: %w", err)
	}
	return nil
}
