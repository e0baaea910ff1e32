package ibmi

import "github.com/jguillaumes/go-ibmi/internal/hostsrv"

// ConnectionConfig is the immutable connection configuration a Session is
// built from: host name, credentials, temporary library, and TLS policy.
// It is caller-owned and lives across calls; nothing in this package
// mutates it after NewSession.
type ConnectionConfig struct {
	Host string

	UserName string
	Password string

	// TempLibrary is the per-job temporary library name (commonly QTEMP)
	// collaborators build parameter lists against; the core itself never
	// reads it, it is carried for callers composing on top of CallProgram.
	TempLibrary string

	TLSEnabled   bool
	TLSAcceptAny bool
	TLSCACertPEM []byte

	// Ports, overridable; zero means "use the protocol default" for the
	// relevant channel (see internal/hostsrv).
	SignonVerifyPort  int
	RemoteCommandPort int
}

func (c ConnectionConfig) signonPort() int {
	if c.SignonVerifyPort != 0 {
		return c.SignonVerifyPort
	}
	if c.TLSEnabled {
		return hostsrv.PortSignonVerifySSL
	}
	return hostsrv.PortSignonVerify
}

func (c ConnectionConfig) remoteCommandPort() int {
	if c.RemoteCommandPort != 0 {
		return c.RemoteCommandPort
	}
	if c.TLSEnabled {
		return hostsrv.PortRemoteCommandSSL
	}
	return hostsrv.PortRemoteCommand
}
