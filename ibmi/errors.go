package ibmi

import "errors"

// Sentinel errors, checked with errors.Is. Configuration and framing
// errors abort the call that raised them; transport and authentication
// errors additionally force the session to Closed (§7).
var (
	// ErrNotConnected is returned by any call made before Connect
	// succeeds, or after Disconnect.
	ErrNotConnected = errors.New("ibmi: session is not connected")

	// ErrConfiguration wraps a parameter that violates a protocol limit
	// (name length, parameter count), raised synchronously before any I/O.
	ErrConfiguration = errors.New("ibmi: configuration error")

	// ErrTransport wraps a socket connect/read/write or TLS handshake
	// failure. Fatal for the session.
	ErrTransport = errors.New("ibmi: transport error")

	// ErrProtocol wraps a framing or parse failure: a response shorter
	// than 20 bytes, a malformed dynamic field, a message with LL < 6.
	// During Connect it closes the session; from CallCommand, CallProgram
	// or CallServiceProgram it aborts the call and the session stays Ready.
	ErrProtocol = errors.New("ibmi: protocol error")

	// ErrAuthentication wraps a non-zero handshake authentication result.
	// Fatal for the session.
	ErrAuthentication = errors.New("ibmi: authentication error")

	// ErrServerInfo wraps a RetrieveRemoteCommandServerInformation result
	// code outside the tolerated set. Fatal for the session.
	ErrServerInfo = errors.New("ibmi: server info error")
)
