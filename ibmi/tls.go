package ibmi

import "github.com/jguillaumes/go-ibmi/internal/transport"

// tlsPolicy maps ConnectionConfig's TLSAcceptAny toggle to the transport
// package's policy enum. Spec §9 Open Question 2: permissive TLS is always
// an explicit caller opt-in, never a default.
func tlsPolicy(c ConnectionConfig) transport.TLSPolicy {
	if c.TLSAcceptAny {
		return transport.TLSAcceptAny
	}
	return transport.TLSStrict
}
