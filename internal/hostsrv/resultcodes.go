package hostsrv

// AuthFailureClass classifies a non-zero Sign-on Verify / Remote Command
// authentication result code, per spec §7.
type AuthFailureClass int

const (
	AuthUnknown AuthFailureClass = iota
	AuthRequestDataError
	AuthGeneralSecurityFailure
	AuthTokenError
	AuthUnknownUser
	AuthUserLocked
	AuthUserMismatch
	AuthBadPassword
	AuthBadPasswordWillRevoke
	AuthPasswordExpired
	AuthPasswordPreV2R2Encrypted
	AuthPasswordIsNone
)

// specificAuthCodes maps result codes that do not follow the upper-16-bits rule.
var specificAuthCodes = map[uint32]AuthFailureClass{
	0x0002_0001: AuthUnknownUser,
	0x0002_0002: AuthUserLocked,
	0x0002_0003: AuthUserMismatch,
	0x0003_000B: AuthBadPassword,
	0x0003_000C: AuthBadPasswordWillRevoke,
	0x0003_000D: AuthPasswordExpired,
	0x0003_000E: AuthPasswordPreV2R2Encrypted,
	0x0003_0010: AuthPasswordIsNone,
}

// upperAuthCodes maps the upper 16 bits of a result code to a failure
// class, used when the code is not one of the specific ones above.
var upperAuthCodes = map[uint32]AuthFailureClass{
	0x0001: AuthRequestDataError,
	0x0004: AuthGeneralSecurityFailure,
	0x0006: AuthTokenError,
}

// ClassifyAuthResult maps a non-zero authentication result code to its
// failure class. code == 0 is success and is never passed here.
func ClassifyAuthResult(code uint32) AuthFailureClass {
	if class, ok := specificAuthCodes[code]; ok {
		return class
	}
	upper := code >> 16
	if class, ok := upperAuthCodes[upper]; ok {
		return class
	}
	return AuthUnknown
}

// acceptableServerInfoCodes is the set of RetrieveRemoteCommandServerInformation
// result codes that are tolerated as success, per spec §4.5 step 3.
var acceptableServerInfoCodes = map[uint16]bool{
	0x0000: true,
	0x0100: true,
	0x0104: true,
	0x0105: true,
	0x0106: true,
	0x0107: true,
	0x0108: true,
}

// ServerInfoResultOK reports whether code is an acceptable result for
// RetrieveRemoteCommandServerInformation.
func ServerInfoResultOK(code uint16) bool {
	return acceptableServerInfoCodes[code]
}

// MessageOptionFor returns the message-option byte a CallCommand/CallProgram
// request should carry for the given negotiated datastream level, per
// spec §4.6.
func MessageOptionFor(datastreamLevel uint16) uint8 {
	switch {
	case datastreamLevel < 7:
		return 0
	case datastreamLevel < 10:
		return 2
	default:
		return 4
	}
}
