// Package users wraps a handful of IBM i user-profile system APIs
// (QSYRUPWD, QGYOLAUS/QGYGTLE, QSYRUSRI, QSYCHGPW) on top of ibmi.CallProgram.
// None of these add wire-protocol surface of their own: each reduces to
// building a parameter list, calling CallProgram, and slicing the
// receiver's output byte ranges, per the platform's own documented formats.
package users

import (
	"errors"
	"fmt"

	"github.com/jguillaumes/go-ibmi/ibmi"
	"github.com/jguillaumes/go-ibmi/internal/codec"
)

// ErrCallFailed wraps a non-zero CL result code from one of this
// package's underlying program calls.
var ErrCallFailed = errors.New("users: program call failed")

const errorCodeStructSize = 16

func zeroErrorCode() []byte { return make([]byte, errorCodeStructSize) }

func ebcdic10(s string) []byte { return codec.ASCIIStringToEBCDIC37(codec.PadRight(s, 10)) }

func checkResult(program string, code uint16, msgs *ibmi.CallMessages) error {
	if code == 0 {
		return nil
	}
	if msgs != nil && msgs.Len() > 0 {
		return fmt.Errorf("%w: %s result=0x%04X: %s", ErrCallFailed, program, code, msgs.At(0).MessageText)
	}
	return fmt.Errorf("%w: %s result=0x%04X", ErrCallFailed, program, code)
}

// RetrievePasswordHash calls QSYRUPWD (format PWDI0001) and returns the
// profile's stored password hash bytes and its hash-scheme byte.
func RetrievePasswordHash(sess *ibmi.Session, profile string) ([]byte, byte, error) {
	const receiverSize = 64

	params := ibmi.NewProgramCallParameters(
		ibmi.NewProgramCallParameter(ibmi.ParameterOutput, nil, receiverSize),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, receiverSize), 4),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10("PWDI0001"), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10(profile), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInputOutput, zeroErrorCode(), errorCodeStructSize),
	)

	msgs := &ibmi.CallMessages{}
	code, err := sess.CallProgram("QSYRUPWD", "QSYS", params, msgs)
	if err != nil {
		return nil, 0, err
	}
	if err := checkResult("QSYRUPWD", code, msgs); err != nil {
		return nil, 0, err
	}

	receiver := params.At(0).Payload
	if len(receiver) < 20 {
		return nil, 0, fmt.Errorf("%w: QSYRUPWD receiver too short (%d bytes)", ErrCallFailed, len(receiver))
	}
	scheme := receiver[18]
	hashLen := int(receiver[19])
	if 20+hashLen > len(receiver) {
		hashLen = len(receiver) - 20
	}
	hash := append([]byte(nil), receiver[20:20+hashLen]...)
	return hash, scheme, nil
}

// listEntrySize and listInfoSize describe QGYOLAUS/QGYGTLE's fixed-format
// list entry and list-information structure, per the Open List API family's
// documented layout.
const (
	listEntrySize = 12
	listInfoSize  = 20
)

// ListUsers calls QGYOLAUS to open a list of user profiles authorized to
// groupProfile (pass "" for *NONE, meaning all profiles), then pages
// through the remainder with QGYGTLE until the server reports no more
// records. pageSize bounds how many entries each CallProgram round trip
// requests.
func ListUsers(sess *ibmi.Session, groupProfile string, pageSize int) ([]string, error) {
	return ListUsersWithProgress(sess, groupProfile, pageSize, nil)
}

// ListUsersWithProgress is ListUsers with an optional callback invoked
// after each page is fetched, reporting the running total fetched against
// the server-declared total record count. onPage may be nil.
func ListUsersWithProgress(sess *ibmi.Session, groupProfile string, pageSize int, onPage func(fetched, total uint32)) ([]string, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	group := groupProfile
	if group == "" {
		group = "*NONE"
	}

	receiverSize := uint32(pageSize * listEntrySize)
	openParams := ibmi.NewProgramCallParameters(
		ibmi.NewProgramCallParameter(ibmi.ParameterOutput, nil, receiverSize),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, receiverSize), 4),
		ibmi.NewProgramCallParameter(ibmi.ParameterOutput, nil, listInfoSize),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, uint32(pageSize)), 4),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, 0), 4),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10(group), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10("AUSI0150"), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInputOutput, zeroErrorCode(), errorCodeStructSize),
	)

	msgs := &ibmi.CallMessages{}
	code, err := sess.CallProgram("QGYOLAUS", "QSYS", openParams, msgs)
	if err != nil {
		return nil, err
	}
	if err := checkResult("QGYOLAUS", code, msgs); err != nil {
		return nil, err
	}

	listInfo := openParams.At(2).Payload
	if len(listInfo) < listInfoSize {
		return nil, fmt.Errorf("%w: QGYOLAUS list information too short (%d bytes)", ErrCallFailed, len(listInfo))
	}
	totalRecords := codec.GetUint32(listInfo[0:4])
	returned := codec.GetUint32(listInfo[4:8])
	handle := append([]byte(nil), listInfo[8:16]...)

	names := decodeUserListEntries(openParams.At(0).Payload, returned)
	consumed := returned
	if onPage != nil {
		onPage(consumed, totalRecords)
	}

	for consumed < totalRecords {
		remaining := totalRecords - consumed
		want := uint32(pageSize)
		if remaining < want {
			want = remaining
		}

		getParams := ibmi.NewProgramCallParameters(
			ibmi.NewProgramCallParameter(ibmi.ParameterOutput, nil, want*listEntrySize),
			ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, want*listEntrySize), 4),
			ibmi.NewProgramCallParameter(ibmi.ParameterInput, handle, 8),
			ibmi.NewProgramCallParameter(ibmi.ParameterInputOutput, make([]byte, listInfoSize), listInfoSize),
			ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, want), 4),
			ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, consumed+1), 4),
			ibmi.NewProgramCallParameter(ibmi.ParameterInputOutput, zeroErrorCode(), errorCodeStructSize),
		)

		code, err := sess.CallProgram("QGYGTLE", "QSYS", getParams, nil)
		if err != nil {
			return names, err
		}
		if err := checkResult("QGYGTLE", code, nil); err != nil {
			return names, err
		}

		pageInfo := getParams.At(3).Payload
		pageReturned := want
		if len(pageInfo) >= 8 {
			pageReturned = codec.GetUint32(pageInfo[4:8])
		}
		if pageReturned == 0 {
			break
		}
		names = append(names, decodeUserListEntries(getParams.At(0).Payload, pageReturned)...)
		consumed += pageReturned
		if onPage != nil {
			onPage(consumed, totalRecords)
		}
	}

	return names, nil
}

func decodeUserListEntries(receiver []byte, count uint32) []string {
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		off := int(i) * listEntrySize
		if off+10 > len(receiver) {
			break
		}
		names = append(names, codec.EBCDIC37ToASCIIString(receiver[off:off+10]))
	}
	return names
}

// UserInfo is the subset of QSYRUSRI format USRI0300 fields this package
// exposes as structured data, rather than the raw receiver bytes
// CallProgram itself returns.
type UserInfo struct {
	Profile         string
	UserClass       string
	GroupProfile    string
	TextDescription string
	PasswordExpired bool
}

// RetrieveUserInfo calls QSYRUSRI (format USRI0300) for profile and decodes
// the fixed fields into a UserInfo.
func RetrieveUserInfo(sess *ibmi.Session, profile string) (UserInfo, error) {
	const receiverSize = 200

	params := ibmi.NewProgramCallParameters(
		ibmi.NewProgramCallParameter(ibmi.ParameterOutput, nil, receiverSize),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, codec.PutUint32(nil, receiverSize), 4),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10("USRI0300"), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10(profile), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInputOutput, zeroErrorCode(), errorCodeStructSize),
	)

	msgs := &ibmi.CallMessages{}
	code, err := sess.CallProgram("QSYRUSRI", "QSYS", params, msgs)
	if err != nil {
		return UserInfo{}, err
	}
	if err := checkResult("QSYRUSRI", code, msgs); err != nil {
		return UserInfo{}, err
	}

	receiver := params.At(0).Payload
	if len(receiver) < 89 {
		return UserInfo{}, fmt.Errorf("%w: QSYRUSRI receiver too short (%d bytes)", ErrCallFailed, len(receiver))
	}

	info := UserInfo{
		Profile:         codec.EBCDIC37ToASCIIString(receiver[8:18]),
		UserClass:       codec.EBCDIC37ToASCIIString(receiver[18:28]),
		GroupProfile:    codec.EBCDIC37ToASCIIString(receiver[28:38]),
		TextDescription: codec.EBCDIC37ToASCIIString(receiver[38:88]),
		PasswordExpired: receiver[88] == 'Y' || receiver[88] == 0xE8,
	}
	return info, nil
}

// ChangePassword calls QSYCHGPW to change profile's password from oldPwd
// to newPwd.
func ChangePassword(sess *ibmi.Session, profile, oldPwd, newPwd string) error {
	params := ibmi.NewProgramCallParameters(
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10(profile), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10(oldPwd), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInput, ebcdic10(newPwd), 10),
		ibmi.NewProgramCallParameter(ibmi.ParameterInputOutput, zeroErrorCode(), errorCodeStructSize),
	)

	msgs := &ibmi.CallMessages{}
	code, err := sess.CallProgram("QSYCHGPW", "QSYS", params, msgs)
	if err != nil {
		return err
	}
	return checkResult("QSYCHGPW", code, msgs)
}
