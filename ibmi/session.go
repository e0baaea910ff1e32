// Package ibmi implements a client for the IBM i (AS/400) host-server
// binary protocol: authentication, CL command execution, and typed
// program/service-program calls. Grounded on jguillaumes-ims-injector's
// IMSconSess/Do_interaction pair, generalized from IMS Connect's single
// channel to this protocol's two independent channels and multi-step
// handshakes.
package ibmi

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jguillaumes/go-ibmi/internal/transport"
)

// State names a Session's position in the handshake state machine of
// spec §4.6. Transitions flow strictly top-to-bottom; any fatal error
// forces the session back to Closed.
type State int

const (
	Closed State = iota
	SignonConnected
	SignonAuthed
	RcConnected
	RcAuthed
	Ready
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case SignonConnected:
		return "SignonConnected"
	case SignonAuthed:
		return "SignonAuthed"
	case RcConnected:
		return "RcConnected"
	case RcAuthed:
		return "RcAuthed"
	case Ready:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Session owns the Sign-on Verify and Remote Command channels and the
// negotiated state both handshakes produce. A Session is not safe for
// concurrent use: the wire protocol carries no request ID, so a caller
// needing parallelism must create multiple sessions (spec §5).
type Session struct {
	config ConnectionConfig
	log    *logrus.Logger

	mu    sync.Mutex
	state State

	signonConn *transport.Conn
	rcConn     *transport.Conn

	signonClientSeed uint64
	signonServerSeed uint64
	rcClientSeed     uint64
	rcServerSeed     uint64

	serverVersion         uint32
	serverLevel           uint16
	serverCCSID           uint32
	serverNLV             string
	serverDatastreamLevel uint16
	passwordLevel         uint8
	jobName               string
}

// NewSession builds a Session from config. No I/O happens until Connect.
func NewSession(config ConnectionConfig, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		config:      config,
		log:         log,
		state:       Closed,
		serverCCSID: codecDefaultCCSID,
		serverNLV:   defaultNLV,
	}
}

// codecDefaultCCSID and defaultNLV mirror spec §3's stated defaults before
// any handshake has run.
const (
	codecDefaultCCSID uint32 = 37
	defaultNLV               = "2924"
)

// State reports the session's current position in the handshake state
// machine.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ServerVersion, ServerLevel, ServerCCSID, ServerNLV, ServerDatastreamLevel,
// PasswordLevel and JobName expose the negotiated session state of spec §3.
func (s *Session) ServerVersion() uint32         { return s.serverVersion }
func (s *Session) ServerLevel() uint16           { return s.serverLevel }
func (s *Session) ServerCCSID() uint32           { return s.serverCCSID }
func (s *Session) ServerNLV() string             { return s.serverNLV }
func (s *Session) ServerDatastreamLevel() uint16 { return s.serverDatastreamLevel }
func (s *Session) PasswordLevel() uint8          { return s.passwordLevel }
func (s *Session) JobName() string               { return s.jobName }

// Connect executes the full handshake sequence: ConnectSignon, AuthSignon,
// ConnectRemoteCommand, AuthRemoteCommand, RetrieveServerInfo, in that
// order. It is idempotent: calling Connect while already Ready is a no-op.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Ready {
		return nil
	}
	if s.state != Closed {
		return fmt.Errorf("%w: Connect called from state %s", ErrProtocol, s.state)
	}

	if err := s.connectSignonVerify(); err != nil {
		s.closeLocked()
		return err
	}
	if err := s.authenticateSignonVerify(); err != nil {
		s.closeLocked()
		return err
	}
	if err := s.connectRemoteCommand(); err != nil {
		s.closeLocked()
		return err
	}
	if err := s.authenticateRemoteCommand(); err != nil {
		s.closeLocked()
		return err
	}
	if err := s.retrieveRemoteCommandServerInformation(); err != nil {
		s.closeLocked()
		return err
	}

	s.state = Ready
	return nil
}

// Disconnect closes both channels, clears the job name and moves the
// session to Closed; the other negotiated values are kept. It is a no-op if
// already Closed.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	var firstErr error
	if s.signonConn != nil {
		if err := s.signonConn.Disconnect(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.signonConn = nil
	}
	if s.rcConn != nil {
		if err := s.rcConn.Disconnect(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.rcConn = nil
	}
	s.state = Closed
	s.jobName = ""
	return firstErr
}

// requireReady returns ErrNotConnected unless the session is Ready; the
// call engine calls this before doing any I/O.
func (s *Session) requireReady() error {
	if s.state != Ready {
		return fmt.Errorf("%w: not connected", ErrNotConnected)
	}
	return nil
}
