// Package hostsrv holds the static vocabulary of the IBM i host-server
// protocol: well-known ports, server IDs, ReqRep IDs, dynamic-field CP
// codes and the authentication/server-info result-code tables. It is pure
// data, in the flat const-block style of jguillaumes-ims-injector's
// internal/irm/irm_values.go and the map-keyed table style of its
// internal/irm_net/irm_messages.go.
package hostsrv

// TCP ports, cleartext/SSL, for each host server. Only SignonVerify and
// RemoteCommand are exercised by the call engine; the rest are declared for
// completeness, per spec §6.
const (
	PortSignonVerify    = 8476
	PortSignonVerifySSL = 9476

	PortRemoteCommand    = 8475
	PortRemoteCommandSSL = 9475

	PortDatabase    = 8471
	PortDatabaseSSL = 9471

	PortDataQueues    = 8472
	PortDataQueuesSSL = 9472

	PortIFS    = 8473
	PortIFSSSL = 9473

	PortNetprt    = 8474
	PortNetprtSSL = 9474

	PortTelnet    = 23
	PortTelnetSSL = 992

	PortServiceTools = 3000
	PortServerMapper = 449

	PortLicense    = 8470
	PortLicenseSSL = 9470
)

// Server IDs identify which host-server a frame targets.
const (
	ServerIDSignonVerify  uint16 = 0xE009
	ServerIDRemoteCommand uint16 = 0xE008
)

// ReqRep IDs name the specific request/reply exchanged on a channel.
const (
	ReqRepSignonExchangeAttributes uint16 = 0x7003
	ReqRepSignonAuthenticate       uint16 = 0x7004

	ReqRepRCExchangeAttributes uint16 = 0x7001
	ReqRepRCAuthenticate       uint16 = 0x7002
	ReqRepRCRetrieveInfo       uint16 = 0x1001
	ReqRepRCCallCommand        uint16 = 0x1002
	ReqRepRCCallProgram        uint16 = 0x1003
)
