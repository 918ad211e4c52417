package transport

import "gopkg.in/yaml.v3"

// Kind identifies what a Frame carries, so the hub and peers know how to
// route or consume it without inspecting the payload.
type Kind string

const (
	KindHandshake Kind = "HANDSHAKE"
	KindReq       Kind = "REQ"
	KindResp      Kind = "RESP"
	KindConfig    Kind = "CONFIG"
	KindGather    Kind = "GATHER"
	KindBarrier   Kind = "BARRIER"
	KindAbort     Kind = "ABORT"
)

// Tag distinguishes concurrent conversations between the same pair of
// peers, mirroring mpi4py's send/recv tag argument. The RAB allocates one
// per outstanding fetch; collectives use the fixed tags below.
type Tag int

const (
	// TagControl carries handshake, barrier, and abort traffic.
	TagControl Tag = -1
	// TagGather carries collective-gather payloads.
	TagGather Tag = -2
	// TagCapTable carries the merged remote-capability table the
	// supervisor broadcasts back to every peer after the RAB bootstrap
	// gather.
	TagCapTable Tag = -3
	// TagAssignment carries a peer's slice of the control file from the
	// supervisor to a worker.
	TagAssignment Tag = -4
)

// Frame is the unit exchanged over a connection. Src and Dst are peer
// ranks; Dst is meaningful only to the hub, which relays any frame not
// addressed to rank 0 on to the worker holding that rank.
type Frame struct {
	Kind    Kind   `yaml:"kind"`
	Src     int    `yaml:"src"`
	Dst     int    `yaml:"dst"`
	Tag     Tag    `yaml:"tag"`
	Payload []byte `yaml:"payload,omitempty"`
	// Nonce identifies one dial attempt for a KindHandshake frame (see
	// DialPeer). It lets the hub tell a genuinely new connection for a rank
	// apart from a stray duplicate handshake retried after a slow accept.
	Nonce string `yaml:"nonce,omitempty"`
}

// Marshal encodes f for the wire. yaml.v3 base64-encodes the Payload
// field automatically, so this doubles as the framing and the envelope.
func (f Frame) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// UnmarshalFrame decodes a wire message produced by Frame.Marshal.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}
