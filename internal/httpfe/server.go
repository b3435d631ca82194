package httpfe

import (
	"bufio"
	"net"
	"time"
)

// Server wraps a net.Listener with a non-blocking Accept: AcceptOne never
// blocks the control loop's tick beyond the listener's own backlog, since
// the loop has a watchdog to service and a motor to poll regardless of
// whether a client is waiting.
type Server struct {
	ln net.Listener
}

// New returns a Server accepting connections on ln.
func New(ln net.Listener) *Server {
	return &Server{ln: ln}
}

// deadlineListener is the minimal interface AcceptOne needs from a net.Listener
// configured with a short accept deadline, so a tick with no waiting client
// returns promptly instead of blocking the single-threaded loop.
type deadlineListener interface {
	net.Listener
	SetDeadline(time.Time) error
}

// AcceptOne accepts at most one connection, parses exactly one request from
// it, and returns both the parsed Request and the connection (still open,
// so the caller can write the response once the FSM has transitioned). If
// the listener supports SetDeadline, AcceptOne uses pollTimeout to avoid
// blocking a tick indefinitely when no client is waiting; ok=false means
// no request was available this tick.
func (s *Server) AcceptOne(pollTimeout time.Duration) (req Request, conn net.Conn, ok bool) {
	if dl, supported := s.ln.(deadlineListener); supported {
		dl.SetDeadline(time.Now().Add(pollTimeout))
	}

	conn, err := s.ln.Accept()
	if err != nil {
		return Request{}, nil, false
	}

	r := bufio.NewReader(conn)
	parsed, err := ParseRequest(r)
	if err != nil {
		conn.Close()
		return Request{}, nil, false
	}

	return parsed, conn, true
}

// Respond writes the final response to conn and closes it: every accepted
// connection serves exactly one request, with no persistent client
// connections held across ticks.
func Respond(conn net.Conn, kind Kind, accepted bool, stateName string) error {
	defer conn.Close()
	w := bufio.NewWriter(conn)
	return WriteResponse(w, kind, accepted, stateName)
}
