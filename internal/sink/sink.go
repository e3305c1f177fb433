// Package sink owns the two connected UDP transmit handles (even port for
// RTP, odd port for RTCP) that a replay run sends through, generalized from
// teacher's pkg/rtp/transport_udp.go RTP-only transport into a sink pair.
package sink

import (
	"fmt"
	"net"
	"syscall"

	"github.com/arzzra/rtpreplay/internal/script"
)

// routerAlertOption is the literal RSVP router-alert IP option the original
// rtpsend sets via IP_OPTIONS when -a is given.
var routerAlertOption = [4]byte{148, 4, 0, 1}

// Config describes the destination and socket tuning for a UDP sink pair.
type Config struct {
	// Host/Port name the RTP destination; the RTCP socket connects to Port+1.
	Host string
	Port int
	// TTL is applied via IP_MULTICAST_TTL when Host is a class-D address.
	TTL int
	// SourcePort, if non-zero, locks the local port pair (SourcePort,
	// SourcePort+1) with SO_REUSEADDR/SO_REUSEPORT before connecting.
	SourcePort int
	// RouterAlert sets IP_OPTIONS to the RSVP router-alert option.
	RouterAlert bool
}

// Pair holds the two connected UDP sockets a playout run transmits through.
type Pair struct {
	rtp  *net.UDPConn
	rtcp *net.UDPConn
}

// New resolves cfg.Host/Port (falling back to localhost if it resolves to
// the wildcard address, matching the original's hpt()/main() behavior),
// then creates and connects the RTP and RTCP sockets in that order.
func New(cfg Config) (*Pair, error) {
	addr, err := resolveDestination(cfg.Host, cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("sink: resolving destination: %w", err)
	}

	p := &Pair{}
	conns := make([]*net.UDPConn, 2)
	for i := 0; i < 2; i++ {
		dest := &net.UDPAddr{IP: addr.IP, Port: addr.Port + i}
		conn, err := dial(cfg, dest, i)
		if err != nil {
			p.rtp, p.rtcp = conns[0], conns[1]
			p.Close()
			return nil, fmt.Errorf("sink: socket %d: %w", i, err)
		}
		conns[i] = conn
	}
	p.rtp = conns[0]
	p.rtcp = conns[1]
	return p, nil
}

// resolveDestination parses host/port, falling back to localhost when host
// resolves to the wildcard address (0.0.0.0), as rtpsend's main() does via
// gethostbyname("localhost").
func resolveDestination(host string, port int) (*net.UDPAddr, error) {
	addr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, err
	}
	if addr.IP == nil || addr.IP.Equal(net.IPv4zero) {
		local, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("localhost:%d", port))
		if err != nil {
			return nil, fmt.Errorf("resolving localhost fallback: %w", err)
		}
		return local, nil
	}
	return addr, nil
}

// dial creates a UDP socket, optionally binding it to a fixed source port
// with SO_REUSEADDR/SO_REUSEPORT before connect (bind-before-connect order,
// same as rtpsend's main()), then connects it to dest and applies
// IP_MULTICAST_TTL / IP_OPTIONS router-alert as requested.
func dial(cfg Config, dest *net.UDPAddr, index int) (*net.UDPConn, error) {
	dialer := net.Dialer{}
	if cfg.SourcePort != 0 {
		dialer.LocalAddr = &net.UDPAddr{Port: cfg.SourcePort + index}
		dialer.Control = func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				if sockErr = setReuseAddr(fd); sockErr != nil {
					return
				}
				sockErr = setReusePort(fd)
			}); err != nil {
				return err
			}
			return sockErr
		}
	}

	conn, err := dialer.Dial("udp4", dest.String())
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("dial: unexpected connection type %T", conn)
	}

	rawConn, err := udpConn.SyscallConn()
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("syscall conn: %w", err)
	}

	var optErr error
	if dest.IP.IsMulticast() {
		ttl := cfg.TTL
		if ttl == 0 {
			ttl = 16
		}
		if err := rawConn.Control(func(fd uintptr) {
			optErr = setMulticastTTL(fd, ttl)
		}); err != nil {
			udpConn.Close()
			return nil, err
		}
		if optErr != nil {
			udpConn.Close()
			return nil, fmt.Errorf("IP_MULTICAST_TTL: %w", optErr)
		}
	}

	if cfg.RouterAlert {
		if err := rawConn.Control(func(fd uintptr) {
			optErr = setRouterAlert(fd, routerAlertOption)
		}); err != nil {
			udpConn.Close()
			return nil, err
		}
		if optErr != nil {
			udpConn.Close()
			return nil, fmt.Errorf("IP router alert option: %w", optErr)
		}
	}

	return udpConn, nil
}

// Send implements internal/playout.Transmitter.
func (p *Pair) Send(tag script.Sink, data []byte) error {
	conn := p.rtp
	if tag == script.SinkRTCP {
		conn = p.rtcp
	}
	if conn == nil {
		return fmt.Errorf("sink: socket for %v not initialized", tag)
	}
	_, err := conn.Write(data)
	return err
}

// Close closes both sockets, ignoring a nil handle (used when New fails
// partway through setup).
func (p *Pair) Close() error {
	var firstErr error
	for _, c := range []*net.UDPConn{p.rtp, p.rtcp} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
