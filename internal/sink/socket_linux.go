//go:build linux

package sink

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setReuseAddr enables SO_REUSEADDR so a locked source port can be rebound
// across successive replay runs without waiting out TIME_WAIT.
func setReuseAddr(fd uintptr) error {
	return syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
}

// setReusePort enables SO_REUSEPORT (Linux-specific) for the same reason,
// matching the original's #ifdef SO_REUSEPORT guard.
func setReusePort(fd uintptr) error {
	return syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, unix.SO_REUSEPORT, 1)
}

// setMulticastTTL sets IP_MULTICAST_TTL for a class-D destination.
func setMulticastTTL(fd uintptr, ttl int) error {
	return syscall.SetsockoptByte(int(fd), syscall.IPPROTO_IP, syscall.IP_MULTICAST_TTL, byte(ttl))
}

// setRouterAlert sets IP_OPTIONS to the literal RSVP router-alert bytes.
func setRouterAlert(fd uintptr, option [4]byte) error {
	return syscall.SetsockoptString(int(fd), syscall.IPPROTO_IP, syscall.IP_OPTIONS, string(option[:]))
}
