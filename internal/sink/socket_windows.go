//go:build windows

package sink

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// windows does not define IP_OPTIONS in the stdlib syscall package; this is
// the standard Winsock value (see ws2ipdef.h).
const ipOptions = 1

// setReuseAddr enables SO_REUSEADDR; Windows has no SO_REUSEPORT analogue.
func setReuseAddr(fd uintptr) error {
	return syscall.SetsockoptInt(syscall.Handle(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
}

// setReusePort is a no-op on Windows: SO_REUSEADDR already covers the
// locked source-port rebind case the original used SO_REUSEPORT for.
func setReusePort(fd uintptr) error {
	return nil
}

// setMulticastTTL sets IP_MULTICAST_TTL for a class-D destination.
func setMulticastTTL(fd uintptr, ttl int) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IP, syscall.IP_MULTICAST_TTL, ttl)
}

// setRouterAlert sets IP_OPTIONS to the literal RSVP router-alert bytes.
func setRouterAlert(fd uintptr, option [4]byte) error {
	return windows.Setsockopt(windows.Handle(fd), windows.IPPROTO_IP, ipOptions, &option[0], int32(len(option)))
}
