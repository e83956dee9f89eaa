// File: transport/sockopt_linux.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux socket tuning applied before connect: disable Nagle for low-latency
// small frames and enable keepalive probing on the long-lived connection.

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// tuneSocket runs inside net.Dialer.Control, before the connect syscall.
func tuneSocket(network, address string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		if serr != nil {
			return
		}
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
