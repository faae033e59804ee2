// net_udp.go - UDP datagram transport backing the Net capability
//
// The spec's transport is explicitly "lossy datagram" (spec.md §1); UDP
// is the natural stdlib fit. Grounded on the teacher's (deleted)
// runtime_ipc.go for its address-validation-before-dial and deadline
// idiom, retargeted from a Unix-socket JSON-RPC request/response to
// connectionless UDP send/receive addressed by peer string.

package main

import (
	"fmt"
	"net"
	"time"
)

const udpMaxDatagram = 64 // spec.md §6: 64-byte max datagram

// UDPNet implements Net over a bound UDP socket. Peer addresses are
// plain "host:port" strings, used directly as net.ResolveUDPAddr input.
type UDPNet struct {
	conn *net.UDPConn
}

// NewUDPNet binds a UDP socket at bindAddr (e.g. ":7777") and returns a
// Net backed by it.
func NewUDPNet(bindAddr string) (*UDPNet, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("net_udp: resolve bind address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("net_udp: listen: %w", err)
	}
	return &UDPNet{conn: conn}, nil
}

// Send transmits raw (capped at udpMaxDatagram - exceeding it is a
// programmer error in the caller, not a transport condition) to addr.
func (u *UDPNet) Send(addr string, raw []byte) error {
	if len(raw) > udpMaxDatagram {
		return fmt.Errorf("net_udp: datagram too large: %d bytes", len(raw))
	}
	dst, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("net_udp: resolve peer address %q: %w", addr, err)
	}
	_, err = u.conn.WriteToUDP(raw, dst)
	return err
}

// Recv blocks briefly for the next datagram (a short read deadline, not
// the caller's choice of context, since Connector/FrameSyncer both poll
// this once per tick and must not block the main loop): on timeout it
// returns an error, which both callers treat as "nothing arrived this
// tick" and simply stop draining.
func (u *UDPNet) Recv() (string, []byte, error) {
	buf := make([]byte, udpMaxDatagram)
	if err := u.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return "", nil, err
	}
	n, from, err := u.conn.ReadFromUDP(buf)
	if err != nil {
		return "", nil, err
	}
	return from.String(), buf[:n], nil
}

// LocalAddr reports the socket's bound local address.
func (u *UDPNet) LocalAddr() string {
	return u.conn.LocalAddr().String()
}

// Close releases the underlying socket.
func (u *UDPNet) Close() error {
	return u.conn.Close()
}
