package server

import (
	"net"

	"github.com/pkg/errors"

	"golang.org/x/net/netutil"
)

// Listen creates a TCP listener on the specified address. If
// maximumConnections is positive, the listener accepts at most that many
// simultaneous connections.
func Listen(address string, maximumConnections int) (net.Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "unable to listen")
	}
	if maximumConnections > 0 {
		listener = netutil.LimitListener(listener, maximumConnections)
	}
	return listener, nil
}
