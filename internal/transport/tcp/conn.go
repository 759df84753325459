package tcp

import (
	"net"
	"sync"
)

// lineConn wraps a net.Conn as a core.Conn. Writes are serialized per
// recipient so interleaved broadcasts from different sessions cannot tear a
// line.
type lineConn struct {
	mu sync.Mutex
	nc net.Conn
}

func newLineConn(nc net.Conn) *lineConn {
	return &lineConn{nc: nc}
}

func (c *lineConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.nc.Write([]byte(line + "\n"))
	return err
}

func (c *lineConn) Close() error {
	return c.nc.Close()
}
