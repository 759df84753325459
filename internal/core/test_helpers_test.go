package core

import "sync"

// fakeConn records written lines; optionally fails every write to simulate a
// dead socket.
type fakeConn struct {
	mu         sync.Mutex
	lines      []string
	failWrites bool
	closed     bool
}

type fakeConnErr struct{}

func (fakeConnErr) Error() string { return "broken pipe" }

func (c *fakeConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return fakeConnErr{}
	}
	c.lines = append(c.lines, line)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}
