package tcp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/core"
)

func startServer(t *testing.T) (*core.State, string) {
	t.Helper()

	state := core.NewState()
	state.SeedChannel("First", core.KindBroadcast)
	state.SeedChannel("Second", core.KindBroadcast)

	logger := zerolog.Nop()
	srv := NewServer("127.0.0.1:0", state, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	addr := srv.BoundAddr().String()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("server exited with error: %v", err)
		}
	})
	return state, addr
}

type testClient struct {
	t  *testing.T
	nc net.Conn
	r  *bufio.Reader
}

func dialClient(t *testing.T, addr string) *testClient {
	t.Helper()

	nc, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { nc.Close() })
	return &testClient{t: t, nc: nc, r: bufio.NewReader(nc)}
}

func (c *testClient) send(line string) {
	c.t.Helper()
	if _, err := fmt.Fprintf(c.nc, "%s\n", line); err != nil {
		c.t.Fatalf("send %q: %v", line, err)
	}
}

func (c *testClient) readLine() string {
	c.t.Helper()
	c.nc.SetReadDeadline(time.Now().Add(3 * time.Second))
	line, err := c.r.ReadString('\n')
	if err != nil {
		c.t.Fatalf("read line: %v (partial %q)", err, line)
	}
	return strings.TrimRight(line, "\r\n")
}

func (c *testClient) expect(want string) {
	c.t.Helper()
	if got := c.readLine(); got != want {
		c.t.Fatalf("expected %q, got %q", want, got)
	}
}

// login performs the handshake and consumes the welcome block for a server
// seeded with channels First and Second.
func (c *testClient) login(username string) {
	c.t.Helper()
	c.send("LOGIN " + username)
	c.expect(fmt.Sprintf("Welcome, %s, you successfully logged in!", username))
	c.expect("Available channels: ")
	c.expect("First")
	c.expect("Second")
}

func (c *testClient) expectClosed() {
	c.t.Helper()
	c.nc.SetReadDeadline(time.Now().Add(3 * time.Second))
	if line, err := c.r.ReadString('\n'); err == nil {
		c.t.Fatalf("expected closed connection, read %q", line)
	}
}

func waitForUserCount(t *testing.T, state *core.State, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if state.Snapshot().Users == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d users in store, have %d", want, state.Snapshot().Users)
}

func TestRoundTrip(t *testing.T) {
	state, addr := startServer(t)

	alice := dialClient(t, addr)
	alice.login("alice")

	bob := dialClient(t, addr)
	bob.login("bob")
	bob.send("JOIN First")
	bob.expect("you have successfully joined First!")
	bob.send("ACTIVE First")
	// Synchronize on bob's echo so his ACTIVE is processed before alice sends.
	bob.send("MESSAGE ping")
	bob.expect("bob: ping")

	alice.send("JOIN First")
	alice.expect("you have successfully joined First!")
	alice.send("ACTIVE First")
	alice.send("MESSAGE hi")

	// Echo-back: alice is active in First and receives her own line too.
	alice.expect("alice: hi")
	bob.expect("alice: hi")

	alice.send("QUIT")
	alice.expectClosed()
	waitForUserCount(t, state, 1)

	members, err := state.MemberIDs("First")
	if err != nil {
		t.Fatalf("MemberIDs: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("alice's membership must be purged on QUIT, got %v", members)
	}
}

func TestLoginRejection(t *testing.T) {
	state, addr := startServer(t)

	c := dialClient(t, addr)
	c.send("HELLO alice")
	c.expect("expected: LOGIN - dropping connection. Please try again!")
	c.expectClosed()

	if got := state.Snapshot().Users; got != 0 {
		t.Fatalf("rejected login must register nothing, got %d users", got)
	}
}

func TestSilentDisconnectBeforeLogin(t *testing.T) {
	state, addr := startServer(t)

	nc, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	nc.Close()

	time.Sleep(50 * time.Millisecond)
	if got := state.Snapshot().Users; got != 0 {
		t.Fatalf("expected no registrations, got %d users", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	state, addr := startServer(t)

	c := dialClient(t, addr)
	c.login("alice")
	c.send("FOO")
	c.expect("unknown command")

	// State is untouched and the session continues.
	c.send("JOIN First")
	c.expect("you have successfully joined First!")
	st := state.Snapshot()
	if st.Users != 1 {
		t.Fatalf("expected 1 user, got %d", st.Users)
	}
}

func TestJoinUnknownChannel(t *testing.T) {
	_, addr := startServer(t)

	c := dialClient(t, addr)
	c.login("alice")
	c.send("JOIN Ghost")
	c.expect("Requested server not found.")
}

func TestActiveRequiresJoin(t *testing.T) {
	_, addr := startServer(t)

	c := dialClient(t, addr)
	c.login("alice")
	c.send("ACTIVE First")
	c.expect("you must join First first!")
	c.send("ACTIVE Ghost")
	c.expect("Requested server not found.")
}

func TestMessageWithoutActiveChannels(t *testing.T) {
	_, addr := startServer(t)

	c := dialClient(t, addr)
	c.login("alice")
	c.send("MESSAGE anyone?")
	c.expect("you are not active in any channel.")
}

func TestInactiveStopsDelivery(t *testing.T) {
	_, addr := startServer(t)

	alice := dialClient(t, addr)
	alice.login("alice")
	bob := dialClient(t, addr)
	bob.login("bob")

	for _, c := range []*testClient{alice, bob} {
		c.send("JOIN First")
		c.expect("you have successfully joined First!")
		c.send("ACTIVE First")
	}

	bob.send("INACTIVE")
	// INACTIVE has no reply; synchronize on bob's own no-recipients notice.
	bob.send("MESSAGE am I still here?")
	bob.expect("you are not active in any channel.")

	alice.send("MESSAGE hello")
	alice.expect("alice: hello")

	// bob must not have received alice's message.
	bob.send("MESSAGE still nothing")
	bob.expect("you are not active in any channel.")
}

func TestAbruptDisconnectIsContained(t *testing.T) {
	state, addr := startServer(t)

	alice := dialClient(t, addr)
	alice.login("alice")
	bob := dialClient(t, addr)
	bob.login("bob")

	for _, c := range []*testClient{alice, bob} {
		c.send("JOIN First")
		c.expect("you have successfully joined First!")
		c.send("ACTIVE First")
	}

	bob.nc.Close()
	waitForUserCount(t, state, 1)

	// Routing after bob is gone skips him silently; alice still gets her echo.
	alice.send("MESSAGE anyone?")
	alice.expect("alice: anyone?")
}

func TestConcurrentLoginsGetDistinctUsers(t *testing.T) {
	state, addr := startServer(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := dialClient(t, addr)
			c.send(fmt.Sprintf("LOGIN user%d", i))
			if line := c.readLine(); !strings.Contains(line, fmt.Sprintf("user%d", i)) {
				t.Errorf("welcome %q does not mention user%d", line, i)
				return
			}
			c.expect("Available channels: ")
			c.expect("First")
			c.expect("Second")
			c.send("JOIN First")
			c.expect("you have successfully joined First!")
		}(i)
	}
	wg.Wait()

	// Connections stay open until t.Cleanup, so all n users are registered.
	waitForUserCount(t, state, n)
	members, err := state.MemberIDs("First")
	if err != nil {
		t.Fatalf("MemberIDs: %v", err)
	}
	seen := make(map[core.UserID]bool)
	for _, id := range members {
		if seen[id] {
			t.Fatalf("duplicate member id %d", id)
		}
		seen[id] = true
	}
}
