package tcp

import (
	"bufio"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/core"
)

// session is the lifecycle of one accepted connection: login handshake,
// command loop, cleanup. Sessions are fully independent; no error here can
// reach the acceptor or another session.
type session struct {
	id    string
	state *core.State
	log   *zerolog.Logger
	nc    net.Conn
	r     *bufio.Reader
	out   *lineConn
}

func newSession(nc net.Conn, state *core.State, logger *zerolog.Logger) *session {
	return &session{
		id:    uuid.NewString(),
		state: state,
		log:   logger,
		nc:    nc,
		r:     bufio.NewReader(nc),
		out:   newLineConn(nc),
	}
}

func (s *session) run() {
	defer s.nc.Close()

	userID, ok := s.login()
	if !ok {
		return
	}
	defer s.cleanup(userID)

	s.loop(userID)
}

// login reads exactly one line. EOF before any data ends the session
// silently; a LOGIN prefix registers the user and sends the welcome block;
// anything else gets a rejection line and the connection closes. Nothing is
// registered on rejection.
func (s *session) login() (core.UserID, bool) {
	line, _ := s.r.ReadString('\n')
	if line == "" {
		return 0, false
	}
	line = strings.TrimRight(line, "\r\n")

	username, isLogin := strings.CutPrefix(line, loginPrefix)
	if !isLogin {
		if werr := s.out.WriteLine(msgLoginRejected); werr != nil {
			s.log.Debug().Err(werr).Str("session_id", s.id).Msg("write login rejection")
		}
		return 0, false
	}

	// The channel list is read-only; compute it on its own lock acquisition,
	// never the one that registers the user.
	channels := s.state.ChannelNames()

	userID := s.state.Register(username, s.out)
	s.log.Info().
		Str("session_id", s.id).
		Uint64("user_id", uint64(userID)).
		Str("username", username).
		Msg("login")

	if werr := s.writeWelcome(username, channels); werr != nil {
		// The user is registered; the command loop will observe the dead
		// socket and run cleanup.
		s.log.Warn().Err(werr).Str("session_id", s.id).Msg("write welcome")
	}
	return userID, true
}

func (s *session) writeWelcome(username string, channels []string) error {
	if err := s.out.WriteLine(welcomeLine(username)); err != nil {
		return err
	}
	if err := s.out.WriteLine(msgChannelList); err != nil {
		return err
	}
	for _, name := range channels {
		if err := s.out.WriteLine(name); err != nil {
			return err
		}
	}
	return nil
}

// loop reads lines until EOF, a fatal I/O error, or QUIT. Each non-empty
// line is parsed into exactly one command and dispatched; unknown commands
// only elicit a reply and the loop continues.
func (s *session) loop(userID core.UserID) {
	for {
		line, err := s.r.ReadString('\n')
		if line != "" && strings.TrimRight(line, "\r\n") != "" {
			if quit := s.dispatch(userID, line); quit {
				return
			}
		}
		if err != nil {
			s.log.Info().
				Str("session_id", s.id).
				Uint64("user_id", uint64(userID)).
				Msg("client disconnected")
			return
		}
	}
}

// dispatch handles one parsed command. Returns true when the session should
// end (QUIT).
func (s *session) dispatch(userID core.UserID, line string) bool {
	cmd := core.ParseCommand(line)

	switch cmd.Kind {
	case core.CommandJoin:
		s.handleJoin(userID, cmd.Channel)
	case core.CommandActive:
		s.handleActive(userID, cmd.Channel)
	case core.CommandInactive:
		s.state.SetInactive(userID)
	case core.CommandMessage:
		s.handleMessage(userID, cmd.Text)
	case core.CommandQuit:
		s.log.Info().
			Str("session_id", s.id).
			Uint64("user_id", uint64(userID)).
			Msg("client quit")
		return true
	case core.CommandUnknown:
		s.reply(msgUnknownCommand)
	}
	return false
}

func (s *session) handleJoin(userID core.UserID, channel string) {
	switch err := s.state.JoinChannel(channel, userID); err {
	case nil:
		s.reply(joinedLine(channel))
	case core.ErrChannelNotFound:
		s.reply(msgChannelNotFound)
	default:
		s.log.Error().Err(err).Str("session_id", s.id).Str("channel", channel).Msg("join failed")
	}
}

func (s *session) handleActive(userID core.UserID, channel string) {
	switch err := s.state.SetActive(channel, userID); err {
	case nil:
	case core.ErrChannelNotFound:
		s.reply(msgChannelNotFound)
	case core.ErrNotMember:
		s.reply(mustJoinFirstLine(channel))
	default:
		s.log.Error().Err(err).Str("session_id", s.id).Str("channel", channel).Msg("activate failed")
	}
}

func (s *session) handleMessage(userID core.UserID, text string) {
	channels, err := s.state.Broadcast(userID, text)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", s.id).Msg("broadcast failed")
		return
	}
	if channels == 0 {
		s.reply(msgNoActiveChannels)
	}
}

// reply writes one line back to this session's own client. A failed reply is
// not fatal here; the read loop will observe the dead socket.
func (s *session) reply(line string) {
	if err := s.out.WriteLine(line); err != nil {
		s.log.Debug().Err(err).Str("session_id", s.id).Msg("write reply")
	}
}

// cleanup removes the user, its connection entry and its membership from the
// store, then closes the handle. Runs on every exit path after login.
func (s *session) cleanup(userID core.UserID) {
	if conn := s.state.Unregister(userID); conn != nil {
		conn.Close()
	}
}
