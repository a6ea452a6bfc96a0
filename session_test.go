package chatroom

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startSession create a session backed by a mock connection, start its
// receive loop and consume the welcome frame.
func startSession(t *testing.T, reg *Registry, name string) (*Session, *mockConn) {
	t.Helper()

	s, mc := testSession(t, reg, name)
	go s.Run()

	welcome := testRecvMsg(t, mc)
	require.Equal(t, KindSystem, welcome.Kind)
	require.Equal(t, reg.conf.WelcomeText, welcome.Body)

	return s, mc
}

// joinRoom issue a `/join` on `mc` and consume the join notice and the
// roster reply.
//
// Waiting for the roster guarantees the join fully completed before the
// test moves on, which keeps multi-session tests deterministic.
func joinRoom(t *testing.T, mc *mockConn, roomName, wantRoster string) {
	t.Helper()

	require.NoError(t, mc.TestSend("/join "+roomName))

	notice := testRecvMsg(t, mc)
	require.Equal(t, KindSystem, notice.Kind)
	require.Contains(t, notice.Body, "joined "+roomName)

	roster := testRecvMsg(t, mc)
	require.Equal(t, KindRoster, roster.Kind)
	require.Equal(t, wantRoster, roster.Body)
}

func TestNewSessionRejectsBadNames(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()

	_, err := NewSession(reg, newMockConn(), "")
	req.ErrorIs(err, InvalidName)
	_, err = NewSession(reg, newMockConn(), "   ")
	req.ErrorIs(err, InvalidName)
	_, err = NewSession(reg, newMockConn(), strings.Repeat("x", reg.conf.MaxNameLen+1))
	req.ErrorIs(err, InvalidName)

	s, err := NewSession(reg, newMockConn(), "  alice  ")
	req.NoError(err)
	req.Equal("alice", s.Name())
}

func TestSessionJoinAndChat(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mcA := startSession(t, reg, "alice")
	_, mcB := startSession(t, reg, "bob")

	joinRoom(t, mcA, "lobby", "alice")
	joinRoom(t, mcB, "lobby", "alice, bob")

	// alice also saw bob come in
	req.Equal("bob joined lobby", testRecvMsg(t, mcA).Body)

	// a chat line is broadcast to the whole room, the sender included
	req.NoError(mcA.TestSend("hi bob"))
	for _, mc := range []*mockConn{mcA, mcB} {
		msg := testRecvMsg(t, mc)
		req.Equal(KindChat, msg.Kind)
		req.Equal("alice", msg.From)
		req.Equal("lobby", msg.Room)
		req.Equal("hi bob", msg.Body)
	}
}

func TestSessionChatOutsideRoom(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	req.NoError(mc.TestSend("hello?"))
	msg := testRecvMsg(t, mc)
	req.Equal(KindError, msg.Kind)
	req.Empty(reg.Rooms())
}

func TestSessionEmptyChatRejected(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mcA := startSession(t, reg, "alice")
	_, mcB := startSession(t, reg, "bob")

	joinRoom(t, mcA, "lobby", "alice")
	joinRoom(t, mcB, "lobby", "alice, bob")
	testRecvMsg(t, mcA) // bob's join notice

	req.NoError(mcA.TestSend("   "))
	req.Equal(KindError, testRecvMsg(t, mcA).Kind)

	// Nothing reached the room
	_, err := mcB.TestRecv(shortTimeout)
	req.ErrorIs(err, TestTimeout)
}

func TestSessionOverlongChatRejected(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	joinRoom(t, mc, "lobby", "alice")

	req.NoError(mc.TestSend(strings.Repeat("a", reg.conf.MaxMessageLen+1)))
	req.Equal(KindError, testRecvMsg(t, mc).Kind)
}

func TestSessionListRoster(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	joinRoom(t, mc, "lobby", "alice")

	req.NoError(mc.TestSend("/list"))
	msg := testRecvMsg(t, mc)
	req.Equal(KindRoster, msg.Kind)
	req.Equal("lobby", msg.Room)
	req.Equal("alice", msg.Body)
}

// Listing while not in a room is reported to the sender as an error, and
// never touches the registry.
func TestSessionListOutsideRoom(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	req.NoError(mc.TestSend("/list"))
	req.Equal(KindError, testRecvMsg(t, mc).Kind)
}

func TestSessionLeaveOutsideRoom(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	req.NoError(mc.TestSend("/leave"))
	req.Equal(KindError, testRecvMsg(t, mc).Kind)
}

func TestSessionRooms(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	req.NoError(mc.TestSend("/rooms"))
	msg := testRecvMsg(t, mc)
	req.Equal(KindRooms, msg.Kind)
	req.Equal("No active rooms", msg.Body)

	joinRoom(t, mc, "lobby", "alice")

	req.NoError(mc.TestSend("/rooms"))
	msg = testRecvMsg(t, mc)
	req.Equal(KindRooms, msg.Kind)
	req.Equal("lobby (1)", msg.Body)
}

func TestSessionHelp(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	req.NoError(mc.TestSend("/help"))
	msg := testRecvMsg(t, mc)
	req.Equal(KindSystem, msg.Kind)
	req.Contains(msg.Body, "/join <room>")
}

func TestSessionUnknownCommand(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mcA := startSession(t, reg, "alice")
	_, mcB := startSession(t, reg, "bob")

	joinRoom(t, mcA, "lobby", "alice")
	joinRoom(t, mcB, "lobby", "alice, bob")
	testRecvMsg(t, mcA) // bob's join notice

	// Only the sender hears about it, and the room is unaffected
	req.NoError(mcA.TestSend("/frobnicate"))
	req.Equal(KindError, testRecvMsg(t, mcA).Kind)

	_, err := mcB.TestRecv(shortTimeout)
	req.ErrorIs(err, TestTimeout)
	req.Equal([]string{"alice", "bob"}, reg.Roster("lobby"))
}

func TestSessionQuit(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mcA := startSession(t, reg, "alice")
	_, mcB := startSession(t, reg, "bob")

	joinRoom(t, mcA, "lobby", "alice")
	joinRoom(t, mcB, "lobby", "alice, bob")
	testRecvMsg(t, mcA) // bob's join notice

	req.NoError(mcA.TestSend("/quit"))

	// The quitter gets a goodbye, its room is left and its connection
	// released
	msg := testRecvMsg(t, mcA)
	req.Equal(KindSystem, msg.Kind)
	req.Equal("Goodbye!", msg.Body)

	req.Equal("alice left lobby", testRecvMsg(t, mcB).Body)
	req.Eventually(func() bool {
		return mcA.isClosed()
	}, recvTimeout, 10*time.Millisecond)
	req.Equal([]string{"bob"}, reg.Roster("lobby"))
}

// A dropped transport tears the session down and its room is notified
// through the usual leave path.
func TestSessionDisconnect(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mcA := startSession(t, reg, "alice")
	_, mcB := startSession(t, reg, "bob")

	joinRoom(t, mcA, "lobby", "alice")
	joinRoom(t, mcB, "lobby", "alice, bob")

	mcA.Close()

	req.Equal("alice left lobby", testRecvMsg(t, mcB).Body)
	req.Equal([]string{"bob"}, reg.Roster("lobby"))
}

// The last member disconnecting removes the room from the registry.
func TestSessionDisconnectRemovesRoom(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mc := startSession(t, reg, "alice")

	joinRoom(t, mc, "lobby", "alice")

	mc.Close()

	req.Eventually(func() bool {
		return len(reg.Rooms()) == 0
	}, recvTimeout, 10*time.Millisecond)
}

func TestSessionNameTaken(t *testing.T) {
	req := require.New(t)
	reg := testRegistry()
	_, mcA := startSession(t, reg, "dude")
	_, mcB := startSession(t, reg, "dude")

	joinRoom(t, mcA, "lobby", "dude")

	req.NoError(mcB.TestSend("/join lobby"))
	msg := testRecvMsg(t, mcB)
	req.Equal(KindError, msg.Kind)
	req.Contains(msg.Body, "already taken")
	req.Equal([]string{"dude"}, reg.Roster("lobby"))
}
