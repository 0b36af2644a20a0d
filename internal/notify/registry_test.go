package notify

import (
	"testing"

	"github.com/lernquiz/lernquiz-go/internal/testutil"
)

func TestRegistry_ConnectAndIdentify(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn := r.Connect()
	if r.ConnectionCount() != 1 {
		t.Errorf("ConnectionCount() = %d, want 1", r.ConnectionCount())
	}
	if r.UserConnectionCount("alice") != 0 {
		t.Error("anonymous connection should not count for any user")
	}

	r.Identify(conn.ID(), "alice")
	if r.UserConnectionCount("alice") != 1 {
		t.Errorf("UserConnectionCount(alice) = %d, want 1", r.UserConnectionCount("alice"))
	}
}

func TestRegistry_IdentifyIsIdempotent(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn := r.Connect()
	r.Identify(conn.ID(), "alice")
	r.Identify(conn.ID(), "alice")

	if r.UserConnectionCount("alice") != 1 {
		t.Errorf("UserConnectionCount(alice) = %d, want 1", r.UserConnectionCount("alice"))
	}
}

func TestRegistry_ReidentifyMovesConnection(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn := r.Connect()
	r.Identify(conn.ID(), "alice")
	r.Identify(conn.ID(), "bob")

	if r.UserConnectionCount("alice") != 0 {
		t.Errorf("UserConnectionCount(alice) = %d, want 0", r.UserConnectionCount("alice"))
	}
	if r.UserConnectionCount("bob") != 1 {
		t.Errorf("UserConnectionCount(bob) = %d, want 1", r.UserConnectionCount("bob"))
	}
}

func TestRegistry_IdentifyUnknownConnIsIgnored(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	r.Identify("nope", "alice")
	if r.UserConnectionCount("alice") != 0 {
		t.Error("unknown connection should not be bound")
	}
}

func TestRegistry_MultipleConnectionsPerUser(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn1 := r.Connect()
	conn2 := r.Connect()
	r.Identify(conn1.ID(), "alice")
	r.Identify(conn2.ID(), "alice")

	sent := r.SendToUser("alice", []byte("hello"))
	if sent != 2 {
		t.Errorf("SendToUser() = %d, want 2", sent)
	}

	for i, conn := range []*Conn{conn1, conn2} {
		select {
		case msg := <-conn.Send():
			if string(msg) != "hello" {
				t.Errorf("conn %d received %q, want %q", i+1, string(msg), "hello")
			}
		default:
			t.Errorf("conn %d did not receive message", i+1)
		}
	}
}

func TestRegistry_SendToUserWithoutConnections(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	if sent := r.SendToUser("nobody", []byte("hello")); sent != 0 {
		t.Errorf("SendToUser() = %d, want 0", sent)
	}
}

func TestRegistry_SendDropsWhenBufferFull(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn := r.Connect()
	r.Identify(conn.ID(), "alice")

	for i := 0; i < sendBufferSize; i++ {
		if sent := r.SendToUser("alice", []byte("fill")); sent != 1 {
			t.Fatalf("message %d was not buffered", i)
		}
	}

	// Buffer is full; the next send must drop instead of blocking
	if sent := r.SendToUser("alice", []byte("overflow")); sent != 0 {
		t.Errorf("SendToUser() on full buffer = %d, want 0", sent)
	}
}

func TestRegistry_SendToConn(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn := r.Connect()
	if !r.SendToConn(conn.ID(), []byte("direct")) {
		t.Error("SendToConn() = false, want true")
	}

	select {
	case msg := <-conn.Send():
		if string(msg) != "direct" {
			t.Errorf("received %q, want %q", string(msg), "direct")
		}
	default:
		t.Error("connection did not receive message")
	}

	if r.SendToConn("nope", []byte("direct")) {
		t.Error("SendToConn() to unknown conn = true, want false")
	}
}

func TestRegistry_DisconnectClosesChannelAndDetaches(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn := r.Connect()
	r.Identify(conn.ID(), "alice")
	r.Disconnect(conn.ID())

	if r.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() = %d, want 0", r.ConnectionCount())
	}
	if r.UserConnectionCount("alice") != 0 {
		t.Errorf("UserConnectionCount(alice) = %d, want 0", r.UserConnectionCount("alice"))
	}

	if _, open := <-conn.Send(); open {
		t.Error("send channel still open after Disconnect")
	}

	// Disconnecting twice must not panic
	r.Disconnect(conn.ID())
}

func TestRegistry_DisconnectLeavesOtherConnectionsAlone(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	conn1 := r.Connect()
	conn2 := r.Connect()
	r.Identify(conn1.ID(), "alice")
	r.Identify(conn2.ID(), "alice")

	r.Disconnect(conn1.ID())

	if r.UserConnectionCount("alice") != 1 {
		t.Errorf("UserConnectionCount(alice) = %d, want 1", r.UserConnectionCount("alice"))
	}
	if sent := r.SendToUser("alice", []byte("still here")); sent != 1 {
		t.Errorf("SendToUser() = %d, want 1", sent)
	}
}
