package core

import "testing"

func TestPresenceOnlineOffline(t *testing.T) {
	p := NewPresence()

	if p.IsOnline("alice") {
		t.Fatal("alice should start offline")
	}

	p.MarkOnline("alice", "conn-1")
	if !p.IsOnline("alice") {
		t.Fatal("alice should be online after marking")
	}

	p.MarkOffline("conn-1")
	if p.IsOnline("alice") {
		t.Fatal("alice should be offline after her only connection left")
	}
}

func TestPresenceMultipleConnections(t *testing.T) {
	p := NewPresence()

	p.MarkOnline("alice", "tab-1")
	p.MarkOnline("alice", "tab-2")

	p.MarkOffline("tab-1")
	if !p.IsOnline("alice") {
		t.Fatal("alice still has a live connection and should be online")
	}

	p.MarkOffline("tab-2")
	if p.IsOnline("alice") {
		t.Fatal("alice should be offline once all connections are gone")
	}
}

func TestPresenceUnknownConnNoop(t *testing.T) {
	p := NewPresence()
	p.MarkOnline("alice", "conn-1")

	// Disconnect of a connection that never registered must not affect others.
	p.MarkOffline("ghost")
	if !p.IsOnline("alice") {
		t.Fatal("unknown disconnect must not change alice's presence")
	}
}

func TestPresenceRepeatedMark(t *testing.T) {
	p := NewPresence()

	p.MarkOnline("alice", "conn-1")
	p.MarkOnline("alice", "conn-1")

	p.MarkOffline("conn-1")
	if p.IsOnline("alice") {
		t.Fatal("duplicate marks for one connection must not leak presence")
	}
	if n := p.OnlineCount(); n != 0 {
		t.Fatalf("expected 0 online users, got %d", n)
	}
}
