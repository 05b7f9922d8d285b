package handlers

import (
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

// relay forwards msg verbatim to every other member of the sender's lobby.
// Nothing is kept server side.
func (d *Dispatcher) relay(s *session.Session, msg protocol.Outbound) {
	if l, ok := d.lobbyOf(s); ok {
		l.BroadcastOthers(s, msg)
	}
}

// handleSetBossBlind is host-only and reaches every non-host member.
func (d *Dispatcher) handleSetBossBlind(s *session.Session, m *protocol.SetBossBlind) {
	l, ok := d.lobbyOf(s)
	if !ok || !l.IsHost(s) {
		return
	}
	l.BroadcastOthers(s, *m)
}
