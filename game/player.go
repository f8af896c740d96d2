package game

import "github.com/rpsarena/rps-backend/utils/logger"

// Player is the transient per-connection participant. Created on a successful
// identify, gone when the connection goes.
type Player struct {
	ID     string
	Handle string
	Conn   Conn

	choice Choice // pending throw for the active round, guarded by the match mutex
}

func NewPlayer(id, handle string, conn Conn) *Player {
	return &Player{ID: id, Handle: handle, Conn: conn}
}

func (p *Player) send(ev Event) {
	if err := p.Conn.Send(ev); err != nil {
		logger.Debugf("dropping %s event to user %s: %v", ev.Type, p.ID, err)
	}
}
