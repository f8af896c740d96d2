package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpsarena/rps-backend/utils/logger"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Config tunes the countdown. Tests shrink the tick interval.
type Config struct {
	CountdownTicks int
	TickInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{CountdownTicks: 10, TickInterval: time.Second}
}

// ArchivedMatch is handed to the archiver once a match leaves the live set.
type ArchivedMatch struct {
	ID             string
	FirstPlayerID  string
	SecondPlayerID string
	WinnerID       string
	Status         string // finished | abandoned
	Rounds         []Round
	StartedAt      time.Time
	EndedAt        time.Time
}

// MatchArchiver persists completed matches. Optional; failures are logged and
// never reach clients.
type MatchArchiver interface {
	ArchiveMatch(ctx context.Context, rec ArchivedMatch) error
}

// Matchmaker owns the waiting pool, the invite-code index and the set of live
// matches. One mutex over all of it; per-match state lives behind each
// match's own lock. Lock order is always matchmaker before match.
type Matchmaker struct {
	cfg       Config
	committer *ResultCommitter
	archive   MatchArchiver

	mu      sync.Mutex
	waiting []*Player // FIFO
	byCode  map[string]*Match
	byUser  map[string]*Match
	matches map[string]*Match
	rng     *rand.Rand
}

func NewMatchmaker(cfg Config, committer *ResultCommitter, archive MatchArchiver) *Matchmaker {
	return &Matchmaker{
		cfg:       cfg,
		committer: committer,
		archive:   archive,
		byCode:    make(map[string]*Match),
		byUser:    make(map[string]*Match),
		matches:   make(map[string]*Match),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// JoinRandom pairs the player with the longest-waiting entry, or enqueues
// them when nobody is waiting.
func (mm *Matchmaker) JoinRandom(p *Player) error {
	mm.mu.Lock()
	if _, ok := mm.byUser[p.ID]; ok {
		mm.mu.Unlock()
		return ErrAlreadyInMatch
	}
	for _, w := range mm.waiting {
		if w.ID == p.ID {
			mm.mu.Unlock()
			p.send(Event{Type: EventWaiting})
			return nil
		}
	}

	if len(mm.waiting) == 0 {
		mm.waiting = append(mm.waiting, p)
		mm.mu.Unlock()
		p.send(Event{Type: EventWaiting})
		return nil
	}

	opponent := mm.waiting[0]
	mm.waiting = mm.waiting[1:]

	m := newMatch(uuid.NewString(), mm.cfg)
	m.status = StatusCounting
	m.players[0] = opponent
	m.players[1] = p
	mm.matches[m.ID] = m
	mm.byUser[opponent.ID] = m
	mm.byUser[p.ID] = m
	mm.mu.Unlock()

	logger.Infof("match %s paired %s vs %s", m.ID, opponent.ID, p.ID)
	opponent.send(Event{Type: EventOpponentJoined, Data: OpponentJoinedData{OpponentID: p.ID, OpponentHandle: p.Handle}})
	p.send(Event{Type: EventOpponentJoined, Data: OpponentJoinedData{OpponentID: opponent.ID, OpponentHandle: opponent.Handle}})
	m.startCountdown()
	return nil
}

// CreateCustom opens a single-player lobby behind a fresh invite code.
func (mm *Matchmaker) CreateCustom(p *Player) (string, error) {
	mm.mu.Lock()
	if _, ok := mm.byUser[p.ID]; ok {
		mm.mu.Unlock()
		return "", ErrAlreadyInMatch
	}
	mm.removeFromPoolLocked(p.ID)

	code := mm.newCodeLocked()
	m := newMatch(uuid.NewString(), mm.cfg)
	m.Code = code
	m.players[0] = p
	mm.matches[m.ID] = m
	mm.byCode[code] = m
	mm.byUser[p.ID] = m
	mm.mu.Unlock()

	logger.Infof("match %s created with code %s by %s", m.ID, code, p.ID)
	p.send(Event{Type: EventGameCreated, Data: GameCreatedData{Code: code}})
	return code, nil
}

// JoinCustom fills the second slot of an open lobby. Codes are single-use:
// the index entry goes away the moment the join succeeds.
func (mm *Matchmaker) JoinCustom(p *Player, code string) error {
	mm.mu.Lock()
	m, ok := mm.byCode[code]
	if !ok {
		mm.mu.Unlock()
		return ErrNotFound
	}
	if _, ok := mm.byUser[p.ID]; ok {
		mm.mu.Unlock()
		return ErrAlreadyInMatch
	}

	m.mu.Lock()
	if m.status != StatusLobby || m.torn {
		m.mu.Unlock()
		mm.mu.Unlock()
		return ErrNotFound
	}
	m.players[1] = p
	m.status = StatusCounting
	host := m.players[0]
	m.mu.Unlock()

	mm.removeFromPoolLocked(p.ID)
	delete(mm.byCode, code)
	mm.byUser[p.ID] = m
	mm.mu.Unlock()

	logger.Infof("match %s joined via code %s by %s", m.ID, code, p.ID)
	host.send(Event{Type: EventOpponentJoined, Data: OpponentJoinedData{OpponentID: p.ID, OpponentHandle: p.Handle}})
	p.send(Event{Type: EventOpponentJoined, Data: OpponentJoinedData{OpponentID: host.ID, OpponentHandle: host.Handle}})
	m.startCountdown()
	return nil
}

// SubmitChoice routes a throw to the player's live match. When the throw
// finishes the match, the match leaves the live set and the result is
// committed and archived here, off the match lock.
func (mm *Matchmaker) SubmitChoice(ctx context.Context, userID string, c Choice) error {
	mm.mu.Lock()
	m, ok := mm.byUser[userID]
	mm.mu.Unlock()
	if !ok {
		return ErrInvalidAction
	}

	report, err := m.SubmitChoice(userID, c)
	if err != nil {
		return err
	}
	if report == nil || !report.Finished {
		return nil
	}

	mm.mu.Lock()
	mm.removeLocked(m)
	mm.mu.Unlock()

	mm.committer.Commit(ctx, report.WinnerID, report.LoserID)
	mm.archiveMatch(ctx, m, report.WinnerID, "finished", report.Rounds, report.StartedAt)
	return nil
}

// Leave tears down whatever the user currently occupies: their waiting-pool
// entry, their lobby, or their live match. The remaining occupant, if any,
// gets opponent_left. A concurrent second teardown finds nothing and is a
// no-op.
func (mm *Matchmaker) Leave(userID string) {
	mm.drop(userID)
}

// Disconnect is the implicit leave on transport close.
func (mm *Matchmaker) Disconnect(userID string) {
	mm.drop(userID)
}

func (mm *Matchmaker) drop(userID string) {
	mm.mu.Lock()
	mm.removeFromPoolLocked(userID)
	m, ok := mm.byUser[userID]
	if ok {
		mm.removeLocked(m)
	}
	mm.mu.Unlock()
	if !ok {
		return
	}

	opponent, prior, torn := m.teardown(userID)
	if !torn {
		return
	}
	logger.Infof("match %s torn down, %s left during %s", m.ID, userID, prior)
	if opponent != nil {
		opponent.send(Event{Type: EventOpponentLeft})
	}
	if prior == StatusPlaying {
		mm.archiveAbandoned(m)
	}
}

// Sweep drops matches where no occupant has a live connection. Normal
// teardown happens on disconnect; this is the janitor's safety net.
func (mm *Matchmaker) Sweep(isConnected func(userID string) bool) int {
	mm.mu.Lock()
	var dead []*Match
	for _, m := range mm.matches {
		alive := false
		for _, p := range m.players {
			if p != nil && isConnected(p.ID) {
				alive = true
				break
			}
		}
		if !alive {
			dead = append(dead, m)
		}
	}
	for _, m := range dead {
		mm.removeLocked(m)
	}
	mm.mu.Unlock()

	for _, m := range dead {
		if _, prior, torn := m.teardown(""); torn && prior == StatusPlaying {
			mm.archiveAbandoned(m)
		}
	}
	return len(dead)
}

// Stats reports gauges for the janitor log line.
func (mm *Matchmaker) Stats() (live, waiting, lobbies int) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return len(mm.matches), len(mm.waiting), len(mm.byCode)
}

func (mm *Matchmaker) removeLocked(m *Match) {
	delete(mm.matches, m.ID)
	if m.Code != "" {
		delete(mm.byCode, m.Code)
	}
	for _, p := range m.players {
		if p != nil && mm.byUser[p.ID] == m {
			delete(mm.byUser, p.ID)
		}
	}
}

func (mm *Matchmaker) removeFromPoolLocked(userID string) {
	for i, w := range mm.waiting {
		if w.ID == userID {
			mm.waiting = append(mm.waiting[:i], mm.waiting[i+1:]...)
			return
		}
	}
}

// newCodeLocked rejection-samples until the code is unused among open lobbies.
func (mm *Matchmaker) newCodeLocked() string {
	buf := make([]byte, codeLength)
	for {
		for i := range buf {
			buf[i] = codeAlphabet[mm.rng.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := mm.byCode[code]; !taken {
			return code
		}
	}
}

func (mm *Matchmaker) archiveAbandoned(m *Match) {
	m.mu.Lock()
	rounds := append([]Round(nil), m.rounds...)
	startedAt := m.startedAt
	m.mu.Unlock()
	mm.archiveMatch(context.Background(), m, "", "abandoned", rounds, startedAt)
}

func (mm *Matchmaker) archiveMatch(ctx context.Context, m *Match, winnerID, status string, rounds []Round, startedAt time.Time) {
	if mm.archive == nil {
		return
	}
	rec := ArchivedMatch{
		ID:        m.ID,
		WinnerID:  winnerID,
		Status:    status,
		Rounds:    rounds,
		StartedAt: startedAt,
		EndedAt:   time.Now(),
	}
	if m.players[0] != nil {
		rec.FirstPlayerID = m.players[0].ID
	}
	if m.players[1] != nil {
		rec.SecondPlayerID = m.players[1].ID
	}
	if err := mm.archive.ArchiveMatch(ctx, rec); err != nil {
		logger.Errorf("failed to archive match %s: %v", m.ID, err)
	}
}
