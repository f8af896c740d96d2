package game

import (
	"sync"
	"time"

	"github.com/rpsarena/rps-backend/utils/logger"
)

type Status string

const (
	StatusLobby    Status = "lobby"
	StatusCounting Status = "counting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// RoundsToWin is the best-of-3 threshold.
const RoundsToWin = 2

// Round is one completed choice exchange. The outcome is stored once, from
// the first slot's perspective; the second slot's view is the inversion.
type Round struct {
	FirstChoice  Choice  `json:"firstChoice"`
	SecondChoice Choice  `json:"secondChoice"`
	Outcome      Outcome `json:"outcome"`
}

// Match is the state machine for one two-player contest.
// All state behind mu; the matchmaker never reaches in while holding its own
// lock except for the player slots, which are only ever written under the
// matchmaker lock.
type Match struct {
	ID   string
	Code string // invite code, custom lobbies only

	cfg Config

	mu            sync.Mutex
	status        Status
	players       [2]*Player
	rounds        []Round
	current       int // completed rounds
	startedAt     time.Time
	torn          bool
	countdownStop chan struct{}
}

func newMatch(id string, cfg Config) *Match {
	return &Match{
		ID:        id,
		cfg:       cfg,
		status:    StatusLobby,
		startedAt: time.Now(),
	}
}

func (m *Match) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// startCountdown arms the tick loop. Ticks broadcast secondsRemaining from
// CountdownTicks down to 1; after the last tick the match enters Playing and
// any pending choices are cleared. Teardown closes countdownStop, which kills
// the loop before its next tick.
func (m *Match) startCountdown() {
	m.mu.Lock()
	if m.status != StatusCounting || m.torn {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.countdownStop = stop
	remaining := m.cfg.CountdownTicks
	first, second := m.players[0], m.players[1]
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.cfg.TickInterval)
		defer ticker.Stop()

		for remaining > 0 {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				ev := Event{Type: EventCountdown, Data: CountdownData{SecondsRemaining: remaining}}
				first.send(ev)
				second.send(ev)
				remaining--
			}
		}

		m.mu.Lock()
		if m.status == StatusCounting && !m.torn {
			m.status = StatusPlaying
			m.players[0].choice = ChoiceNone
			m.players[1].choice = ChoiceNone
			logger.Debugf("match %s entered playing", m.ID)
		}
		m.mu.Unlock()
	}()
}

// RoundReport is returned to the matchmaker when a submission completed a
// round, so that commit/archive happen outside the match lock.
type RoundReport struct {
	Finished  bool
	WinnerID  string
	LoserID   string
	Rounds    []Round
	StartedAt time.Time
}

// SubmitChoice records one player's throw. A second throw from the same
// player before the round resolves overwrites the pending one. When both
// slots are filled the round resolves exactly once: outcome computed from the
// first slot, mirrored for the second, round appended, choices reset.
func (m *Match) SubmitChoice(userID string, c Choice) (*RoundReport, error) {
	if !c.Valid() {
		return nil, ErrInvalidAction
	}

	m.mu.Lock()
	if m.torn || m.status != StatusPlaying {
		m.mu.Unlock()
		return nil, ErrInvalidAction
	}

	slot := m.slotLocked(userID)
	if slot < 0 {
		m.mu.Unlock()
		return nil, ErrInvalidAction
	}
	m.players[slot].choice = c

	first, second := m.players[0], m.players[1]
	if first.choice == ChoiceNone || second.choice == ChoiceNone {
		m.mu.Unlock()
		return nil, nil
	}

	outcome := Resolve(first.choice, second.choice)
	round := Round{FirstChoice: first.choice, SecondChoice: second.choice, Outcome: outcome}
	m.rounds = append(m.rounds, round)
	first.choice = ChoiceNone
	second.choice = ChoiceNone
	m.current++

	firstView := RoundResultData{
		YourChoice:     round.FirstChoice,
		OpponentChoice: round.SecondChoice,
		Outcome:        outcome,
		Round:          m.current,
	}
	secondView := RoundResultData{
		YourChoice:     round.SecondChoice,
		OpponentChoice: round.FirstChoice,
		Outcome:        outcome.Invert(),
		Round:          m.current,
	}

	report := &RoundReport{}
	completed := m.current
	firstWins, secondWins := m.winsLocked()
	if firstWins >= RoundsToWin || secondWins >= RoundsToWin {
		m.status = StatusFinished
		report.Finished = true
		if firstWins >= RoundsToWin {
			report.WinnerID, report.LoserID = first.ID, second.ID
		} else {
			report.WinnerID, report.LoserID = second.ID, first.ID
		}
		report.Rounds = append([]Round(nil), m.rounds...)
		report.StartedAt = m.startedAt
	}
	m.mu.Unlock()

	first.send(Event{Type: EventRoundResult, Data: firstView})
	second.send(Event{Type: EventRoundResult, Data: secondView})

	if report.Finished {
		done := Event{Type: EventGameFinished, Data: GameFinishedData{WinnerID: report.WinnerID}}
		first.send(done)
		second.send(done)
		logger.Infof("match %s finished, winner=%s after %d rounds", m.ID, report.WinnerID, completed)
	}
	return report, nil
}

// teardown cancels the countdown and marks the match dead. It returns the
// remaining occupant to notify, the status at teardown time, and whether this
// call actually tore anything down (a second attempt is a no-op).
func (m *Match) teardown(leaverID string) (*Player, Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.torn || m.status == StatusFinished {
		return nil, m.status, false
	}
	m.torn = true
	if m.countdownStop != nil {
		close(m.countdownStop)
		m.countdownStop = nil
	}

	var opponent *Player
	for _, p := range m.players {
		if p != nil && p.ID != leaverID {
			opponent = p
		}
	}
	return opponent, m.status, true
}

func (m *Match) slotLocked(userID string) int {
	for i, p := range m.players {
		if p != nil && p.ID == userID {
			return i
		}
	}
	return -1
}

func (m *Match) winsLocked() (first, second int) {
	for _, r := range m.rounds {
		switch r.Outcome {
		case OutcomeWin:
			first++
		case OutcomeLoss:
			second++
		}
	}
	return first, second
}
