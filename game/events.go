package game

// Outbound event names.
const (
	EventWaiting        = "waiting_for_opponent"
	EventGameCreated    = "game_created"
	EventOpponentJoined = "opponent_joined"
	EventCountdown      = "countdown"
	EventRoundResult    = "round_result"
	EventGameFinished   = "game_finished"
	EventOpponentLeft   = "opponent_left"
	EventError          = "error"
)

// Event is the envelope written to a client connection.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type GameCreatedData struct {
	Code string `json:"code"`
}

type OpponentJoinedData struct {
	OpponentID     string `json:"opponentId"`
	OpponentHandle string `json:"opponentHandle,omitempty"`
}

type CountdownData struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type RoundResultData struct {
	YourChoice     Choice  `json:"yourChoice"`
	OpponentChoice Choice  `json:"opponentChoice"`
	Outcome        Outcome `json:"outcome"`
	Round          int     `json:"round"`
}

type GameFinishedData struct {
	WinnerID string `json:"winnerId"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// Conn delivers outbound events to one connected client. Implementations must
// not block; a send to a dead connection may fail or be dropped, the transport's
// disconnect path handles the teardown.
type Conn interface {
	Send(ev Event) error
}
