package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rpsarena/rps-backend/game"
	"github.com/rpsarena/rps-backend/utils/logger"
)

// StartJanitor schedules a minutely sweep of matches that lost every live
// connection, plus a gauge line for the logs.
func StartJanitor(mm *game.Matchmaker, hub *Hub) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if swept := mm.Sweep(hub.IsConnected); swept > 0 {
				logger.Warnf("[Janitor] swept %d matches with no live connections", swept)
			}
			live, waiting, lobbies := mm.Stats()
			logger.Debugf("[Janitor] matches=%d waiting=%d lobbies=%d connections=%d",
				live, waiting, lobbies, hub.Count())
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
