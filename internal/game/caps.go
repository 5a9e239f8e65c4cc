package game

import "log"

// Soft caps on collection sizes. These are technical safeguards, not
// constraints on normal play: exceeding a cap is logged, never blocked.
const (
	// MaxPeriodsPerGame is the soft cap on periods per game.
	MaxPeriodsPerGame = 1024
	// MaxEventsPerPeriod is the soft cap on events per period.
	MaxEventsPerPeriod = 256
	// MaxScenesPerEvent is the soft cap on scenes per event.
	MaxScenesPerEvent = 128
	// MaxLegaciesPerGame is the soft cap on legacies per game.
	MaxLegaciesPerGame = 256
)

// WouldExceedPeriodCap reports whether adding a period would pass the cap.
func WouldExceedPeriodCap(currentCount int) bool {
	exceeded := currentCount >= MaxPeriodsPerGame
	if exceeded {
		log.Printf("soft cap warning: attempting to exceed maximum periods (%d)", MaxPeriodsPerGame)
	}
	return exceeded
}

// WouldExceedEventCap reports whether adding an event would pass the cap.
func WouldExceedEventCap(currentCount int) bool {
	exceeded := currentCount >= MaxEventsPerPeriod
	if exceeded {
		log.Printf("soft cap warning: attempting to exceed maximum events (%d)", MaxEventsPerPeriod)
	}
	return exceeded
}

// WouldExceedSceneCap reports whether adding a scene would pass the cap.
func WouldExceedSceneCap(currentCount int) bool {
	exceeded := currentCount >= MaxScenesPerEvent
	if exceeded {
		log.Printf("soft cap warning: attempting to exceed maximum scenes (%d)", MaxScenesPerEvent)
	}
	return exceeded
}

// WouldExceedLegacyCap reports whether adding a legacy would pass the cap.
func WouldExceedLegacyCap(currentCount int) bool {
	exceeded := currentCount >= MaxLegaciesPerGame
	if exceeded {
		log.Printf("soft cap warning: attempting to exceed maximum legacies (%d)", MaxLegaciesPerGame)
	}
	return exceeded
}
