package domain

import "time"

// ScrapeStats holds per-run statistics about the scatter/gather fetch stage.
type ScrapeStats struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int
	Extracted int
	Duration  time.Duration
}
