package config

import (
	"os"
	"strings"
)

// FIFOHardBlock upgrades FIFO consumption order from an advisory warning to a
// hard block on lot reservations. Default off (advisory).
//
// Set via env:
// - FIFO_HARD_BLOCK=true
func FIFOHardBlock() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("FIFO_HARD_BLOCK")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SupersedeReconcileSchedule returns the cron spec for the revision-supersede
// reconciliation job.
//
// Set via env:
// - SUPERSEDE_RECONCILE_CRON="@every 5m"
func SupersedeReconcileSchedule() string {
	v := strings.TrimSpace(os.Getenv("SUPERSEDE_RECONCILE_CRON"))
	if v == "" {
		return "@every 5m"
	}
	return v
}
