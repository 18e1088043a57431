// supersede-reconcile runs one pass of the quotation revision reconciliation
// as a standalone job, for deployments that prefer a scheduled job over the
// in-process cron.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/supersede-reconcile
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/workflow"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	// Redis is optional here; without it the pass simply runs unlocked.
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	}

	workflow.NewSupersedeReconciler(db, config.GetLogger()).Run(ctx)
	fmt.Println("supersede reconciliation pass complete")
}
