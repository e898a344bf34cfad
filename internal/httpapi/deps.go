package httpapi

import (
	"sync/atomic"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/pipeline"
	"jobfeed-engine/internal/store"
)

type Deps struct {
	Ledger *store.Ledger
	Runner *pipeline.Runner
	Hub    *events.Hub

	// Atomic store; holds config.Config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Called with the summary after an on-demand pass finishes cleanly
	// (notifications live outside the API).
	AfterRun func(pipeline.Summary)
}
