package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"jobfeed-engine/internal/cache"
	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/enrich"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/httpapi"
	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/notify"
	"jobfeed-engine/internal/pipeline"
	"jobfeed-engine/internal/runlock"
	"jobfeed-engine/internal/schedule"
	"jobfeed-engine/internal/scrape"
	"jobfeed-engine/internal/scrape/email"
	"jobfeed-engine/internal/scrape/greenhouse"
	"jobfeed-engine/internal/scrape/lever"
	"jobfeed-engine/internal/scrape/util"
	"jobfeed-engine/internal/secrets"
	"jobfeed-engine/internal/store"
)

func main() {
	_ = godotenv.Load()

	env := config.FromEnv()
	if err := os.MkdirAll(env.DataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	lock, err := runlock.Acquire(env.DataDir)
	if err != nil {
		log.Fatal(err)
	}
	defer lock.Release()

	userCfgPath, created, err := config.EnsureUserConfig(env.DataDir)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	if created {
		// First run: hand the template to the user and leave the
		// network alone.
		fmt.Printf("Created %s. Fill it in and run again.\n", userCfgPath)
		return
	}

	logFile, err := os.OpenFile(filepath.Join(env.DataDir, "engine.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	lg := logger.New(os.Stdout, logFile)

	die := func(format string, args ...any) {
		lg.Errorf(format, args...)
		lock.Release()
		os.Exit(1)
	}

	cfg, err := config.Load(userCfgPath)
	if err != nil {
		die("config load failed (%s): %v", userCfgPath, err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	if err := vr.Err(); err != nil {
		die("%v", err)
	}
	for _, w := range vr.Warnings {
		lg.Warnf("%s", w)
	}

	sourcesPath := filepath.Join(env.DataDir, "sources.yml")
	if err := config.OverlaySources(&cfg, sourcesPath); err != nil {
		die("sources overlay failed (%s): %v", sourcesPath, err)
	}

	ledger, err := store.OpenLedger(filepath.Join(env.DataDir, "jobs.db"))
	if err != nil {
		die("open ledger: %v", err)
	}
	defer ledger.Close()

	// The ledger stays open either way: enrichment caches company
	// profiles there even when postings land in the spreadsheet.
	var sink pipeline.Sink = ledger
	if env.Sink == "sheet" {
		sink = store.NewWorkbook(filepath.Join(env.DataDir, "jobs.csv"))
	}

	crit := scrape.CriteriaFromConfig(cfg)
	client := util.NewClient(util.NewHostLimiter(2, 4))

	var fetchers []scrape.Fetcher
	if boards := cfg.Sources.Greenhouse.Boards; len(boards) > 0 {
		fetchers = append(fetchers, greenhouse.New(boards, client, crit, lg))
	}
	if boards := cfg.Sources.Lever.Boards; len(boards) > 0 {
		fetchers = append(fetchers, lever.New(boards, client, crit, lg))
	}
	if cfg.Sources.Email.Enabled {
		fetchers = append(fetchers, &email.Source{
			Cfg:      cfg.Sources.Email,
			Password: secrets.IMAPPassword(cfg.Sources.Email),
			Criteria: crit,
			Log:      lg,
		})
	}
	if len(fetchers) == 0 {
		lg.Warnf("No sources configured in %s; passes will find nothing.", sourcesPath)
	}

	agg := &scrape.Aggregator{Fetchers: fetchers, Log: lg}
	if env.RedisURL != "" {
		rc, err := cache.NewFromURL(env.RedisURL, cache.DefaultTTL, lg)
		if err != nil {
			lg.Warnf("[cache] disabled: %v", err)
		} else {
			defer rc.Close()
			agg.Cache = rc
		}
	}

	minSalary, maxSalary := cfg.SalaryBounds()
	enr := &enrich.Enricher{
		Cache:     ledger,
		Log:       lg,
		Workers:   env.EnrichWorkers,
		MinSalary: minSalary,
		MaxSalary: maxSalary,
		Currency:  cfg.Currency,
	}
	if env.CompanyAPI != "" {
		src := enrich.NewHTTPCompanySource(env.CompanyAPI)
		src.APIKey = secrets.EnrichmentKey()
		enr.Companies = src
	}
	if env.SalaryAPI != "" {
		src := enrich.NewHTTPSalarySource(env.SalaryAPI)
		src.APIKey = secrets.EnrichmentKey()
		enr.Salaries = src
	}

	hub := events.NewHub()
	runner := pipeline.NewRunner(agg, enr, sink, lg, hub)
	fan := buildFanout(cfg, env, lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pass := func() {
		sum, err := runner.Run(ctx)
		if err != nil {
			return // the runner logged it
		}
		fan.Announce(ctx, sum)
	}

	if env.HTTPAddr != "" {
		var cfgVal atomic.Value
		cfgVal.Store(cfg)
		srv := &http.Server{
			Addr: env.HTTPAddr,
			Handler: httpapi.Chain(
				httpapi.NewMux(httpapi.Deps{
					Ledger:      ledger,
					Runner:      runner,
					Hub:         hub,
					CfgVal:      &cfgVal,
					UserCfgPath: userCfgPath,
					LoadCfg: func() (config.Config, error) {
						c, err := config.Load(userCfgPath)
						if err != nil {
							return config.Config{}, err
						}
						if err := config.OverlaySources(&c, sourcesPath); err != nil {
							return config.Config{}, err
						}
						return c, nil
					},
					AfterRun: func(sum pipeline.Summary) {
						fan.Announce(context.Background(), sum)
					},
				}),
				httpapi.Cors, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog,
			),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			lg.Infof("[http] control api listening on %s", env.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.Errorf("[http] server: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	switch {
	case cfg.Schedule != nil:
		at, err := schedule.Parse(*cfg.Schedule)
		if err != nil {
			die("%v", err) // unreachable after validation, but belt and braces
		}
		sched := schedule.New(at, lg, pass)
		if err := sched.Start(); err != nil {
			die("scheduler: %v", err)
		}
		<-ctx.Done()
		sched.Stop()

	case env.HTTPAddr != "":
		// Serve mode: passes arrive via POST /run until shutdown.
		<-ctx.Done()

	default:
		sum, err := runner.Run(ctx)
		if err != nil {
			lock.Release()
			os.Exit(1)
		}
		fan.Announce(ctx, sum)
	}
}

// buildFanout assembles the notification targets the config and
// environment actually enable.
func buildFanout(cfg config.Config, env config.Environment, lg logger.Logger) *notify.Fanout {
	fan := &notify.Fanout{Log: lg}

	if w := cfg.Notification.SlackWebhook; w != nil && *w != "" {
		fan.Targets = append(fan.Targets, notify.NewSlack(*w))
	}
	if e := cfg.Notification.Email; e != nil && *e != "" {
		if env.SMTPHost == "" {
			lg.Warnf("notification.email is set but SMTP_HOST is not; email notifications are off.")
		} else {
			fan.Targets = append(fan.Targets, &notify.Email{
				Host: env.SMTPHost,
				Port: env.SMTPPort,
				From: env.SMTPFrom,
				To:   *e,
				User: env.SMTPUser,
				Pass: env.SMTPPass,
			})
		}
	}
	if token := secrets.TelegramToken(); token != "" && env.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(token, env.TelegramChatID)
		if err != nil {
			lg.Warnf("Telegram notifications disabled: %v", err)
		} else {
			fan.Targets = append(fan.Targets, tg)
		}
	}
	return fan
}
