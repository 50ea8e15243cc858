// Web server for go-advice
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/logger"
	"github.com/go-while/go-advice/internal/scheduler"
	"github.com/go-while/go-advice/internal/web"
	prof "github.com/go-while/go-cpu-mem-profiler"
	"golang.org/x/sync/errgroup"
)

var (
	// command-line flags
	configPath  string
	dataDir     string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	pprofAddr   string

	// one shot maintenance flags
	cleanupSessions bool
	pruneKeywords   time.Duration
	topKeywords     int
)

var appVersion = "-unset-"

const shutdownTimeout = 15 * time.Second

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configPath, "config", config.GetConfigPath(), "path to the YAML config file (env ADVICE_CONFIG)")
	flag.StringVar(&dataDir, "data", "", "Directory for the database (overrides config)")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 11980)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&pprofAddr, "pprof", "", "serve pprof on this address, e.g. 127.0.0.1:51111 (default: off)")
	flag.BoolVar(&cleanupSessions, "cleanup-sessions", false, "remove expired sessions and exit")
	flag.DurationVar(&pruneKeywords, "prune-keywords", 0, "delete unused keywords older than this (e.g. 720h) and exit")
	flag.IntVar(&topKeywords, "top-keywords", 0, "print the N most popular search keywords and exit")
	flag.Parse()

	mainConfig, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[WEB]: %v", err)
	}
	applyFlags(mainConfig)
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: invalid configuration after flags: %v", err)
	}

	logOut := logger.New(mainConfig.Log)
	logOut.Install()
	defer logOut.Close()
	gin.DefaultWriter = logOut.Writer
	gin.DefaultErrorWriter = logOut.Writer

	log.Printf("Starting go-advice web server (version: %s)", config.AppVersion)

	if pprofAddr != "" {
		Prof := prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof listening on %s", pprofAddr)
	}

	db, err := database.OpenDatabase(dbConfigFromApp(mainConfig))
	if err != nil {
		log.Fatalf("[WEB]: Failed to initialize database: %v", err)
	}

	if done, err := runMaintenance(db); done {
		if cerr := db.Shutdown(); cerr != nil {
			log.Printf("[WEB]: database shutdown: %v", cerr)
		}
		if err != nil {
			log.Fatalf("[WEB]: %v", err)
		}
		return
	}

	if err := run(mainConfig, db); err != nil {
		log.Printf("[WEB]: %v", err)
		db.Shutdown()
		os.Exit(1)
	}
	if err := db.Shutdown(); err != nil {
		log.Printf("[WEB]: database shutdown: %v", err)
	}
	log.Printf("[WEB]: Shutdown complete")
}

// applyFlags overrides config values with command-line flags
func applyFlags(cfg *config.AppConfig) {
	if dataDir != "" {
		cfg.Database.DataDir = dataDir
	}
	if webport > 0 {
		cfg.Web.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webport)
	}
	if webssl {
		cfg.Web.SSL = true
	}
	if webcertFile != "" {
		cfg.Web.CertFile = webcertFile
	}
	if webkeyFile != "" {
		cfg.Web.KeyFile = webkeyFile
	}
}

// run serves HTTP and runs the scheduler until SIGINT/SIGTERM or a server error
func run(cfg *config.AppConfig, db *database.Database) error {
	server, err := web.NewServer(db, cfg)
	if err != nil {
		return err
	}
	defer server.Close()

	sched, err := scheduler.New(cfg.Scheduler.Timezone)
	if err != nil {
		return err
	}
	if err := server.RegisterJobs(sched, cfg.Scheduler); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := server.NewHTTPServer()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		protocol := "http"
		if cfg.Web.SSL {
			protocol = "https"
		}
		log.Printf("[WEB]: Listening on %s://localhost%s", protocol, httpServer.Addr)

		var err error
		if cfg.Web.SSL {
			err = httpServer.ListenAndServeTLS(cfg.Web.CertFile, cfg.Web.KeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
