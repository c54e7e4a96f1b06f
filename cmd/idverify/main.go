// Command idverify is the terminal companion to the identity-verification
// platform: realm logins, verification listings, certificate lookups and the
// local dashboard proxy.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tanveerafzal/id-verify-sub000/internal/dashboard"
	"github.com/tanveerafzal/id-verify-sub000/pkg/api"
	"github.com/tanveerafzal/id-verify-sub000/pkg/config"
	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
	"github.com/tanveerafzal/id-verify-sub000/pkg/metrics"
	"github.com/tanveerafzal/id-verify-sub000/pkg/session"
	"github.com/tanveerafzal/id-verify-sub000/pkg/urlresolve"
)

var buildVersion = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = commandLogin(args)
	case "logout":
		err = commandLogout(args)
	case "whoami":
		err = commandWhoami(args)
	case "verifications":
		err = commandVerifications(args)
	case "certificate":
		err = commandCertificate(args)
	case "proxy":
		err = commandProxy(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// toolkit bundles the pieces every command needs.
type toolkit struct {
	cfg      config.ClientConfig
	client   *api.Client
	sessions *session.Store
}

func newToolkit() (*toolkit, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyLogLevel(cfg)
	sessions, err := session.Open(cfg.SessionFile, cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	// The CLI always computes absolute backend URLs; the development proxy
	// exists for browser-style consumers that send relative paths.
	resolver := urlresolve.Resolver{Mode: urlresolve.ModeProduction, BaseURL: cfg.APIBaseURL}
	client := api.New(resolver,
		api.WithTokenSource(sessions),
		api.WithMetrics(metrics.NewAPIMetrics()),
		api.WithTimeout(cfg.RequestTimeout),
	)
	return &toolkit{cfg: cfg, client: client, sessions: sessions}, nil
}

// applyLogLevel narrows the default logger to the configured level. The
// logger's init only sees LOG_LEVEL and APP_ENV; a level set in the config
// file arrives here.
func applyLogLevel(cfg config.ClientConfig) {
	if lvl, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetDefault(logger.NewCore(os.Stderr, lvl))
	}
}

func commandProxy(args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}
	srv, err := dashboard.New(tk.cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Printf("dashboard proxy listening on %s (backend %s)\n", tk.cfg.ProxyAddr, tk.cfg.APIBaseURL)
	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("idverify %s\n", buildVersion)
}

func printUsage() {
	fmt.Println(`Usage: idverify <command> [flags]

Commands:
  login          Sign in to a realm (--realm partner|admin|user)
  logout         Drop a stored session (--realm, or --all)
  whoami         Show the cached profile for a realm
  verifications  List or inspect verification runs
  certificate    Fetch a verification certificate by id
  proxy          Run the local dashboard/dev proxy
  version        Print the build version`)
}
