// Command analyticsctl drives the analytics backend from a terminal: reports,
// predictions, insights, metrics, schedules, dashboards and data quality.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/evmarket/analytics-console/internal/analytics"
	"github.com/evmarket/analytics-console/internal/auth"
	"github.com/evmarket/analytics-console/internal/config"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/transport"
	"github.com/evmarket/analytics-console/internal/view"
)

const usage = `usage: analyticsctl [flags] <group> <command> [args]

groups:
  reports      list | show <id> | create | delete <id> | export <id> | compare <id> <id>...
  predictions  list | show <id> | create
  insights     active | page | trending | summary | deactivate <id> | activate <id> | generate <reportId>
  metrics      record | entity <type> <id> | period <type> <id> | average <type> <name> | summary <type> <id> | type <metricType>
  schedules    list | create | toggle <id> | delete <id>
  dashboards   mine | public | show <id> | delete <id>
  quality      latest <datasetId> | low | assess <datasetId>
  admin        stats
  whoami
`

// app is the state shared by every subcommand.
type app struct {
	cfg     *config.Config
	tokens  *auth.TokenSource
	factory *hooks.Factory

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	yes    bool
	asJSON bool
}

// confirmer asks on the terminal unless --yes was given.
func (a *app) confirmer() view.Confirmer {
	if a.yes {
		return view.Confirmed(true)
	}
	return view.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(a.errOut, "%s [y/N] ", prompt)
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, promptToken))
}

func promptToken(w io.Writer) (string, error) {
	fmt.Fprint(w, "API token: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, readToken func(io.Writer) (string, error)) int {
	fs := flag.NewFlagSet("analyticsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fmt.Fprintln(stderr, "\nflags:")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "path to configuration file")
	baseURL := fs.String("base-url", os.Getenv("ANALYTICS_API_URL"), "analytics backend URL")
	token := fs.String("token", os.Getenv("ANALYTICS_TOKEN"), "API bearer token")
	tokenPrompt := fs.Bool("token-prompt", false, "read the API token from the terminal")
	timeout := fs.Duration("timeout", 0, "request timeout")
	yes := fs.Bool("yes", false, "skip confirmation prompts")
	asJSON := fs.Bool("json", false, "print JSON instead of tables")
	debug := fs.Bool("debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configPath, *baseURL)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if *token != "" {
		cfg.API.Token = *token
	}
	if *tokenPrompt {
		t, err := readToken(stderr)
		if err != nil {
			fmt.Fprintf(stderr, "error: reading token: %v\n", err)
			return 1
		}
		cfg.API.Token = t
	}
	if *timeout > 0 {
		cfg.API.Timeout = *timeout
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	a := newApp(cfg, stdin, stdout, stderr)
	a.yes = *yes
	a.asJSON = *asJSON

	cmd, cmdArgs, err := lookup(rest)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n%s", err, usage)
		return 2
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.API.Timeout+30*time.Second)
	defer cancel()

	if err := cmd(ctx, a, cmdArgs); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func loadConfig(path, baseURL string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		if baseURL != "" {
			cfg.API.BaseURL = baseURL
		}
		return cfg, nil
	}
	if baseURL == "" {
		return nil, errors.New("no backend configured: pass --config or --base-url (or set ANALYTICS_API_URL)")
	}
	return config.Default(baseURL), nil
}

func newApp(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) *app {
	tokens := auth.NewTokenSource(cfg.API.Token)
	client := transport.New(transport.Options{
		BaseURL:   cfg.API.BaseURL,
		BasePath:  cfg.API.BasePath,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
		Tokens:    tokens,
	}, nil)
	svc := analytics.New(client, router.Default(cfg.API.DisabledEndpoints))

	return &app{
		cfg:    cfg,
		tokens: tokens,
		factory: hooks.New(svc, hooks.Defaults{
			PageSize:            cfg.Defaults.PageSize,
			PeriodPageSize:      cfg.Defaults.PeriodPageSize,
			TrendingDays:        cfg.Defaults.TrendingDays,
			LowQualityThreshold: cfg.Defaults.LowQualityThreshold,
		}, nil),
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
	}
}
