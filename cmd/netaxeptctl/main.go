package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anyulbade/netaxept-gateway/internal/config"
	"github.com/anyulbade/netaxept-gateway/internal/netaxept"
	"github.com/anyulbade/netaxept-gateway/internal/service"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	output  string
	timeout time.Duration
	verbose bool

	svc *service.PaymentService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "netaxeptctl",
		Short: "Register and process Netaxept transactions from the command line",
		Long: `netaxeptctl talks to the Netaxept REST API with the same configuration as
the server (NETAXEPT_MERCHANT_ID, NETAXEPT_TOKEN, NETAXEPT_ENVIRONMENT,
NETAXEPT_BASE_URL, NETAXEPT_CURRENCY). Amounts are given in major units.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVarP(&a.output, "output", "o", "yaml", "Output format (yaml, json)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Gateway timeout (defaults to NETAXEPT_TIMEOUT)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log gateway calls to stderr")

	root.AddCommand(a.registerCmd())
	for _, op := range []netaxept.Operation{netaxept.OpAuth, netaxept.OpSale, netaxept.OpCapture, netaxept.OpCredit} {
		root.AddCommand(a.processCmd(op))
	}
	root.AddCommand(a.annulCmd())
	root.AddCommand(a.queryCmd())
	root.AddCommand(a.statusCmd())
	root.AddCommand(a.terminalCmd())

	return root
}

func (a *app) init() error {
	if a.output != "yaml" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
	log.Logger = logger

	cfg := config.Load()
	creds, err := cfg.NetaxeptCredentials()
	if err != nil {
		return err
	}

	timeout := a.timeout
	if timeout <= 0 {
		timeout = cfg.GatewayTimeout
	}

	client := netaxept.NewClient(creds,
		netaxept.WithHTTPClient(&http.Client{Timeout: timeout}),
		netaxept.WithLogger(logger),
	)
	a.svc = service.NewPaymentService(client, nil, cfg.DefaultCurrency, cfg.StatusConcurrency)
	return nil
}

func (a *app) print(w io.Writer, v any) error {
	if a.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
