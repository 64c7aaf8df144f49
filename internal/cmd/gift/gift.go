// Package gift parses gift command flags and runs the gratitude pipeline.
package gift

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gratefulday/gratefulday.space/internal/nostr"
	"github.com/gratefulday/gratefulday.space/internal/nostr/relay"
	entrypoint "github.com/gratefulday/gratefulday.space/internal/platform/cmd"
	"github.com/gratefulday/gratefulday.space/internal/services/gift/domain"
	"github.com/gratefulday/gratefulday.space/internal/services/gift/lnurl"
	"github.com/gratefulday/gratefulday.space/internal/services/gift/payment"
	boltstore "github.com/gratefulday/gratefulday.space/internal/services/gift/storage/bbolt"
	sqlitestore "github.com/gratefulday/gratefulday.space/internal/services/gift/storage/sqlite"
	"github.com/gratefulday/gratefulday.space/internal/telemetry"
)

// Config holds gift command configuration.
type Config struct {
	Relays          []string `env:"GRATEFULDAY_GIFT_RELAYS" envDefault:"wss://relay.damus.io,wss://nos.lol"`
	SecretKey       string   `env:"GRATEFULDAY_GIFT_SECRET_KEY"`
	DBPath          string   `env:"GRATEFULDAY_GIFT_DB_PATH" envDefault:"gratefulday.db"`
	TelemetryDBPath string   `env:"GRATEFULDAY_GIFT_TELEMETRY_DB_PATH" envDefault:"gratefulday-telemetry.db"`
	NWCURL          string   `env:"GRATEFULDAY_GIFT_NWC_URL"`
	WalletApp       string   `env:"GRATEFULDAY_GIFT_WALLET_APP" envDefault:"none"`

	Amount      int64
	Message     string
	Exclude     string
	Verify      string
	Endpoint    string
	RequestPath string
	Force       bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.Int64Var(&cfg.Amount, "amount", 21, "gift amount in sats")
	fs.StringVar(&cfg.Message, "message", "", "gratitude message (default message when empty)")
	fs.StringVar(&cfg.Exclude, "exclude", "", "pubkey to exclude instead of the recent-recipient history")
	fs.StringVar(&cfg.Verify, "verify", "", "invoice to verify and publish instead of sending a gift")
	fs.StringVar(&cfg.Endpoint, "endpoint", "", "zap endpoint for -verify")
	fs.StringVar(&cfg.RequestPath, "request", "", "path to the signed zap request JSON for -verify")
	fs.BoolVar(&cfg.Force, "force", false, "publish the receipt even when the status check fails")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the gift command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGift, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

// relayClient narrows the pool to the single-filter queries the domain uses.
type relayClient struct {
	pool *relay.Pool
}

func (c relayClient) Query(ctx context.Context, filter nostr.Filter) ([]nostr.Event, error) {
	return c.pool.Query(ctx, []nostr.Filter{filter})
}

func (c relayClient) Publish(ctx context.Context, event nostr.Event) error {
	return c.pool.Publish(ctx, event)
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	signer, err := nostr.NewKeySigner(cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("load secret key: %w", err)
	}

	pool, err := relay.NewPool(cfg.Relays)
	if err != nil {
		return fmt.Errorf("configure relays: %w", err)
	}
	client := relayClient{pool: pool}

	historyStore, err := boltstore.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer historyStore.Close()

	emitter := telemetry.NewEmitter(nil)
	if cfg.TelemetryDBPath != "" {
		telemetryStore, err := sqlitestore.Open(cfg.TelemetryDBPath)
		if err != nil {
			return fmt.Errorf("open telemetry store: %w", err)
		}
		defer telemetryStore.Close()
		emitter = telemetry.NewEmitter(telemetryStore)
	}

	history := domain.NewHistory(historyStore)
	publisher := domain.NewPublisher(client)

	nwcChannel, err := payment.NewNWCChannel(pool, cfg.NWCURL)
	if err != nil {
		return fmt.Errorf("configure wallet connection: %w", err)
	}
	dispatcher := payment.NewDispatcher(
		nwcChannel,
		payment.NewLauncherChannel(payment.WalletApp(cfg.WalletApp)),
	)

	service := domain.NewService(domain.ServiceConfig{
		Signer:     signer,
		Selector:   domain.NewSelector(client, history, emitter, signer.PublicKey()),
		History:    history,
		Invoices:   lnurl.NewClient(nil),
		Dispatcher: dispatcher,
		Publisher:  publisher,
		Emitter:    emitter,
		Relays:     pool.Relays(),
	})

	if cfg.Verify != "" {
		return runVerify(ctx, cfg, service, out)
	}
	return runSend(ctx, cfg, service, out)
}

func runSend(ctx context.Context, cfg Config, service *domain.Service, out io.Writer) error {
	outcome, err := service.Send(ctx, cfg.Amount, cfg.Message, cfg.Exclude)
	if err != nil {
		return err
	}

	switch outcome.Status {
	case domain.StatusSuccess:
		fmt.Fprintf(out, "Sent %d sats to %s via %s.\n", cfg.Amount, outcome.Recipient, outcome.Channel)
	case domain.StatusNeedsManualCompletion:
		fmt.Fprintf(out, "Pay this invoice with any lightning wallet:\n\n  %s\n\n", outcome.Invoice)
		request, err := json.Marshal(outcome.ZapRequest)
		if err != nil {
			return fmt.Errorf("encode zap request: %w", err)
		}
		fmt.Fprintf(out, "Then verify and announce it with:\n\n")
		fmt.Fprintf(out, "  gift -verify %q -endpoint %q -request request.json\n\n", outcome.Invoice, outcome.Endpoint)
		fmt.Fprintf(out, "request.json contents:\n%s\n", request)
	default:
		fmt.Fprintf(out, "Gift failed: %s\n", outcome.Reason)
	}
	return nil
}

func runVerify(ctx context.Context, cfg Config, service *domain.Service, out io.Writer) error {
	if cfg.RequestPath == "" {
		return fmt.Errorf("-request is required with -verify")
	}
	if cfg.Endpoint == "" && !cfg.Force {
		return fmt.Errorf("-endpoint is required with -verify unless -force is set")
	}

	raw, err := os.ReadFile(cfg.RequestPath)
	if err != nil {
		return fmt.Errorf("read zap request: %w", err)
	}
	var request nostr.Event
	if err := json.Unmarshal(raw, &request); err != nil {
		return fmt.Errorf("decode zap request: %w", err)
	}
	if err := nostr.VerifyEvent(request); err != nil {
		return fmt.Errorf("zap request is not a valid signed event: %w", err)
	}

	if service.VerifyAndPublish(ctx, cfg.Verify, cfg.Endpoint, request, cfg.Force) {
		fmt.Fprintln(out, "Payment confirmed, receipt published.")
		return nil
	}
	fmt.Fprintln(out, "Payment not confirmed yet. Retry later, or rerun with -force if you already paid.")
	return nil
}
