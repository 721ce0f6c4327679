// Command cardrisk is an operator CLI over the transaction lifecycle service.
//
// The HTTP API in front of this core lives elsewhere; this command exists for
// operations work and local development against a real database.
//
// Usage:
//
//	cardrisk assess -owner <id> -amount 42.50 -card 4111111111111111 -merchant "Acme" -category retail
//	cardrisk create -owner <id> -amount 42.50 -card 4111111111111111 -merchant "Acme" -category retail
//	cardrisk history -owner <id> [-limit 50]
//	cardrisk get -owner <id> -id <txn id>
//	cardrisk set-status -owner <id> -id <txn id> -status declined
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/mbd888/cardrisk/internal/config"
	"github.com/mbd888/cardrisk/internal/logging"
	"github.com/mbd888/cardrisk/internal/risk"
	"github.com/mbd888/cardrisk/internal/traces"
	"github.com/mbd888/cardrisk/internal/transaction"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := logging.WithLogger(context.Background(), logger)

	shutdown, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdown(context.Background()) }()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	history := transaction.NewHistoryProvider(store, cfg.HistoryLookback)
	svc := transaction.NewService(store, risk.NewEngine(), history)

	if err := run(ctx, svc, cfg, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// openStore picks PostgreSQL when DATABASE_URL is set, in-memory otherwise.
// The in-memory store only makes sense for trying out the rule engine; it
// does not survive the process.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (transaction.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, using in-memory store (state is discarded on exit)")
		return transaction.NewMemoryStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	store := transaction.NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("using PostgreSQL storage")
	return store, func() { _ = db.Close() }, nil
}

func run(ctx context.Context, svc *transaction.Service, cfg *config.Config, command string, args []string) error {
	switch command {
	case "assess":
		sub, owner, err := parseSubmission(command, args)
		if err != nil {
			return err
		}
		result, err := svc.SubmitForAssessment(ctx, owner, sub)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "create":
		sub, owner, err := parseSubmission(command, args)
		if err != nil {
			return err
		}
		txn, err := svc.CreatePlain(ctx, owner, sub)
		if err != nil {
			return err
		}
		return printJSON(txn)

	case "history":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		owner := fs.String("owner", "", "owner principal ID")
		limit := fs.Int("limit", cfg.HistoryLimit, "max records")
		if err := parse(fs, args, owner); err != nil {
			return err
		}
		txns, err := svc.ListHistory(ctx, *owner, *limit)
		if err != nil {
			return err
		}
		return printJSON(txns)

	case "get":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		owner := fs.String("owner", "", "owner principal ID")
		id := fs.String("id", "", "transaction ID")
		if err := parse(fs, args, owner); err != nil {
			return err
		}
		txn, err := svc.GetByID(ctx, *owner, *id)
		if err != nil {
			return err
		}
		return printJSON(txn)

	case "set-status":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		owner := fs.String("owner", "", "owner principal ID")
		id := fs.String("id", "", "transaction ID")
		status := fs.String("status", "", "pending|completed|flagged|declined")
		if err := parse(fs, args, owner); err != nil {
			return err
		}
		txn, err := svc.UpdateStatus(ctx, *owner, *id, transaction.Status(*status))
		if err != nil {
			return err
		}
		return printJSON(txn)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// parseSubmission handles the shared flags of assess and create.
func parseSubmission(command string, args []string) (transaction.Submission, string, error) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	owner := fs.String("owner", "", "owner principal ID")
	amount := fs.Float64("amount", 0, "transaction amount")
	cardNumber := fs.String("card", "", "16-digit card number")
	merchant := fs.String("merchant", "", "merchant name")
	category := fs.String("category", "", "retail|entertainment|travel|food|other")
	occurredAt := fs.String("occurred-at", "", "RFC3339 timestamp (default: now)")
	origin := fs.String("origin", "", "origin address")
	device := fs.String("device", "", "device signature")

	if err := parse(fs, args, owner); err != nil {
		return transaction.Submission{}, "", err
	}

	sub := transaction.Submission{
		Amount:          *amount,
		CardNumber:      *cardNumber,
		MerchantName:    *merchant,
		Category:        transaction.Category(*category),
		OriginAddress:   *origin,
		DeviceSignature: *device,
	}
	if *occurredAt != "" {
		ts, err := time.Parse(time.RFC3339, *occurredAt)
		if err != nil {
			return transaction.Submission{}, "", fmt.Errorf("parse -occurred-at: %w", err)
		}
		sub.OccurredAt = ts
	}
	return sub, *owner, nil
}

func parse(fs *flag.FlagSet, args []string, owner *string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *owner == "" {
		return fmt.Errorf("-owner is required")
	}
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: cardrisk <assess|create|history|get|set-status> [flags]")
}
