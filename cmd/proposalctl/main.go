package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/ignatzorin/proposal-backend/internal/cli"
	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/db"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/usecase/waitlist"
	"github.com/ignatzorin/proposal-backend/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init("warn")
	logger.SetTextFormatter()

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close()

	app := &cli.App{
		Waitlist: waitlist.NewService(persistence.NewWaitlistRepositoryAdapter(conn), nil, cfg.WaitlistGateActive()),
		Users:    persistence.NewUserRepositoryAdapter(conn),
		Migrate: func(ctx context.Context) error {
			return db.RunMigrations(ctx, conn, migrations.FS)
		},
		Out:   os.Stdout,
		Color: isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("NO_COLOR") == "",
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
