package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pooled-auction-api/app"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type runFunc func(ctx context.Context, cfg *app.Config, log *logrus.Logger) error

func action(run runFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return err
		}

		return run(c.Context, cfg, app.NewLogger(cfg))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:   "pooled-auction-api",
		Usage:  "reverse auctions for pooled orders",
		Action: action(app.Serve),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: action(app.Serve),
			},
			{
				Name:   "award-expired",
				Usage:  "award every open auction past its deadline and exit",
				Action: action(app.AwardExpired),
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: action(app.Migrate),
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("application stopped")
	}
}
