package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/cli"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
)

func main() {

	ctx := context.Background()
	args := os.Args[1:]

	cfg, err := config.Load(args, os.Environ())
	if err != nil {
		log.Fatalf("%v", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	app := cli.NewApp(cfg, logger, os.Stdin, os.Stdout)
	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			log.Printf("%v", err)
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}

}
