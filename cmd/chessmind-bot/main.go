// chessmind-bot plays on Lichess with the rule-based engine.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hailam/chessmind/internal/config"
	"github.com/hailam/chessmind/internal/lichess"
	"github.com/hailam/chessmind/internal/storage"
)

func main() {
	cfg := config.DefaultBot()
	fs := flag.NewFlagSet("chessmind-bot", flag.ExitOnError)
	cfg.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	token, err := cfg.Token()
	if err != nil {
		log.Fatal(err)
	}

	dir := cfg.StorageDir
	if dir == "" {
		dir, err = storage.DatabaseDir()
		if err != nil {
			log.Fatal(err)
		}
	}
	store, err := storage.Open(dir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot := lichess.NewBot(lichess.NewClient(cfg.BaseURL, token), store, cfg.Debug)
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
