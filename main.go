// ChessMind - a rule-based chess engine with an HTTP facade
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hailam/chessmind/internal/config"
	"github.com/hailam/chessmind/internal/server"
)

func main() {
	cfg := config.DefaultServer()
	fs := flag.NewFlagSet("chessmind", flag.ExitOnError)
	cfg.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	srv := server.New(cfg)
	log.Fatal(srv.ListenAndServe())
}
