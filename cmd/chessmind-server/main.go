// chessmind-server serves the engine over HTTP.
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
	fs := flag.NewFlagSet("chessmind-server", flag.ExitOnError)
	cfg.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	srv := server.New(cfg)
	log.Fatal(srv.ListenAndServe())
}
