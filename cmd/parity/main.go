package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	paritycmd "github.com/louisbranch/parityroll/internal/cmd/parity"
)

func main() {
	cfg, err := paritycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[PARITY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := paritycmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}
