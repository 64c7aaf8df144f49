// Package main provides the CLI for sending a gratitude gift over lightning
// and for verifying and announcing a manually paid gift.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	giftcmd "github.com/gratefulday/gratefulday.space/internal/cmd/gift"
)

func main() {
	cfg, err := giftcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[GIFT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := giftcmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("gift failed: %v", err)
	}
}
