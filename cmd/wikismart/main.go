package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/wikismart/wikismart/internal/cli"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	// Errors reach the user through cobra; the log is for WIKISMART_DEBUG=1.
	if os.Getenv("WIKISMART_DEBUG") == "" {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
	stop()
}
