// Command bot runs the chat-bot core: migrations, the command dispatcher
// wiring, and the daily per-guild scheduler. It stops cleanly on SIGINT
// or SIGTERM.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/mheller/gamekeeper/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
