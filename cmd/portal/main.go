package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SevaSetu/scheme_portal/internal/app/runtime"
)

func main() {
	app, err := runtime.NewApplication(nil)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}

	if err := app.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	os.Exit(0)
}
