package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"weatherdash/cli"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() (code int) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %s\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			code = 1
		}
	}()

	cmd, err := cli.New(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: new cli: %s\n", err)
		return 1
	}

	err = cmd.ExecuteContext(ctx)
	switch {
	case ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)):
		fmt.Println("\nApplication terminated by user")
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
