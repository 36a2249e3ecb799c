package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/hexaflex/intcode/internal/logging"
)

func main() {
	config := parseArgs()

	log, closeLog, err := logging.New(os.Stderr, logging.Config{
		Debug: config.Debug,
		File:  config.LogFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = NewApp(config, log, os.Stdin, os.Stdout, os.Stderr).Run(ctx)
	stop()

	if err != nil {
		log.Error("execution failed", "error", err)
	}

	closeLog()

	if err != nil {
		os.Exit(1)
	}
}
