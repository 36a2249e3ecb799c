package main

import (
	"fmt"
	"os"

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

	err = NewApp(config, log).Run()
	if err != nil {
		log.Error("build failed", "error", err)
	}

	closeLog()

	if err != nil {
		os.Exit(1)
	}
}
