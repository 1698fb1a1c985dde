package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/feedupload/internal/app"
	"github.com/dmitrijs2005/feedupload/internal/buildinfo"
	"github.com/dmitrijs2005/feedupload/internal/config"
	"github.com/dmitrijs2005/feedupload/internal/flagx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var command string
	if p := flagx.Positional(args, config.SettingFlags); len(p) > 0 {
		command = p[0]
	}

	buildinfo.PrintBuildData(os.Stdout)
	if command == "version" {
		return 0
	}

	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Printf("%v", err)
		if errors.Is(err, config.ErrMissingSetting) {
			fmt.Fprintln(os.Stderr, "usage: feedupload [-c config.json] [-d folder] [-u url] [-k key] [-j journal.db] [-m addr] [-l level] [upload|orphans|history|version]")
		}
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer a.Close()

	if err := a.Run(ctx, command); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}
