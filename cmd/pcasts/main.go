package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

type Opts struct {
	ConfigPath string `long:"config" short:"c" env:"PCASTS_CONFIG_PATH" description:"path to config file (default: {app_dir}/config.toml)"`
	Debug      bool   `long:"debug" description:"enable debug logging"`

	Subscriptions SubscriptionsCommand `command:"subscriptions" alias:"podcasts" description:"manage subscriptions"`
	Episodes      EpisodesCommand      `command:"episodes" description:"list, update and download episodes"`
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var opts Opts

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if opts.Debug {
			log.SetLevel(log.DebugLevel)
		}

		log.WithFields(log.Fields{
			"version": version,
			"commit":  commit,
			"date":    date,
		}).Debug("running pcasts")

		if command == nil {
			return nil
		}

		return command.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Fprintln(os.Stdout, flagsErr.Message)
				return
			}

			fmt.Fprintln(os.Stderr, flagsErr.Message)
			os.Exit(1)
		}

		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
