package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/indigo-web/hitchhiker"
	"github.com/indigo-web/hitchhiker/config"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:0", "address to listen on")
		configPath = flag.String("config", "", "path to a JSON config file")
		watch      = flag.Bool("watch", false, "reload the worker delay whenever the config file changes")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	app := hitchhiker.New(*addr).Tune(cfg)
	app.NotifyOnStart(func() {
		fmt.Printf("Listening on http://%s\n", app.Addr())
	})

	if *watch && *configPath != "" {
		watcher, err := config.Watch(*configPath, func(cfg *config.Config) {
			app.SetDelay(cfg.Worker.Delay)
			log.Printf("hitchhiker: worker delay is now %s", cfg.Worker.Delay)
		})
		if err != nil {
			log.Fatal(err)
		}

		defer watcher.Close()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		app.Stop()
	}()

	if err := app.Serve(); err != nil {
		log.Fatal(err)
	}
}
