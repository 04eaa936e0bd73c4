// migrate manages the Postgres account schema at STORE_URL. The mongo and
// memory stores need no migrations.
//
//	migrate -direction up|down
//	migrate -version
package main

import (
	"flag"
	"fmt"
	"os"

	"account-service/internal/config"
	"account-service/internal/db/migrate"
)

func main() {
	directionFlag := flag.String("direction", "up", "up or down")
	showVersion := flag.Bool("version", false, "print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		exit("config", err)
	}

	if *showVersion {
		v, dirty, ok, err := migrate.Version(cfg.StoreURL)
		if err != nil {
			exit("version", err)
		}
		switch {
		case !ok:
			fmt.Println("no migrations applied")
		case dirty:
			fmt.Printf("version %d (dirty)\n", v)
		default:
			fmt.Printf("version %d\n", v)
		}
		return
	}

	direction, err := migrate.ParseDirection(*directionFlag)
	if err != nil {
		exit("migrate", err)
	}
	if err := migrate.Run(cfg.StoreURL, direction); err != nil {
		exit("migrate", err)
	}
}

func exit(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
