package main

import (
	"errors"
	"fmt"
	"os"

	"cesta/internal/config"
	"cesta/internal/storage"
	"cesta/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.ListPath)
	notice := ""
	if err != nil {
		if !errors.Is(err, storage.ErrMalformedDocument) {
			fmt.Printf("failed to open list: %v\n", err)
			os.Exit(1)
		}
		// The store came back usable with the sample list substituted.
		notice = fmt.Sprintf("Could not read %s; starting from the sample list.", cfg.ListPath)
	}

	if err := ui.Run(store, cfg, notice); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
