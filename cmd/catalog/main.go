package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/stemsi/exstem-prep/internal/catalog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/logger"
	"golang.org/x/term"
)

func main() {
	var (
		seed     uint64
		moduleID string
		papers   bool
		indent   string
	)
	flag.Uint64Var(&seed, "seed", 0, "Catalog seed (0 = CATALOG_SEED, or unseeded when that is 0 too)")
	flag.StringVar(&moduleID, "module", "", "Dump a single module by id")
	flag.BoolVar(&papers, "papers", false, "Strip answers and explanations")
	flag.StringVar(&indent, "indent", "auto", "Indent output: auto, yes, no")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(os.Stderr, cfg.LogLevel, "pretty")

	if seed == 0 {
		seed = cfg.CatalogSeed
	}
	cat := catalog.Synthesize(catalog.Options{Seeded: seed != 0, Seed: seed})

	var out interface{}
	switch {
	case moduleID != "":
		m, err := cat.Get(moduleID)
		if err != nil {
			log.Fatal().Err(err).Str("module_id", moduleID).Msg("Unknown module")
		}
		if papers {
			out = m.Paper()
		} else {
			out = m
		}
	case papers:
		modules := cat.Modules()
		list := make([]interface{}, len(modules))
		for i := range modules {
			list[i] = modules[i].Paper()
		}
		out = list
	default:
		out = cat.Modules()
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty(indent) {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("Encode failed")
	}

	log.Debug().Uint64("seed", seed).Bool("seeded", seed != 0).Msg("Catalog written")
}

func pretty(mode string) bool {
	switch mode {
	case "yes":
		return true
	case "no":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}
