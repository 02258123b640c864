// Package cmd implements the dvt command line application to track
// development projects.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/devtrack"
	"github.com/etnz/devtrack/config"
	"github.com/etnz/devtrack/storage"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the YAML configuration file (default devtrack.yaml, or $DEVTRACK_CONFIG)")
var dataFile = flag.String("data-file", "", "Path to the projects JSON document, overrides the configured backend")
var defaultCurrency = flag.String("currency", "", "Currency of the amounts saved without one (default MYR)")

// Verbose enables informational logs.
var Verbose = flag.Bool("v", false, "verbose logs")

// stdout receives the commands output.
var stdout io.Writer = os.Stdout

// LoadConfig returns the configuration, with the global flags applied.
func LoadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return config.Config{}, err
	}
	if *dataFile != "" {
		cfg.Data.Backend = "file"
		cfg.Data.Path = *dataFile
	}
	if *defaultCurrency != "" {
		cfg.Currency = strings.ToUpper(*defaultCurrency)
	}
	return cfg, cfg.Validate()
}

// OpenStore is the central function to open the project store.
func OpenStore(ctx context.Context) (*devtrack.Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	var backend devtrack.Backend
	switch strings.ToLower(cfg.Data.Backend) {
	case "s3":
		backend, err = storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Key:       cfg.S3.Key,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
	default:
		f := storage.NewFile(cfg.Data.Path)
		f.Atomic = cfg.Data.Atomic
		backend = f
	}
	if *Verbose {
		log.Printf("using %s, default currency %s", backend, cfg.Currency)
	}
	return devtrack.NewStore(backend, cfg.Currency), nil
}

// printMarkdown renders markdown for the terminal. The raw markdown is printed
// when it cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	log.Printf("warning, cannot render markdown: %v", err)
	fmt.Fprint(stdout, md)
}
