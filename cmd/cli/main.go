package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/your-org/sitegen/internal/app"
	"github.com/your-org/sitegen/internal/audit"
	"github.com/your-org/sitegen/internal/config"
	"github.com/your-org/sitegen/internal/logging"
	"github.com/your-org/sitegen/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "-v" || command == "--version" || command == "version" {
		fmt.Println(version.String())
		return
	}

	switch command {
	case "test-ai":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cli config: %v\n", err)
			os.Exit(1)
		}
		logger := logging.MustNew(cfg.LogLevel, "console")
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = app.ProbeProviders(ctx, cfg, logger, os.Stdout)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cli test-ai failed: %v\n", err)
			os.Exit(1)
		}
	case "extract":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		if err := app.ExtractFile(os.Args[2], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli extract failed: %v\n", err)
			os.Exit(1)
		}
	case "audit-export":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		inputPath := os.Args[2]
		outputPath := "audit.csv"
		if len(os.Args) > 3 {
			outputPath = os.Args[3]
		}
		rows, err := audit.ExportJSONLToCSV(inputPath, outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cli audit-export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("audit export complete: %s -> %s (%d rows)\n", inputPath, outputPath, rows)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: sitegen-cli <test-ai|extract <reply.txt>|audit-export <in.jsonl> [out.csv]|version>")
}
