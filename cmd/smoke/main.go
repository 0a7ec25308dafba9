package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eshaffer321/constructcycle-go/internal/config"
	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
)

// SmokeConfig holds the command line settings
type SmokeConfig struct {
	BaseURL   string
	Token     string
	Email     string
	Password  string
	OutputDir string
	Verbose   bool
	Checks    []string
}

func main() {
	cfg := parseFlags()

	env, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.BaseURL != "" {
		env.API.BaseURL = cfg.BaseURL
	}

	if !cfg.Verbose {
		env.LogLevel = "warn"
	}

	opts, cleanup := env.ClientOptions(os.Stderr)
	defer cleanup()

	// Smoke runs must not reuse or overwrite a developer's saved session
	opts.Storage = constructcycle.NewMemoryStorage()
	opts.Token = cfg.Token

	client, err := constructcycle.NewClient(opts)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cfg.Email != "" {
		if _, err := client.Auth.Login(ctx, cfg.Email, cfg.Password); err != nil {
			log.Fatalf("Login failed: %s", constructcycle.UserMessage(err, err.Error()))
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	runner := NewRunner(client, cfg.Verbose)
	report := runner.Run(ctx, cfg.Checks)

	reportPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("smoke_report_%d.json", time.Now().Unix()))
	if err := saveReport(report, reportPath); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}

	printSummary(report)
	fmt.Printf("Report saved to %s\n", reportPath)

	if report.Failed > 0 {
		os.Exit(1)
	}
}

func parseFlags() *SmokeConfig {
	cfg := &SmokeConfig{}

	flag.StringVar(&cfg.BaseURL, "base-url", "", "API base URL (defaults to CONSTRUCTCYCLE_BASE_URL)")
	flag.StringVar(&cfg.Token, "token", os.Getenv("CONSTRUCTCYCLE_TOKEN"), "Auth token for account checks")
	flag.StringVar(&cfg.Email, "email", "", "Log in with this email instead of a token")
	flag.StringVar(&cfg.Password, "password", os.Getenv("CONSTRUCTCYCLE_PASSWORD"), "Password for -email")
	flag.StringVar(&cfg.OutputDir, "output", "./smoke_results", "Output directory for reports")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")

	checkList := flag.String("checks", "", "Comma-separated list of checks to run (empty for all)")

	flag.Parse()

	if *checkList != "" {
		cfg.Checks = strings.Split(*checkList, ",")
	}

	return cfg
}

func saveReport(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(report *Report) {
	fmt.Println("\n=== Smoke Check Summary ===")
	fmt.Printf("Base URL: %s\n", report.BaseURL)
	fmt.Printf("Total: %d  Passed: %d  Failed: %d  Skipped: %d\n",
		report.Total, report.Passed, report.Failed, report.Skipped)

	for _, r := range report.Results {
		status := "PASS"
		switch {
		case r.Skipped:
			status = "SKIP"
		case !r.Passed:
			status = "FAIL"
		}
		line := fmt.Sprintf("  [%s] %-16s %8s", status, r.Check, r.Duration.Round(time.Millisecond))
		if r.Summary != "" {
			line += "  " + r.Summary
		}
		if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Println(line)
	}
}
