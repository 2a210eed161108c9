// Package main is a smoke-test utility that verifies the hub API the web
// front-end depends on is reachable and returning valid data. It fetches the
// site stats and runs one package search through the same client the pages
// use, then prints a summary. The binary exits with a non-zero code on any
// failure so it can gate deployments in CI/CD pipeline steps.
//
// Usage: check-api [-config config.yaml] [-q query]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/packagehub/hub-web/internal/config"
	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the configuration file")
	query := flag.String("q", "helm", "text to search for")
	timeout := flag.Duration("timeout", 15*time.Second, "overall timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := hubapi.NewClient(cfg.API.Endpoint(), hubapi.WithUserAgent("hub-web-check"))
	fmt.Printf("API endpoint: %s\n", cfg.API.Endpoint())

	fmt.Println("=== STATS ===")
	stats, err := client.GetStats(ctx)
	if err != nil {
		log.Fatalf("Stats request failed (%s): %v", hubapi.KindOf(err), err)
	}
	fmt.Printf("Packages: %d, Releases: %d\n", stats.Packages, stats.Releases)

	fmt.Printf("\n=== SEARCH %q ===\n", *query)
	results, err := client.SearchPackages(ctx, hubapi.SearchQuery{
		Limit:   5,
		Filters: urlutil.SearchFilters{TSQueryWeb: *query},
	})
	if err != nil {
		log.Fatalf("Search request failed (%s): %v", hubapi.KindOf(err), err)
	}
	for _, p := range results.Packages {
		loc := urlutil.PackageLocation{Kind: p.Repository.Kind.Name(), Repository: p.Repository.Name, NormalizedName: p.NormalizedName}
		fmt.Printf("Package: %s %s (%s)\n", p.Title(), p.Version, urlutil.BuildPackageURL(loc, false))
	}
	fmt.Printf("Total: %d\n", results.TotalCount)

	if results.TotalCount == 0 {
		fmt.Println("No packages found!")
	}
}
