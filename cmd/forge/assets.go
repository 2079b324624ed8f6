package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"forge-service/internal/fetch"
)

var (
	manifestPath     string
	fetchConcurrency int
	geoIPDest        string
)

// fetchAssetsCmd downloads every asset listed in a manifest
var fetchAssetsCmd = &cobra.Command{
	Use:   "fetch-assets",
	Short: "Download assets in parallel",
	Long: `Download the assets listed in a YAML manifest:

  base_dir: public/images
  assets:
    - url: https://example.com/a.png
      dest: a.png

Failed downloads are reported together once every asset has been tried.`,
	RunE: runFetchAssets,
}

// geoIPUpdateCmd refreshes the MaxMind GeoLite2 City database
var geoIPUpdateCmd = &cobra.Command{
	Use:   "geoip:update",
	Short: "Refresh the MaxMind GeoLite2 database",
	RunE:  runGeoIPUpdate,
}

func init() {
	fetchAssetsCmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to the asset manifest")
	fetchAssetsCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 0, "Parallel downloads (default FETCH_CONCURRENCY)")
	_ = fetchAssetsCmd.MarkFlagRequired("manifest")

	geoIPUpdateCmd.Flags().StringVar(&geoIPDest, "dest", "", "Where to install the .mmdb file (default MAXMIND_DEST)")

	rootCmd.AddCommand(fetchAssetsCmd)
	rootCmd.AddCommand(geoIPUpdateCmd)
}

func runFetchAssets(cmd *cobra.Command, args []string) error {
	jobs, err := fetch.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	concurrency := fetchConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Fetch.Concurrency
	}
	pool := fetch.NewPool(concurrency, cfg.Fetch.Timeout)
	defer pool.Close()

	results, err := pool.Fetch(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	failed := 0
	var total int64
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.WithError(r.Err).WithField("url", r.Job.URL).Warn("asset download failed")
			continue
		}
		total += r.Bytes
	}

	log.WithFields(log.Fields{
		"assets": len(results),
		"failed": failed,
		"bytes":  total,
	}).Info("fetch-assets complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d assets failed", failed, len(results))
	}
	return nil
}

func runGeoIPUpdate(cmd *cobra.Command, args []string) error {
	dest := geoIPDest
	if dest == "" {
		dest = cfg.MaxMind.Dest
	}

	pool := fetch.NewPool(1, cfg.Fetch.Timeout)
	defer pool.Close()

	if err := fetch.UpdateGeoIP(cmd.Context(), pool, cfg.MaxMind.AccountID, cfg.MaxMind.LicenseKey, dest); err != nil {
		return err
	}

	log.WithField("dest", dest).Info("geoip database updated")
	return nil
}
