package main

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"forge-service/internal/adapters/secondary/hub"
	"forge-service/internal/adapters/secondary/postgres"
	"forge-service/internal/hubimport"
)

var (
	importChunk     int
	importSkipPrune bool
)

// importHubCmd copies the legacy Hub into the Forge database
var importHubCmd = &cobra.Command{
	Use:   "import-hub",
	Short: "Import Hub data into the Forge",
	Long: `Import licenses, users, follows, SPT versions, mods and mod versions
from the legacy Hub database configured with HUB_DSN.

Rows are read in keyset chunks and merged by hub_id, so the import can be
rerun. Mods that no longer exist in the Hub are soft-deleted unless
--skip-prune is set. SPT versions, dependencies, addon compatibility and
download counts are recomputed afterwards.`,
	RunE: runImportHub,
}

func init() {
	importHubCmd.Flags().IntVar(&importChunk, "chunk", 0, "Rows per chunk (default HUB_CHUNK_SIZE)")
	importHubCmd.Flags().BoolVar(&importSkipPrune, "skip-prune", false, "Keep Forge mods that were removed from the Hub")
	rootCmd.AddCommand(importHubCmd)
}

func runImportHub(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cfg.Hub.DSN == "" {
		return errors.New("HUB_DSN is required")
	}

	chunk := importChunk
	if chunk <= 0 {
		chunk = cfg.Hub.ChunkSize
	}

	hubDB, err := hub.Open(ctx, cfg.Hub.DSN)
	if err != nil {
		return err
	}
	defer hubDB.Close()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	jobs := newJobs(pool)
	importer := hubimport.NewImporter(
		hub.NewSource(hubDB),
		postgres.NewImportRepository(pool),
		hubimport.Options{ChunkSize: chunk, SkipPrune: importSkipPrune},
		jobs.followUps()...,
	)

	stats, err := importer.Run(ctx)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"mods":         stats.Mods,
		"mod_versions": stats.ModVersions,
		"skipped":      stats.Skipped,
	}).Info("import-hub complete")
	return nil
}
