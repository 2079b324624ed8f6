package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"forge-service/internal/adapters/secondary/postgres"
	"forge-service/internal/core/services"
	"forge-service/internal/hubimport"
)

// jobs holds the services the maintenance commands run.
type jobs struct {
	downloads     *services.DownloadService
	sptVersions   *services.SptVersionService
	dependencies  *services.DependencyService
	addonVersions *services.AddonVersionService
	maintenance   *services.MaintenanceService
}

func newJobs(pool *pgxpool.Pool) *jobs {
	modVersionRepo := postgres.NewModVersionRepository(pool)
	addonVersionRepo := postgres.NewAddonVersionRepository(pool)

	return &jobs{
		downloads:     services.NewDownloadService(postgres.NewTrackingRepository(pool), modVersionRepo, addonVersionRepo),
		sptVersions:   services.NewSptVersionService(postgres.NewSptVersionRepository(pool), modVersionRepo),
		dependencies:  services.NewDependencyService(modVersionRepo),
		addonVersions: services.NewAddonVersionService(addonVersionRepo, postgres.NewAddonRepository(pool), modVersionRepo, nil),
		maintenance:   services.NewMaintenanceService(postgres.NewCacheRepository(pool)),
	}
}

func (j *jobs) resolveSpt(ctx context.Context) error {
	failed, err := j.sptVersions.ResolveAll(ctx)
	if err != nil {
		return err
	}
	if failed > 0 {
		log.WithField("failed", failed).Warn("some mod versions could not be resolved")
	}
	return nil
}

func (j *jobs) resolveDependencies(ctx context.Context) error {
	failed, err := j.dependencies.ResolveAll(ctx)
	if err != nil {
		return err
	}
	addonFailed, err := j.addonVersions.ResolveAll(ctx)
	if err != nil {
		return err
	}
	if failed+addonFailed > 0 {
		log.WithFields(log.Fields{
			"mod_versions":   failed,
			"addon_versions": addonFailed,
		}).Warn("some versions could not be resolved")
	}
	return nil
}

func (j *jobs) followUps() []hubimport.FollowUp {
	return []hubimport.FollowUp{
		{Name: "resolve spt versions", Run: j.resolveSpt},
		{Name: "resolve dependencies", Run: j.resolveDependencies},
		{Name: "recalculate downloads", Run: j.downloads.Recalculate},
	}
}

// withJobs runs fn against a freshly connected database.
func withJobs(fn func(ctx context.Context, j *jobs) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(ctx, newJobs(pool))
	}
}

var cacheOlderThan time.Duration

var downloadsRecalculateCmd = &cobra.Command{
	Use:   "downloads:recalculate",
	Short: "Recalculate cached download counts",
	RunE: withJobs(func(ctx context.Context, j *jobs) error {
		return j.downloads.Recalculate(ctx)
	}),
}

var sptResolveCmd = &cobra.Command{
	Use:   "spt:resolve",
	Short: "Resolve SPT versions for all mod versions and recount",
	RunE: withJobs(func(ctx context.Context, j *jobs) error {
		return j.resolveSpt(ctx)
	}),
}

var dependenciesResolveCmd = &cobra.Command{
	Use:   "dependencies:resolve",
	Short: "Resolve mod dependencies and addon compatibility",
	RunE: withJobs(func(ctx context.Context, j *jobs) error {
		return j.resolveDependencies(ctx)
	}),
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cache:cleanup",
	Short: "Delete stale cache rows",
	RunE: withJobs(func(ctx context.Context, j *jobs) error {
		_, err := j.maintenance.CleanupCache(ctx, cacheOlderThan)
		return err
	}),
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info("schema applied")
		return nil
	},
}

func init() {
	cacheCleanupCmd.Flags().DurationVar(&cacheOlderThan, "older-than", 0, "Only delete rows expired for at least this long")

	rootCmd.AddCommand(downloadsRecalculateCmd)
	rootCmd.AddCommand(sptResolveCmd)
	rootCmd.AddCommand(dependenciesResolveCmd)
	rootCmd.AddCommand(cacheCleanupCmd)
	rootCmd.AddCommand(migrateCmd)
}
