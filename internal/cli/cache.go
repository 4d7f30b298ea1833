package cli

import (
	"context"
	"log"

	"kentei-quiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewReloadCmd rebuilds every configured partition into the cache.
func NewReloadCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Rebuild all cached question sets from the backing store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), *configPath, func(ctx context.Context, svc *services) error {
				result, err := svc.questions.ReloadAll(ctx)
				if err != nil {
					return err
				}
				if result.InProgress {
					log.Printf("another reload is running; nothing done")
					return nil
				}
				log.Printf("rebuilt %d partitions in %s (skipped topics: %v)", result.Partitions, result.Elapsed, result.Skipped)
				return nil
			})
		},
	}
}

// NewClearCmd drops cached partitions without rebuilding them.
func NewClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached question sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), *configPath, func(ctx context.Context, svc *services) error {
				if err := svc.questions.ClearAll(ctx); err != nil {
					return err
				}
				log.Printf("cache cleared")
				return nil
			})
		},
	}
}

func withServices(ctx context.Context, configPath string, fn func(context.Context, *services) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}
