package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"evalforge/internal/config"
	"evalforge/internal/logging"
	"evalforge/internal/model"
	"evalforge/internal/repository"
	"evalforge/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type seedOptions struct {
	configPath string
	username   string
}

func newRootCmd() *cobra.Command {
	opts := &seedOptions{}
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed evaluation templates for a host",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.username, "username", "", "host username (defaults to the configured host)")

	root.AddCommand(
		&cobra.Command{
			Use:   "default",
			Short: "Store the default contact template",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withTemplates(cmd.Context(), opts, func(ctx context.Context, svc *service.TemplateService, hostID string, log *zap.Logger) error {
					return save(ctx, svc, hostID, defaultTemplate(), log)
				})
			},
		},
		&cobra.Command{
			Use:   "rubric",
			Short: "Store a scored code review rubric",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withTemplates(cmd.Context(), opts, func(ctx context.Context, svc *service.TemplateService, hostID string, log *zap.Logger) error {
					t, err := reviewRubric()
					if err != nil {
						return err
					}
					return save(ctx, svc, hostID, t, log)
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the host's templates",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withTemplates(cmd.Context(), opts, func(ctx context.Context, svc *service.TemplateService, hostID string, _ *zap.Logger) error {
					templates, err := svc.List(ctx, hostID)
					if err != nil {
						return err
					}
					for _, t := range templates {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d items\t%s\n", t.ID, len(t.Items), t.Title)
					}
					return nil
				})
			},
		},
	)
	return root
}

type templateFunc func(ctx context.Context, svc *service.TemplateService, hostID string, log *zap.Logger) error

// withTemplates connects to MongoDB and runs fn against the template service
func withTemplates(ctx context.Context, opts *seedOptions, fn templateFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	defer log.Sync()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	username := opts.username
	if username == "" {
		username = cfg.Auth.HostUsername
	}
	hostID := service.HostIDFor(username)

	repo := repository.NewTemplateRepo(client.Database(cfg.Mongo.Database))
	return fn(ctx, service.NewTemplateService(repo, log), hostID, log)
}

func save(ctx context.Context, svc *service.TemplateService, hostID string, t model.Template, log *zap.Logger) error {
	saved, err := svc.Save(ctx, hostID, t)
	if err != nil {
		return err
	}
	log.Info("template seeded",
		zap.String("templateId", saved.ID),
		zap.String("hostId", hostID),
		zap.String("title", saved.Title),
		zap.Int("items", len(saved.Items)),
	)
	return nil
}
