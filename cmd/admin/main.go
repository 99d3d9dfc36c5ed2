// Command admin runs maintenance tasks against the configured database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	appModels "github.com/yigit/uniadmin/internal/app/models"
	appRepos "github.com/yigit/uniadmin/internal/app/repositories"
	appServices "github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/bootstrap"
	"github.com/yigit/uniadmin/internal/config"
	"github.com/yigit/uniadmin/internal/db"
	"github.com/yigit/uniadmin/internal/pkg/logger"
	"github.com/yigit/uniadmin/internal/pkg/metrics"
	"github.com/yigit/uniadmin/internal/seed"
)

type env struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	repos  *appRepos.Repositories
	logger zerolog.Logger
}

// withEnv loads the configuration, connects and migrates before running fn
func withEnv(fn func(ctx context.Context, e *env, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
		if err != nil {
			return err
		}

		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := c.Context
		if err := bootstrap.RunMigrations(ctx, cfg, database.Pool, lgr); err != nil {
			return err
		}

		return fn(ctx, &env{
			cfg:    cfg,
			pool:   database.Pool,
			repos:  appRepos.NewRepositories(database.Pool, metrics.NewRegistry()),
			logger: lgr,
		}, c)
	}
}

func main() {
	app := &cli.App{
		Name:  "admin",
		Usage: "maintenance commands for the university administration backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply pending schema migrations",
				Action: withEnv(func(_ context.Context, _ *env, _ *cli.Context) error {
					return nil
				}),
			},
			{
				Name:  "create-superuser",
				Usage: "create an active staff superuser",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, EnvVars: []string{"ADMIN_EMAIL"}},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: withEnv(func(ctx context.Context, e *env, c *cli.Context) error {
					created, err := seed.EnsureSuperuser(ctx, e.repos.UserRepository, c.String("email"), c.String("password"), e.logger)
					if err != nil {
						return err
					}
					if !created {
						fmt.Fprintln(c.App.Writer, "user already exists")
					}
					return nil
				}),
			},
			{
				Name:  "seed-departments",
				Usage: "create the default departments through the id allocator",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "actor", Usage: "user id recorded as creator", Required: true},
				},
				Action: withEnv(func(ctx context.Context, e *env, c *cli.Context) error {
					actor, err := e.repos.UserRepository.GetByID(ctx, c.Int64("actor"))
					if err != nil {
						return fmt.Errorf("actor %d: %w", c.Int64("actor"), err)
					}
					departments := appServices.NewDepartmentService(e.repos.DepartmentRepository, e.logger)
					n, err := seed.SeedDepartments(ctx, departments, &appModels.Actor{UserID: actor.ID, IsStaff: actor.IsStaff}, e.logger)
					fmt.Fprintf(c.App.Writer, "%d departments created\n", n)
					return err
				}),
			},
			{
				Name:  "purge-blacklist",
				Usage: "delete expired entries from the postgres token blacklist",
				Action: withEnv(func(ctx context.Context, e *env, c *cli.Context) error {
					n, err := e.repos.TokenBlacklistRepository.PurgeExpired(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d expired entries removed\n", n)
					return nil
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
