package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"eventhub/config"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	"eventhub/internal/domain"
	"eventhub/internal/services"
	"eventhub/internal/storage"
)

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.shutdown(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

// app holds everything the subcommands share. The services are built once the store is open.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *storage.Store

	users          domain.UserService
	events         domain.EventService
	participations domain.ParticipationService
	notifications  domain.NotificationService

	metrics     *metricsServer
	metricsDump io.Writer
}

func (a *app) wire() {
	timeout := a.cfg.OperationTimeout
	a.users = services.NewUserService(a.store, auth.NewBcryptHasher(bcrypt.DefaultCost), timeout)
	a.events = services.NewEventService(a.store, time.Now, timeout)
	a.participations = services.NewParticipationService(a.store, timeout)
	a.notifications = services.NewNotificationService(a.store,
		email.NewMailer(a.cfg.Email, a.logger), email.NewTemplateRenderer(), time.Now, timeout, a.logger)
}

// shutdown runs after every command, including failed ones.
func (a *app) shutdown(ctx context.Context) {
	if a.metricsDump != nil {
		if err := writeMetrics(defaultGatherer, a.metricsDump); err != nil && a.logger != nil {
			a.logger.Warn("metrics dump failed", "error", err)
		}
	}
	if a.metrics != nil {
		a.metrics.stop(ctx)
	}
	if a.store != nil {
		if err := a.store.Close(ctx); err != nil {
			a.logger.Warn("storage close failed", "error", err)
		}
	}
}

func newRootCmd(a *app) *cobra.Command {
	var (
		provider    string
		metricsAddr string
		dumpMetrics bool
	)

	root := &cobra.Command{
		Use:          "eventhub",
		Short:        "Event, participation and notification management over PostgreSQL or MongoDB",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if provider != "" {
				if cfg.StorageProvider, err = config.NormalizeProvider(provider); err != nil {
					return err
				}
			}
			a.cfg = cfg
			a.logger = config.NewLogger()
			if err := storage.RegisterMetrics(nil); err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}
			if dumpMetrics {
				a.metricsDump = cmd.ErrOrStderr()
			}
			if metricsAddr != "" {
				if a.metrics, err = startMetricsServer(metricsAddr, a.logger); err != nil {
					return err
				}
			}
			if a.store, err = storage.Open(cmd.Context(), cfg, a.logger); err != nil {
				return err
			}
			a.wire()
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&provider, "provider", "", "Storage provider: postgresql|mongodb (env STORAGE_PROVIDER)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
	flags.BoolVar(&dumpMetrics, "metrics-dump", false, "Write Prometheus metrics to stderr when the command finishes")

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create tables (PostgreSQL) or indexes (MongoDB)",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.Migrate(cmd.Context()); err != nil {
					return err
				}
				a.logger.Info("migration complete", "provider", a.store.Provider())
				return nil
			},
		},
		&cobra.Command{
			Use:   "ping",
			Short: "Check that the storage backend is reachable",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.Ping(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			},
		},
		&cobra.Command{
			Use:   "tx-probe",
			Short: "Begin a unit of work and report whether it is atomic, then roll back",
			RunE: func(cmd *cobra.Command, args []string) error {
				return reportBeginOutcome(cmd.Context(), a.store, a.store.Provider(), a.cfg.OperationTimeout, cmd.OutOrStdout())
			},
		},
		newUserCmd(a),
		newEventCmd(a),
		newParticipationCmd(a),
		newNotificationCmd(a),
	)
	return root
}

func reportBeginOutcome(ctx context.Context, store domain.Store, provider string, timeout time.Duration, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	uow := store.NewScope().UnitOfWork
	defer uow.Release(context.WithoutCancel(ctx))

	outcome, err := uow.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", provider, outcome)
	return uow.Rollback(ctx)
}
