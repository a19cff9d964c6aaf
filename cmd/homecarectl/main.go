// Command homecarectl runs schema migrations, seeds reference data and
// provisions accounts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/homecare/visit-api/internal/config"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository/postgres"
	authService "github.com/homecare/visit-api/internal/service/auth"
	packageService "github.com/homecare/visit-api/internal/service/servicepackage"
	"github.com/homecare/visit-api/migrations"
	"github.com/homecare/visit-api/pkg/auth"
	"github.com/homecare/visit-api/pkg/cache"
	"github.com/homecare/visit-api/pkg/messaging/redis"
	"github.com/homecare/visit-api/pkg/security"
)

type app struct {
	configFile string
	cfg        *config.Config
	db         *sqlx.DB
	log        *zap.SugaredLogger
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	a := &app{log: logger.Sugar()}

	rootCmd := &cobra.Command{
		Use:           "homecarectl",
		Short:         "Home care visit backend administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.connect(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				a.db.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml")

	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.seedCmd())
	rootCmd.AddCommand(a.userCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		a.log.Errorw("command failed", "error", err)
		os.Exit(1)
	}
}

func (a *app) connect(ctx context.Context) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := postgres.NewDB(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.cfg = cfg
	a.db = db
	return nil
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := migrations.NewMigrator(a.db).Up(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Infow("migrations applied", "count", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := migrations.NewMigrator(a.db)
			all, err := m.Load()
			if err != nil {
				return err
			}
			applied, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			at := make(map[int]time.Time, len(applied))
			for _, ap := range applied {
				at[ap.Version] = ap.AppliedAt
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
			for _, mig := range all {
				state := "pending"
				if t, ok := at[mig.Version]; ok {
					state = t.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%03d\t%s\t%s\n", mig.Version, mig.Name, state)
			}
			return w.Flush()
		},
	})

	return cmd
}

// Standard visit types offered by every deployment.
var defaultServiceTypes = []struct {
	name     string
	desc     string
	duration int
	price    float64
}{
	{"基础健康监测", "血压、血糖、体温等基础指标测量", 60, 200},
	{"综合健康评估", "全面体检与健康风险评估", 90, 350},
	{"康复训练指导", "术后及慢病康复训练指导", 120, 400},
}

func (a *app) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "packages",
		Short: "Upsert the service package tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Clearing the shared cache keeps running API replicas consistent.
			var rdb *goredis.Client
			if a.cfg.Redis.URL != "" {
				client, err := redis.NewClient(ctx, redis.Config{URL: a.cfg.Redis.URL})
				if err != nil {
					a.log.Warnw("redis unavailable, package cache not invalidated", "error", err)
				} else {
					defer client.Close()
					rdb = client
				}
			}
			c := cache.New(cache.Config{TTL: a.cfg.Cache.TTL}, rdb, nil)

			svc := packageService.NewService(postgres.NewTransactor(a.db),
				postgres.NewServicePackageRepository(a.db), c, a.cfg.Cache.TTL)
			n, err := svc.Seed(ctx)
			if err != nil {
				return err
			}
			a.log.Infow("service packages seeded", "count", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "service-types",
		Short: "Upsert the standard visit service types",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := postgres.NewServiceTypeRepository(a.db)
			now := time.Now()
			for _, d := range defaultServiceTypes {
				desc, duration, price := d.desc, d.duration, d.price
				st := &model.ServiceType{
					ID:              uuid.New(),
					Name:            d.name,
					Description:     &desc,
					DefaultDuration: &duration,
					BasePrice:       &price,
					IsActive:        true,
					CreatedAt:       now,
				}
				if err := repo.UpsertByName(cmd.Context(), st); err != nil {
					return err
				}
				a.log.Infow("service type upserted", "name", st.Name, "id", st.ID)
			}
			return nil
		},
	})

	return cmd
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var req model.CreateUserRequest
	var role, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = model.Role(role)
			if email != "" {
				req.Email = &email
			}

			tokens := auth.NewTokenManager(auth.Config{
				Secret:        a.cfg.JWT.Secret,
				RefreshSecret: a.cfg.JWT.RefreshSecret,
				AccessTTL:     a.cfg.JWT.AccessTTL,
				RefreshTTL:    a.cfg.JWT.RefreshTTL,
				Issuer:        "visit-api",
			})
			svc := authService.NewService(postgres.NewTransactor(a.db), postgres.NewUserRepository(a.db),
				tokens, security.NewBcryptHasher(bcrypt.DefaultCost))

			user, err := svc.CreateUser(cmd.Context(), &req)
			if err != nil {
				return err
			}
			a.log.Infow("user created", "id", user.ID, "username", user.Username, "role", user.Role)
			return nil
		},
	}
	f := create.Flags()
	f.StringVar(&req.Username, "username", "", "login name")
	f.StringVar(&req.Phone, "phone", "", "mobile number, also usable as login")
	f.StringVar(&req.Name, "name", "", "display name")
	f.StringVar(&req.Password, "password", "", "initial password")
	f.StringVar(&req.EmployeeID, "employee-id", "", "recorder employee id")
	f.StringVar(&role, "role", string(model.RoleRecorder), "recorder, doctor or admin")
	f.StringVar(&email, "email", "", "notification address")
	for _, name := range []string{"username", "phone", "name", "password"} {
		_ = create.MarkFlagRequired(name)
	}

	cmd.AddCommand(create)
	return cmd
}
