package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"booking-reconciliation-backend/internal/config"
	"booking-reconciliation-backend/internal/logger"
	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/routes"
	"booking-reconciliation-backend/internal/services/matching"

	"github.com/bxcodec/faker/v3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	a := &app{cfg: cfg, log: log}

	cmdApp := cli.NewApp()
	cmdApp.Name = "booking-reconciliation"
	cmdApp.Usage = "match bank transfer notifications to pending bookings"
	cmdApp.Action = a.serve
	cmdApp.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "run the HTTP API",
			Action: a.serve,
		},
		{
			Name:   "db:migrate",
			Usage:  "create or update tables",
			Action: a.migrate,
		},
		{
			Name:  "db:seed",
			Usage: "insert fake pending bookings",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "count", Value: 20},
			},
			Action: a.seed,
		},
		{
			Name:  "reconcile",
			Usage: "run one notification through the pipeline",
			Flags: []cli.Flag{
				cli.Int64Flag{Name: "amount"},
				cli.StringFlag{Name: "description"},
				cli.StringFlag{Name: "transaction-id"},
			},
			Action: a.reconcile,
		},
		{
			Name:  "side-effects:retry",
			Usage: "re-run failed calendar and subscription side effects",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "limit", Value: 100},
			},
			Action: a.retrySideEffects,
		},
	}

	if err := cmdApp.Run(os.Args); err != nil {
		log.Fatal("command failed", zap.Error(err))
	}
}

func (a *app) openDB() error {
	if a.db != nil {
		return nil
	}
	db, err := config.InitDB(a.cfg.DB, a.log)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

func (a *app) migrate(c *cli.Context) error {
	if err := a.openDB(); err != nil {
		return err
	}
	if err := a.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.log.Info("database migrated")
	return nil
}

func (a *app) serve(c *cli.Context) error {
	if err := a.migrate(c); err != nil {
		return err
	}

	svc, err := routes.BuildService(a.cfg, a.db, a.log)
	if err != nil {
		return err
	}

	if a.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(a.log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, svc, a.log)

	a.log.Info("listening", zap.String("port", a.cfg.App.Port),
		zap.String("booking_store", a.cfg.BookingStore.Backend))
	return r.Run(":" + a.cfg.App.Port)
}

var seedServices = []string{"tarot", "astrology", "career", "numerology"}

func (a *app) seed(c *cli.Context) error {
	if err := a.migrate(c); err != nil {
		return err
	}

	svc, err := routes.BuildService(a.cfg, a.db, a.log)
	if err != nil {
		return err
	}

	count := c.Int("count")
	for i := 0; i < count; i++ {
		amount := int64(99+rand.Intn(400)) * 1000
		b := &models.Booking{
			ClientName:     faker.Name(),
			ClientEmail:    strings.ToLower(faker.Email()),
			ClientPhone:    faker.Phonenumber(),
			ServiceType:    seedServices[rand.Intn(len(seedServices))],
			RecordedAmount: amount,
			BookingDate:    time.Now().AddDate(0, 0, rand.Intn(30)).Truncate(24 * time.Hour),
			BonusDays:      30,
		}
		if err := svc.CreateBooking(context.Background(), b); err != nil {
			return err
		}
		a.log.Info("seeded booking",
			zap.String("id", b.ID.String()),
			zap.String("client_name", b.ClientName),
			zap.String("memo", "TUVAN "+matching.NormalizeName(b.ClientName)),
			zap.Int64("amount", b.RecordedAmount),
		)
	}
	return nil
}

func (a *app) reconcile(c *cli.Context) error {
	if err := a.migrate(c); err != nil {
		return err
	}
	svc, err := routes.BuildService(a.cfg, a.db, a.log)
	if err != nil {
		return err
	}

	txID := c.String("transaction-id")
	if txID == "" {
		txID = fmt.Sprintf("cli-%d", time.Now().UnixNano())
	}

	res, err := svc.HandleNotification(context.Background(), matching.Notification{
		TransactionID:  txID,
		RawDescription: c.String("description"),
		Amount:         c.Int64("amount"),
		Timestamp:      time.Now(),
	}, nil)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func (a *app) retrySideEffects(c *cli.Context) error {
	if err := a.migrate(c); err != nil {
		return err
	}
	svc, err := routes.BuildService(a.cfg, a.db, a.log)
	if err != nil {
		return err
	}

	outcomes, err := svc.RetrySideEffects(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}
	failed := 0
	for _, o := range outcomes {
		if o.Result.Failed() {
			failed++
		}
	}
	a.log.Info("side effects retried", zap.Int("runs", len(outcomes)), zap.Int("still_failing", failed))
	return nil
}
