package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborline/portgate/internal/config"
	"github.com/harborline/portgate/internal/db"
	"github.com/harborline/portgate/internal/dispatch"
	"github.com/harborline/portgate/internal/ledger"
	"github.com/harborline/portgate/internal/model"
	"github.com/harborline/portgate/internal/notary"
	"github.com/harborline/portgate/internal/notify"
	"github.com/harborline/portgate/internal/obs"
	"github.com/harborline/portgate/internal/repository"
	"github.com/harborline/portgate/internal/service"
	transport "github.com/harborline/portgate/internal/transport/http"
)

func main() {
	// 1. Config from env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Tracing (no-op unless an OTLP endpoint is configured).
	shutdownTracer := obs.InitTracer("portgate-core", cfg.Env, cfg.OTLPEndpoint)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	// 3. DB via GORM.
	gormDB, err := db.NewGormDB(cfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Repositories.
	portRepo := repository.NewGormPortRepository(gormDB)
	carrierRepo := repository.NewGormCarrierRepository(gormDB)
	slotRepo := repository.NewGormSlotRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	gateRepo := repository.NewGormGateRepository(gormDB)
	truckRepo := repository.NewGormTruckRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	auditRepo := repository.NewGormAuditRepository(gormDB)

	// 5. External capabilities, degraded when unconfigured.
	var notifier notify.Notifier
	if cfg.RabbitURL != "" {
		n, err := notify.NewAMQP(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("init notifier: %v", err)
		}
		notifier = n
	} else {
		log.Println("no RABBIT_URL, using console notifier")
		notifier = notify.NewConsole()
	}
	defer notifier.Close()

	var ntr notary.Notary = notary.Noop{}
	if cfg.NotaryEndpoint != "" {
		ntr = notary.NewHTTP(cfg.NotaryEndpoint, time.Duration(cfg.NotaryTimeoutSec)*time.Second)
	} else {
		log.Println("no NOTARY_ENDPOINT, notarization disabled")
	}

	// 6. Core: ledger, dispatcher, state machine, gate validator.
	led := ledger.New(gormDB)
	disp := dispatch.New(notifier, auditRepo, ntr)
	bookingSvc := service.NewBookingService(gormDB, bookingRepo, slotRepo, gateRepo, truckRepo, led, disp)
	gateSvc := service.NewGateService(bookingRepo, auditRepo, bookingSvc, disp)

	// 7. HTTP API.
	router := transport.NewRouter(
		cfg.JWTSecret,
		transport.NewBookingHandler(bookingSvc, bookingRepo),
		transport.NewGateHandler(gateSvc, slotRepo),
		transport.NewAdminHandler(portRepo, carrierRepo, slotRepo, gateRepo, truckRepo, userRepo, auditRepo),
	)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	log.Printf("portgate core listening on %s", cfg.HTTPAddr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// 8. Graceful shutdown; drain in-flight side effects last.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	disp.Wait()
}
