package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/integrityops/vessel-compliance/internal/calculation"
	"github.com/integrityops/vessel-compliance/internal/calculation/calculators"
	"github.com/integrityops/vessel-compliance/internal/config"
	"github.com/integrityops/vessel-compliance/internal/events"
	"github.com/integrityops/vessel-compliance/internal/service"
	"github.com/integrityops/vessel-compliance/internal/store"
	"github.com/integrityops/vessel-compliance/pkg/log"
)

const gracefulShutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the compliance calculation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting compliance calculation service")
		defer zap.S().Info("Compliance calculation service stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := s.InitialMigration(); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		registry := newRegistry()
		zap.S().Infof("registered calculators: %v", registry.Types())

		producer := newEventProducer(cfg)
		defer func() { _ = producer.Close() }()

		calculationService := service.NewCalculationService(s, registry,
			service.WithEventProducer(producer),
			service.WithComputeTimeout(cfg.Service.CalculationTimeout),
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		recovered, err := calculationService.RecoverInterrupted(ctx)
		if err != nil {
			zap.S().Fatalw("recovering interrupted calculations", "error", err)
		}
		if recovered > 0 {
			zap.S().Infof("recovered %d interrupted calculations", recovered)
		}

		go func() {
			defer cancel()
			if err := serveMetrics(ctx, cfg.Service.MetricsAddress); err != nil {
				zap.S().Fatalw("running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newRegistry() *calculation.Registry {
	registry := calculation.NewRegistry()
	registry.Register(calculators.NewB313())
	registry.Register(calculators.NewAPI579())
	registry.Register(calculators.NewVIIIDiv1())
	return registry
}

func newEventProducer(cfg *config.Config) *events.EventProducer {
	opts := []events.ProducerOptions{}
	if cfg.Service.Kafka.Topic != "" {
		opts = append(opts, events.WithOutputTopic(cfg.Service.Kafka.Topic))
	}

	if len(cfg.Service.Kafka.Brokers) == 0 {
		return events.NewEventProducer(&events.StdoutWriter{}, opts...)
	}

	saramaCfg := cfg.Service.Kafka.SaramaConfig
	if saramaCfg == nil {
		saramaCfg = sarama.NewConfig()
		saramaCfg.Producer.Return.Successes = true
		if cfg.Service.Kafka.Version != (sarama.KafkaVersion{}) {
			saramaCfg.Version = cfg.Service.Kafka.Version
		}
		if cfg.Service.Kafka.ClientID != "" {
			saramaCfg.ClientID = cfg.Service.Kafka.ClientID
		}
	}

	writer, err := events.NewKafkaWriter(cfg.Service.Kafka.Brokers, saramaCfg)
	if err != nil {
		zap.S().Fatalw("creating kafka writer", "error", err, "brokers", cfg.Service.Kafka.Brokers)
	}
	return events.NewEventProducer(writer, opts...)
}

func serveMetrics(ctx context.Context, bindAddress string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    bindAddress,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		_ = server.Shutdown(shutdownCtx)
		zap.S().Named("metrics_server").Info("metrics server terminated")
	}()

	zap.S().Named("metrics_server").Infof("serving metrics: %s", bindAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
