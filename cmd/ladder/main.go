package main

import (
	"context"
	"fmt"
	"github.com/lukasz-zimnoch/ladder"
	"github.com/lukasz-zimnoch/ladder/bybit"
	"github.com/lukasz-zimnoch/ladder/daemon"
	"github.com/lukasz-zimnoch/ladder/inmem"
	"github.com/lukasz-zimnoch/ladder/logrus"
	"github.com/lukasz-zimnoch/ladder/mail"
	"github.com/lukasz-zimnoch/ladder/postgres"
	"github.com/lukasz-zimnoch/ladder/pubsub"
	"github.com/lukasz-zimnoch/ladder/uuid"
	"os"
	"os/signal"
	"syscall"
)

const inmemJournalWindowSize = 1000

func main() {
	ctx, cancelCtx := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancelCtx()

	config, err := readConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "could not read config: [%v]\n", err)
		os.Exit(1)
	}

	logger, err := logrus.ConfigureStandardLogger(
		config.Logging.Format,
		config.Logging.Level,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "could not configure logger: [%v]\n", err)
		os.Exit(1)
	}

	exchangeService, err := bybit.NewExchangeService(&bybit.Config{
		ApiKey:         config.Bybit.ApiKey,
		SecretKey:      config.Bybit.SecretKey,
		RecvWindow:     config.Bybit.RecvWindow,
		Category:       bybit.CategoryLinear,
		KlineURL:       config.Bybit.KlineURL,
		BatchOrderURL:  config.Bybit.BatchOrderURL,
		BatchCancelURL: config.Bybit.BatchCancelURL,
		InstrumentsURL: config.Bybit.InstrumentsURL,
	})
	if err != nil {
		logger.Fatalf("could not create bybit handle: [%v]", err)
	}

	precisionRepository := inmem.NewPrecisionRepository(
		ladder.DefaultPrecisions(),
	)

	if config.Bybit.SyncInstruments {
		if err := syncInstruments(
			ctx,
			logger,
			exchangeService,
			precisionRepository,
			config.Bybit.Symbols,
		); err != nil {
			if fatal(err) {
				logger.Fatalf("could not sync instruments: [%v]", err)
			}

			logger.Warningf(
				"could not sync instruments; using built-in precision: [%v]",
				err,
			)
		}
	}

	journal, err := createOrderJournal(ctx, logger, &config.Database)
	if err != nil {
		logger.Fatalf("could not create order journal: [%v]", err)
	}

	eventServices, closeEventServices, err := createEventServices(
		ctx,
		logger,
		config,
	)
	if err != nil {
		logger.Fatalf("could not create event services: [%v]", err)
	}
	defer closeEventServices()

	holdingPeriod, cooldown, err := config.Schedule.durations()
	if err != nil {
		logger.Fatalf("could not read schedule: [%v]", err)
	}

	cycleRunner := ladder.NewCycleRunner(
		logger,
		exchangeService,
		config.Bybit.Symbols,
		ladder.NewPositionCalculator(precisionRepository),
		&uuid.IDService{},
		journal,
		eventServices,
	)

	logger.Infof(
		"running scheduler for symbols [%v]; holding period [%v], cooldown [%v]",
		config.Bybit.Symbols,
		holdingPeriod,
		cooldown,
	)

	scheduler := daemon.RunScheduler(
		ctx,
		logger,
		cycleRunner,
		holdingPeriod,
		cooldown,
	)

	<-scheduler.Done()
}

// fatal reports whether a startup error should stop the process. Errors
// without a kind are treated as fatal.
func fatal(err error) bool {
	kind, ok := ladder.KindOf(err)
	return !ok || kind.Fatal()
}

// syncInstruments replaces built-in precision with exchange metadata.
func syncInstruments(
	ctx context.Context,
	logger ladder.Logger,
	exchangeService ladder.ExchangeInstrumentService,
	precisionRepository ladder.PrecisionRepository,
	symbols []string,
) error {
	instruments, err := exchangeService.Instruments(ctx, symbols...)
	if err != nil {
		return err
	}

	synced := ladder.SyncPrecisions(logger, precisionRepository, instruments)

	logger.Infof(
		"synced precision for [%v] out of [%v] symbols",
		synced,
		len(symbols),
	)

	return nil
}

func createOrderJournal(
	ctx context.Context,
	logger ladder.Logger,
	config *Database,
) (ladder.OrderJournal, error) {
	if len(config.Address) == 0 {
		logger.Infof("database not configured; journaling orders in memory")
		return inmem.NewOrderJournal(inmemJournalWindowSize), nil
	}

	if err := postgres.RunMigration(
		logger,
		(*postgres.Config)(config),
	); err != nil {
		return nil, fmt.Errorf(
			"could not run postgres migration: [%v]",
			err,
		)
	}

	client, err := postgres.NewClient(
		ctx,
		logger,
		(*postgres.Config)(config),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not create postgres client: [%v]",
			err,
		)
	}

	return postgres.NewOrderJournal(client), nil
}

func createEventServices(
	ctx context.Context,
	logger ladder.Logger,
	config *Config,
) (ladder.EventServices, func(), error) {
	eventServices := make(ladder.EventServices, 0)
	closers := make([]func(), 0)

	if len(config.Mail.Host) > 0 && len(config.Mail.Recipient) > 0 {
		logger.Infof("mail notifications enabled")

		mailService := mail.NewEventService((*mail.Config)(&config.Mail), logger)

		closers = append(closers, mailService.Wait)
		eventServices = append(eventServices, mailService)
	}

	if len(config.PubSub.ProjectID) > 0 {
		logger.Infof("pubsub notifications enabled")

		client, err := pubsub.NewClient(
			ctx,
			config.PubSub.ProjectID,
			config.PubSub.NotificationsTopicID,
		)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"could not create pubsub client: [%v]",
				err,
			)
		}

		pubsubService := pubsub.NewEventService(client, logger)

		closers = append(closers, func() {
			pubsubService.Wait()

			if err := client.Close(); err != nil {
				logger.Warningf("could not close pubsub client: [%v]", err)
			}
		})
		eventServices = append(eventServices, pubsubService)
	}

	// Waits for in-flight notifications, including those raised while
	// shutting down.
	closeAll := func() {
		for _, closer := range closers {
			closer()
		}
	}

	return eventServices, closeAll, nil
}
