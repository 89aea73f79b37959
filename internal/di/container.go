package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/antispam-admin/internal/adapters/httpapi"
	"github.com/mikey/antispam-admin/internal/adapters/store"
	"github.com/mikey/antispam-admin/internal/config"
	"github.com/mikey/antispam-admin/internal/core"
	"github.com/mikey/antispam-admin/internal/factory"
	"github.com/mikey/antispam-admin/internal/logging"
	"github.com/mikey/antispam-admin/internal/ports"
	"github.com/mikey/antispam-admin/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register store and its per-entity views
	if err := container.Provide(func(f *factory.StoreFactory) (store.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(st store.Store) core.MessageStore {
		return st.Messages()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(st store.Store) core.CallStore {
		return st.Calls()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(st store.Store) core.SenderStore {
		return st.Senders()
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register core services
	if err := container.Provide(core.NewAnalyticsService); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewSenderService); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewClassificationService); err != nil {
		return nil, err
	}

	// Register admin server
	if err := container.Provide(func(
		cfg *config.Config,
		analytics *core.AnalyticsService,
		senders *core.SenderService,
		classification *core.ClassificationService,
		logger *zap.Logger,
	) (ports.AdminServer, error) {
		serverCfg := cfg.GetServer()
		shutdownTimeout, err := cfg.GetDuration("server.shutdown_timeout")
		if err != nil {
			return nil, err
		}
		return httpapi.NewServer(
			serverCfg.ListenAddress,
			serverCfg.CORSAllowOrigins,
			shutdownTimeout,
			analytics,
			senders,
			classification,
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
