package agent

import (
	"fmt"
	"sync"

	"github.com/crmkit/automation/action"
	"github.com/crmkit/automation/analytics"
	"github.com/crmkit/automation/config"
	"github.com/crmkit/automation/dispatcher"
	"github.com/crmkit/automation/engine"
	"github.com/crmkit/automation/metadata"
	"github.com/crmkit/automation/persistence"
	"github.com/crmkit/automation/persistence/inmem"
	rd "github.com/crmkit/automation/persistence/redis"
	"github.com/crmkit/automation/rest"
)

// Agent wires the automation core together: storage, metadata service,
// engine, resume executor, dispatcher and the http facade.
type Agent struct {
	Config          config.Config
	services        action.Services
	storage         persistence.Storage
	metadataService *metadata.Service
	collector       analytics.WorkflowDataCollector
	engine          *engine.Engine
	resumeExecutor  *engine.ResumeExecutor
	dispatcher      *dispatcher.Dispatcher
	httpServer      *rest.Server
	shutdown        bool
	shutdownLock    sync.Mutex
	wg              sync.WaitGroup
}

func New(conf config.Config, services action.Services) (*Agent, error) {
	a := &Agent{
		Config:   conf,
		services: services,
	}
	setup := []func() error{
		a.setupStorage,
		a.setupCollector,
		a.setupMetadataService,
		a.setupEngine,
		a.setupDispatcher,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.storage = rd.NewRedisStorage(rd.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		})
	case config.STORAGE_TYPE_INMEM:
		a.storage = inmem.NewStorage()
	default:
		return fmt.Errorf("unknown storage type %s", a.Config.StorageType)
	}
	return nil
}

func (a *Agent) setupCollector() error {
	if len(a.Config.AnalyticsFile) == 0 {
		a.collector = analytics.NewNoopCollector()
		return nil
	}
	collector, err := analytics.NewLogFileDataCollector(a.Config.AnalyticsFile)
	if err != nil {
		return err
	}
	a.collector = collector
	return nil
}

func (a *Agent) setupMetadataService() error {
	a.metadataService = metadata.NewService(a.storage.Workflows())
	return nil
}

func (a *Agent) setupEngine() error {
	registry := action.DefaultRegistry(a.services)
	a.engine = engine.NewEngine(a.storage, registry, a.collector)
	a.resumeExecutor = engine.NewResumeExecutor(a.engine, a.storage, a.Config.ResumePollSeconds, &a.wg)
	return nil
}

func (a *Agent) setupDispatcher() error {
	a.dispatcher = dispatcher.NewDispatcher(a.metadataService, a.storage, a.engine, a.Config.DispatcherCapacity, &a.wg)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.metadataService, a.dispatcher, a.storage)
	return err
}

func (a *Agent) Dispatcher() *dispatcher.Dispatcher {
	return a.dispatcher
}

func (a *Agent) Start() error {
	a.dispatcher.Start()
	if err := a.resumeExecutor.Start(); err != nil {
		return err
	}
	go func() {
		if err := a.httpServer.Start(); err != nil {
			_ = a.Shutdown()
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	shutdown := []func() error{
		a.httpServer.Stop,
		a.resumeExecutor.Stop,
		func() error {
			a.dispatcher.Stop()
			return nil
		},
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	a.wg.Wait()
	return nil
}
