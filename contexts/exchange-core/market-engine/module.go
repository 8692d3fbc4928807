package marketengine

import (
	"log/slog"

	httpadapter "mediex/contexts/exchange-core/market-engine/adapters/http"
	"mediex/contexts/exchange-core/market-engine/adapters/memory"
	"mediex/contexts/exchange-core/market-engine/application"
	"mediex/contexts/exchange-core/market-engine/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Service  application.Service
	Store    *memory.Store
	Registry *memory.Registry
}

type Dependencies struct {
	Bids     ports.BidLedger
	Asks     ports.AskBoard
	Shares   ports.ShareRegistry
	Binding  ports.BindingStore
	Vault    ports.EscrowVault
	Registry ports.MediaRegistry
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Deployer string
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Bids:     deps.Bids,
		Asks:     deps.Asks,
		Shares:   deps.Shares,
		Binding:  deps.Binding,
		Vault:    deps.Vault,
		Registry: deps.Registry,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Deployer: deps.Deployer,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule wires the engine against the in-memory store and
// registry fake, for tests and single-process development.
func NewInMemoryModule(deployer string, logger *slog.Logger) Module {
	store := memory.NewStore()
	registry := memory.NewRegistry()
	module := NewModule(Dependencies{
		Bids:     store,
		Asks:     store,
		Shares:   store,
		Binding:  store,
		Vault:    store,
		Registry: registry,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Deployer: deployer,
		Logger:   logger,
	})
	module.Store = store
	module.Registry = registry
	return module
}
