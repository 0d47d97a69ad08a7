package services

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/platform/config"
)

// noopNotifier drops every event. It is the default until a dispatcher is wired.
type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, domain.LedgerEvent) {}

// ContainerOption customizes NewServiceContainer.
type ContainerOption func(*containerOptions)

type containerOptions struct {
	notifier portssvc.Notifier
}

// WithNotifier publishes committed ledger events through n.
func WithNotifier(n portssvc.Notifier) ContainerOption {
	return func(o *containerOptions) {
		o.notifier = n
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ContainerOption) *portssvc.ServiceContainer {
	opts := containerOptions{notifier: noopNotifier{}}
	for _, option := range options {
		option(&opts)
	}

	container := &portssvc.ServiceContainer{Notifier: opts.notifier}

	// Account service first; the ledger resolves transfer destinations through it.
	container.Account = NewAccountService(repos.AccountRepo, repos.UserRepo)
	container.User = NewUserService(repos, WithUserNotifier(opts.notifier))
	container.Ledger = NewLedgerService(repos, container.Account, WithLedgerNotifier(opts.notifier))
	container.Card = NewCardService(repos, WithCardNotifier(opts.notifier))
	container.Reporting = NewReportingService(repos, WithReportingCalendar(cfg.Timezone, cfg.WeekStart))
	container.TokenService = NewTokenService(cfg)

	return container
}
