package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"

	"github.com/pixil98/go-presence/internal/console"
	"github.com/pixil98/go-presence/internal/driver"
	"github.com/pixil98/go-presence/internal/listener"
	"github.com/pixil98/go-presence/internal/messaging"
	"github.com/pixil98/go-presence/internal/presence"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the event bus
	bus, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	// Create the presence registry and seed it from zone definitions
	registry := presence.NewRegistry(
		presence.WithPublisher(messaging.NewEventPublisher(bus)),
	)

	specs, err := cfg.Zones.LoadSpecs()
	if err != nil {
		return nil, err
	}
	if err := presence.Bootstrap(registry, specs); err != nil {
		return nil, fmt.Errorf("bootstrapping zones: %w", err)
	}

	// Create the admin console listeners
	cm := listener.NewConnectionManager(console.NewConsole(registry))
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// Setup the tick driver
	tickInterval, err := time.ParseDuration(cfg.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}
	drv := driver.NewDriver(
		[]driver.Manager{registry},
		driver.WithTickLength(tickInterval),
	)

	// Create a worker list
	return service.WorkerList{
		"bus":       bus,
		"driver":    drv,
		"listeners": &listeners,
	}, nil
}
