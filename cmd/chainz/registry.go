package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/zoobzio/chainz"
	"github.com/zoobzio/chainz/config"
	"github.com/zoobzio/chainz/service"
	"github.com/zoobzio/chainz/service/inmem"
	"github.com/zoobzio/chainz/sink"
	"github.com/zoobzio/chainz/store"
)

// Scenario is one runnable demonstration.
type Scenario struct {
	Run         func(ctx context.Context, env *Env) error
	Name        string
	Description string
}

// Env is what every scenario runs against.
type Env struct {
	Out         io.Writer
	Config      *config.Config
	Svc         *inmem.Service
	Fluent      *service.Fluent
	Log         zerolog.Logger
	// Collections caches query results for the scenarios that use Cache.
	Collections *store.Store[service.EntityCollection]
	// Pace is the Delay before each record in the loop scenarios.
	Pace        time.Duration
}

func newEnv(cfg *config.Config, out io.Writer, pace time.Duration) *Env {
	svc := inmem.New()

	result := service.NewEntity("contact")
	result.Set("firstname", "result")
	svc.Seed(result)

	collections := store.New[service.EntityCollection](cfg.Cache.TTL)
	cfg.StartJanitors(collections)

	return &Env{
		Out:         out,
		Config:      cfg,
		Svc:         svc,
		Fluent:      service.NewFluent(svc).WithSettings(cfg.Settings()),
		Log:         sink.NewZerolog(cfg.LogOptions(), out),
		Collections: collections,
		Pace:        pace,
	}
}

// Close stops the background work started by newEnv.
func (e *Env) Close() error {
	return e.Collections.Close()
}

// Info is the Sink used for Log and HowLong messages.
func (e *Env) Info() chainz.Sink {
	return sink.Zerolog(e.Log, zerolog.InfoLevel)
}

// Errors is the ErrorHandler used by retries and traps.
func (e *Env) Errors() chainz.ErrorHandler {
	return sink.ZerologError(e.Log)
}

func scenarioByName(name string) (Scenario, bool) {
	for _, s := range scenarios() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
