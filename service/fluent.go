package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"github.com/zoobzio/chainz"
)

// Fluent wraps an OrganizationService so that each call returns an
// undecorated chain instead of running immediately. Nothing touches the
// service until Do is called on the returned chain, and every Do calls it
// again:
//
//	id, err := fluent.Create(contact).
//		RetryEvery(10*time.Second, 3).
//		Log(sink, "About to start creation", "Creation Completed").
//		Do(ctx)
type Fluent struct {
	service  OrganizationService
	clock    clockz.Clock
	settings *chainz.Settings
	mu       sync.RWMutex
}

// NewFluent wraps service.
func NewFluent(service OrganizationService) *Fluent {
	return &Fluent{service: service}
}

// Service returns the wrapped service for direct calls.
func (f *Fluent) Service() OrganizationService {
	return f.service
}

// WithSettings applies s to every chain created afterwards.
func (f *Fluent) WithSettings(s chainz.Settings) *Fluent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = &s
	return f
}

// WithClock applies clock to every chain created afterwards.
func (f *Fluent) WithClock(clock clockz.Clock) *Fluent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = clock
	return f
}

func configure[T any](f *Fluent, c *chainz.Chain[T]) *chainz.Chain[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.settings != nil {
		c.WithSettings(*f.settings)
	}
	if f.clock != nil {
		c.WithClock(f.clock)
	}
	return c
}

func (f *Fluent) action(work chainz.Action) *chainz.ActionChain {
	a := chainz.NewAction(work)
	configure(f, a.AsChain())
	return a
}

// Create returns a chain that creates entity and yields the new id.
// The entity's attribute map is read each time the chain runs.
func (f *Fluent) Create(entity Entity) *chainz.Chain[uuid.UUID] {
	return configure(f, chainz.New(func(ctx context.Context) (uuid.UUID, error) {
		return f.service.Create(ctx, entity)
	}))
}

// Retrieve returns a chain that loads one record.
func (f *Fluent) Retrieve(entityName string, id uuid.UUID, columns ColumnSet) *chainz.Chain[Entity] {
	return configure(f, chainz.New(func(ctx context.Context) (Entity, error) {
		return f.service.Retrieve(ctx, entityName, id, columns)
	}))
}

// RetrieveMultiple returns a chain that runs query.
func (f *Fluent) RetrieveMultiple(query Query) *chainz.Chain[EntityCollection] {
	return configure(f, chainz.New(func(ctx context.Context) (EntityCollection, error) {
		return f.service.RetrieveMultiple(ctx, query)
	}))
}

// Execute returns a chain that sends request.
func (f *Fluent) Execute(request Request) *chainz.Chain[Response] {
	return configure(f, chainz.New(func(ctx context.Context) (Response, error) {
		return f.service.Execute(ctx, request)
	}))
}

// Update returns a chain that writes entity.
func (f *Fluent) Update(entity Entity) *chainz.ActionChain {
	return f.action(func(ctx context.Context) error {
		return f.service.Update(ctx, entity)
	})
}

// Delete returns a chain that removes a record.
func (f *Fluent) Delete(entityName string, id uuid.UUID) *chainz.ActionChain {
	return f.action(func(ctx context.Context) error {
		return f.service.Delete(ctx, entityName, id)
	})
}

// Associate returns a chain that links related records to a record.
func (f *Fluent) Associate(entityName string, id uuid.UUID, relationship Relationship, related []EntityReference) *chainz.ActionChain {
	return f.action(func(ctx context.Context) error {
		return f.service.Associate(ctx, entityName, id, relationship, related)
	})
}

// Disassociate returns a chain that unlinks related records from a record.
func (f *Fluent) Disassociate(entityName string, id uuid.UUID, relationship Relationship, related []EntityReference) *chainz.ActionChain {
	return f.action(func(ctx context.Context) error {
		return f.service.Disassociate(ctx, entityName, id, relationship, related)
	})
}

// First projects a RetrieveMultiple chain onto its first record. It fails
// with chainz.ErrOutOfRange when the collection is empty.
func First(c *chainz.Chain[EntityCollection]) *chainz.Chain[Entity] {
	return chainz.FirstOf(c, entities)
}

// FirstOrDefault projects a RetrieveMultiple chain onto its first record,
// or the zero Entity when the collection is empty.
func FirstOrDefault(c *chainz.Chain[EntityCollection]) *chainz.Chain[Entity] {
	return chainz.FirstOrDefaultOf(c, entities)
}

func entities(ec EntityCollection) []Entity {
	return ec.Entities
}
