// Package inmem is an in-memory OrganizationService with failure injection.
//
// It keeps records in insertion order per entity, so RetrieveMultiple is
// deterministic, and can be told to fail the next n calls to exercise
// retrying and trapping chains.
package inmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zoobzio/chainz/service"
)

// WhoAmI is the request name answered without a registered handler.
const WhoAmI = "WhoAmI"

// Handler answers an Execute request.
type Handler func(ctx context.Context, request service.Request) (service.Response, error)

type link struct {
	from         service.EntityReference
	relationship string
	to           service.EntityReference
}

// Service is a thread-safe in-memory OrganizationService.
type Service struct {
	records  map[string]map[uuid.UUID]service.Entity
	order    map[string][]uuid.UUID
	handlers map[string]Handler
	links    []link
	failErr  error
	userID   uuid.UUID
	failNext int
	calls    int
	mu       sync.Mutex
}

var _ service.OrganizationService = (*Service)(nil)

// New returns an empty service.
func New() *Service {
	return &Service{
		records:  make(map[string]map[uuid.UUID]service.Entity),
		order:    make(map[string][]uuid.UUID),
		handlers: make(map[string]Handler),
		userID:   uuid.New(),
	}
}

// FailNext makes the next n calls, of any kind, fail with err.
func (s *Service) FailNext(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
	s.failErr = err
}

// Handle registers the handler for Execute requests named name.
func (s *Service) Handle(name string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = h
}

// Seed stores entities as they are, assigning ids to those without one.
func (s *Service) Seed(entities ...service.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		s.put(e.Clone())
	}
}

// Calls returns the number of service calls made, failed ones included.
func (s *Service) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Count returns the number of stored records of entityName.
func (s *Service) Count(entityName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order[entityName])
}

// Related returns the records linked to a record through relationship.
func (s *Service) Related(entityName string, id uuid.UUID, relationship service.Relationship) []service.EntityReference {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := service.EntityReference{LogicalName: entityName, ID: id}
	var out []service.EntityReference
	for _, l := range s.links {
		if l.from == from && l.relationship == relationship.SchemaName {
			out = append(out, l.to)
		}
	}
	return out
}

// begin counts a call and reports an injected failure. It must be called
// with s.mu held.
func (s *Service) begin(ctx context.Context) error {
	s.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failNext > 0 {
		s.failNext--
		return s.failErr
	}
	return nil
}

func (s *Service) put(e service.Entity) {
	table, ok := s.records[e.LogicalName]
	if !ok {
		table = make(map[uuid.UUID]service.Entity)
		s.records[e.LogicalName] = table
	}
	if _, exists := table[e.ID]; !exists {
		s.order[e.LogicalName] = append(s.order[e.LogicalName], e.ID)
	}
	table[e.ID] = e
}

func notFound(entityName string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", service.ErrNotFound, entityName, id)
}

// Create stores a copy of entity under a new id unless it already has one.
func (s *Service) Create(ctx context.Context, entity service.Entity) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return uuid.Nil, err
	}
	if entity.LogicalName == "" {
		return uuid.Nil, service.ErrInvalidEntity
	}

	e := entity.Clone()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.put(e)
	return e.ID, nil
}

// Retrieve returns a copy of a record limited to columns.
func (s *Service) Retrieve(ctx context.Context, entityName string, id uuid.UUID, columns service.ColumnSet) (service.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return service.Entity{}, err
	}

	e, ok := s.records[entityName][id]
	if !ok {
		return service.Entity{}, notFound(entityName, id)
	}
	e.Attributes = columns.Project(e.Attributes)
	return e, nil
}

// RetrieveMultiple returns matching records in insertion order.
func (s *Service) RetrieveMultiple(ctx context.Context, query service.Query) (service.EntityCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := service.EntityCollection{EntityName: query.EntityName}
	if err := s.begin(ctx); err != nil {
		return result, err
	}

	table := s.records[query.EntityName]
	for _, id := range s.order[query.EntityName] {
		e := table[id]
		if !query.Matches(e) {
			continue
		}
		if query.TopCount > 0 && len(result.Entities) == query.TopCount {
			result.MoreRecords = true
			break
		}
		e.Attributes = query.ColumnSet.Project(e.Attributes)
		result.Entities = append(result.Entities, e)
	}
	return result, nil
}

// Update merges the attributes of entity into the stored record.
func (s *Service) Update(ctx context.Context, entity service.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}
	if entity.LogicalName == "" {
		return service.ErrInvalidEntity
	}

	stored, ok := s.records[entity.LogicalName][entity.ID]
	if !ok {
		return notFound(entity.LogicalName, entity.ID)
	}
	stored = stored.Clone()
	for k, v := range entity.Attributes {
		stored.Attributes[k] = v
	}
	s.put(stored)
	return nil
}

// Delete removes a record and every link touching it.
func (s *Service) Delete(ctx context.Context, entityName string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	if _, ok := s.records[entityName][id]; !ok {
		return notFound(entityName, id)
	}
	delete(s.records[entityName], id)

	ids := s.order[entityName]
	for i, existing := range ids {
		if existing == id {
			s.order[entityName] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}

	ref := service.EntityReference{LogicalName: entityName, ID: id}
	kept := s.links[:0]
	for _, l := range s.links {
		if l.from != ref && l.to != ref {
			kept = append(kept, l)
		}
	}
	s.links = kept
	return nil
}

// Execute answers WhoAmI itself and dispatches other requests to handlers.
func (s *Service) Execute(ctx context.Context, request service.Request) (service.Response, error) {
	s.mu.Lock()
	if err := s.begin(ctx); err != nil {
		s.mu.Unlock()
		return service.Response{}, err
	}
	h, ok := s.handlers[request.Name]
	userID := s.userID
	s.mu.Unlock()

	if ok {
		return h(ctx, request)
	}
	if request.Name == WhoAmI {
		return service.Response{
			Name:    WhoAmI,
			Results: map[string]any{"UserId": userID},
		}, nil
	}
	return service.Response{}, fmt.Errorf("%w: %s", service.ErrUnknownRequest, request.Name)
}

// Associate links related records to a record. Both ends must exist.
func (s *Service) Associate(ctx context.Context, entityName string, id uuid.UUID, relationship service.Relationship, related []service.EntityReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.exists(entityName, id, related); err != nil {
		return err
	}

	from := service.EntityReference{LogicalName: entityName, ID: id}
	for _, to := range related {
		l := link{from: from, relationship: relationship.SchemaName, to: to}
		if !s.linked(l) {
			s.links = append(s.links, l)
		}
	}
	return nil
}

// Disassociate removes links between a record and related records.
func (s *Service) Disassociate(ctx context.Context, entityName string, id uuid.UUID, relationship service.Relationship, related []service.EntityReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.exists(entityName, id, related); err != nil {
		return err
	}

	from := service.EntityReference{LogicalName: entityName, ID: id}
	drop := make(map[link]bool, len(related))
	for _, to := range related {
		drop[link{from: from, relationship: relationship.SchemaName, to: to}] = true
	}
	kept := s.links[:0]
	for _, l := range s.links {
		if !drop[l] {
			kept = append(kept, l)
		}
	}
	s.links = kept
	return nil
}

func (s *Service) exists(entityName string, id uuid.UUID, related []service.EntityReference) error {
	if _, ok := s.records[entityName][id]; !ok {
		return notFound(entityName, id)
	}
	for _, r := range related {
		if _, ok := s.records[r.LogicalName][r.ID]; !ok {
			return notFound(r.LogicalName, r.ID)
		}
	}
	return nil
}

func (s *Service) linked(l link) bool {
	for _, existing := range s.links {
		if existing == l {
			return true
		}
	}
	return false
}
