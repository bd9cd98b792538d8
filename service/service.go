// Package service defines a record-oriented organization service and a
// fluent front end that turns every call into a decorated chain.
//
// The service model is small: entities are named records with an id and a
// bag of attributes, queries select records of one entity by attribute
// equality, and requests are named messages for anything else.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Errors returned by OrganizationService implementations.
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidEntity  = errors.New("entity has no logical name")
	ErrUnknownRequest = errors.New("unknown request")
)

// OrganizationService is the record store a Fluent wraps.
type OrganizationService interface {
	Create(ctx context.Context, entity Entity) (uuid.UUID, error)
	Retrieve(ctx context.Context, entityName string, id uuid.UUID, columns ColumnSet) (Entity, error)
	RetrieveMultiple(ctx context.Context, query Query) (EntityCollection, error)
	Update(ctx context.Context, entity Entity) error
	Delete(ctx context.Context, entityName string, id uuid.UUID) error
	Execute(ctx context.Context, request Request) (Response, error)
	Associate(ctx context.Context, entityName string, id uuid.UUID, relationship Relationship, related []EntityReference) error
	Disassociate(ctx context.Context, entityName string, id uuid.UUID, relationship Relationship, related []EntityReference) error
}

// Attributes holds the named values of an entity.
type Attributes map[string]any

// Entity is a single record.
type Entity struct {
	Attributes  Attributes
	LogicalName string
	ID          uuid.UUID
}

// NewEntity returns an empty entity of the given logical name.
func NewEntity(logicalName string) Entity {
	return Entity{LogicalName: logicalName, Attributes: Attributes{}}
}

// Get returns the attribute value for key, or nil.
func (e Entity) Get(key string) any {
	return e.Attributes[key]
}

// GetString returns the attribute value for key when it is a string.
func (e Entity) GetString(key string) string {
	s, _ := e.Attributes[key].(string) //nolint:errcheck
	return s
}

// Set stores an attribute value.
func (e *Entity) Set(key string, value any) {
	if e.Attributes == nil {
		e.Attributes = Attributes{}
	}
	e.Attributes[key] = value
}

// Clone returns a copy that shares no attribute map with e.
func (e Entity) Clone() Entity {
	out := e
	out.Attributes = make(Attributes, len(e.Attributes))
	for k, v := range e.Attributes {
		out.Attributes[k] = v
	}
	return out
}

// Reference returns a reference to e.
func (e Entity) Reference() EntityReference {
	return EntityReference{LogicalName: e.LogicalName, ID: e.ID}
}

// EntityReference points at a record without carrying its attributes.
type EntityReference struct {
	LogicalName string
	ID          uuid.UUID
}

// EntityCollection is the result of RetrieveMultiple.
type EntityCollection struct {
	EntityName  string
	Entities    []Entity
	MoreRecords bool
}

// Relationship names a link between two entities.
type Relationship struct {
	SchemaName string
}

// ColumnSet selects the attributes a retrieve returns.
type ColumnSet struct {
	Columns    []string
	AllColumns bool
}

// AllColumns selects every attribute.
func AllColumns() ColumnSet {
	return ColumnSet{AllColumns: true}
}

// Columns selects the named attributes.
func Columns(names ...string) ColumnSet {
	return ColumnSet{Columns: names}
}

// Project returns a copy of attrs holding only the selected columns.
func (c ColumnSet) Project(attrs Attributes) Attributes {
	if c.AllColumns {
		out := make(Attributes, len(attrs))
		for k, v := range attrs {
			out[k] = v
		}
		return out
	}
	out := make(Attributes, len(c.Columns))
	for _, name := range c.Columns {
		if v, ok := attrs[name]; ok {
			out[name] = v
		}
	}
	return out
}

// Condition matches records whose attribute equals Value. Value must be
// comparable.
type Condition struct {
	Value     any
	Attribute string
}

// Query selects records of one entity. An empty EntityName matches nothing.
type Query struct {
	EntityName string
	ColumnSet  ColumnSet
	Conditions []Condition
	// TopCount limits the number of records returned when positive.
	TopCount int
}

// Matches reports whether e satisfies every condition of q.
func (q Query) Matches(e Entity) bool {
	if e.LogicalName != q.EntityName {
		return false
	}
	for _, c := range q.Conditions {
		if e.Attributes[c.Attribute] != c.Value {
			return false
		}
	}
	return true
}

// Request is a named message for Execute.
type Request struct {
	Parameters map[string]any
	Name       string
}

// Response is the result of Execute.
type Response struct {
	Results map[string]any
	Name    string
}
