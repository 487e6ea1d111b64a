package shared

// BaseAggregateRoot extends BaseEntity with an optimistic lock counter and a
// buffer of domain events recorded by state transitions. Events stay buffered
// until the owning service drains them after a successful save.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot returns a root at version 1 with a fresh identity.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// IncrementVersion bumps the optimistic lock counter. Every mutating
// transition does this so a stale writer fails at save time instead of
// silently overwriting a concurrent update.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent records an event produced by a state transition.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// DrainDomainEvents returns the buffered events and resets the buffer.
func (a *BaseAggregateRoot) DrainDomainEvents() []DomainEvent {
	events := a.domainEvents
	a.domainEvents = nil
	return events
}
