// Package repositories is the in-memory data layer of the development API.
package repositories

import (
	"sync"

	"github.com/smartsecretaria/secretaria/internal/models"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository     *UserRepository
	TokenRepository    *TokenRepository
	ActivityRepository *ActivityRepository
	Students           *Table[models.Student]
	Teachers           *Table[models.Teacher]
	Classes            *Table[models.Class]
	Subjects           *Table[models.Subject]
	Events             *EventRepository
}

// NewRepositories initializes all repositories
func NewRepositories() *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(),
		TokenRepository:    NewTokenRepository(),
		ActivityRepository: NewActivityRepository(),
		Students:           NewTable("student", func(s *models.Student) *int64 { return &s.ID }),
		Teachers:           NewTable("teacher", func(t *models.Teacher) *int64 { return &t.ID }),
		Classes:            NewTable("class", func(c *models.Class) *int64 { return &c.ID }),
		Subjects:           NewTable("subject", func(s *models.Subject) *int64 { return &s.ID }),
		Events:             &EventRepository{},
	}
}

// EventRepository holds the calendar shown on the dashboard
type EventRepository struct {
	mu     sync.RWMutex
	events []models.UpcomingEvent
}

// Add appends an event with the next id
func (r *EventRepository) Add(e models.UpcomingEvent) models.UpcomingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.events) + 1)
	r.events = append(r.events, e)
	return e
}

// All returns a copy of the events
func (r *EventRepository) All() []models.UpcomingEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.UpcomingEvent, len(r.events))
	copy(out, r.events)
	return out
}
