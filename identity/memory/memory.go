// Package memory provides an in-memory identity directory.
// Entries live for the lifetime of the process.
package memory

import (
	"context"
	"sync"

	"github.com/aloks98/securevault/identity"
)

// Directory is a thread-safe in-memory identity.Directory.
type Directory struct {
	byID    map[string]*identity.Record
	byEmail map[string]*identity.Record
	order   []string
	mu      sync.RWMutex
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{
		byID:    make(map[string]*identity.Record),
		byEmail: make(map[string]*identity.Record),
	}
}

// NewSeeded creates a directory holding the demo accounts.
func NewSeeded() *Directory {
	d := New()
	for _, u := range SeedUsers() {
		rec := &identity.Record{User: u}
		d.insert(rec)
	}
	return d
}

// SeedUsers returns the demo accounts, one per role.
func SeedUsers() []identity.User {
	return []identity.User{
		{
			ID:           "1",
			Email:        "admin@securetech.com",
			FirstName:    "Alex",
			LastName:     "Admin",
			Role:         identity.RoleAdmin,
			Organization: "SecureTech Corp",
		},
		{
			ID:           "2",
			Email:        "client@company.com",
			FirstName:    "John",
			LastName:     "Client",
			Role:         identity.RoleClient,
			Organization: "Tech Company Inc",
		},
		{
			ID:           "3",
			Email:        "hacker@securityfirm.com",
			FirstName:    "Sarah",
			LastName:     "Hacker",
			Role:         identity.RoleEthicalHacker,
			Organization: "Security Firm LLC",
		},
	}
}

// FindByEmail implements identity.Directory.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*identity.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.byEmail[email]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return clone(rec), nil
}

// FindByID implements identity.Directory.
func (d *Directory) FindByID(ctx context.Context, id string) (*identity.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.byID[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return clone(rec), nil
}

// Create implements identity.Directory.
func (d *Directory) Create(ctx context.Context, rec *identity.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byEmail[rec.User.Email]; exists {
		return identity.ErrEmailExists
	}
	if _, exists := d.byID[rec.User.ID]; exists {
		return identity.ErrIDExists
	}

	d.insert(clone(rec))
	return nil
}

// List implements identity.Directory.
func (d *Directory) List(ctx context.Context) ([]*identity.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*identity.Record, 0, len(d.order))
	for _, id := range d.order {
		result = append(result, clone(d.byID[id]))
	}
	return result, nil
}

// Len implements identity.Directory.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

// insert must be called with mu held (or before the directory is shared).
func (d *Directory) insert(rec *identity.Record) {
	d.byID[rec.User.ID] = rec
	d.byEmail[rec.User.Email] = rec
	d.order = append(d.order, rec.User.ID)
}

func clone(rec *identity.Record) *identity.Record {
	c := *rec
	return &c
}

var _ identity.Directory = (*Directory)(nil)
