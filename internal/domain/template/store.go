package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Candidate carries the user-supplied values for an add or update.
type Candidate struct {
	Name      string
	Columns   []string
	ForUpload bool
}

// Store holds templates in memory. Locked defaults are seeded at construction
// and can only be forked, never mutated or deleted.
type Store struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*Template
	order     []uuid.UUID
}

// NewStore creates a store seeded with the locked default templates for both
// partitions.
func NewStore() *Store {
	s := &Store{templates: make(map[uuid.UUID]*Template)}
	for _, tpl := range defaultTemplates() {
		t := tpl
		s.templates[t.ID] = &t
		s.order = append(s.order, t.ID)
	}
	return s
}

func defaultTemplates() []Template {
	return []Template{
		{
			ID:        uuid.New(),
			Name:      "Standard invoice",
			Columns:   []string{"name", "quantity", "price"},
			IsDefault: true,
			ForUpload: true,
		},
		{
			ID:        uuid.New(),
			Name:      "Detailed invoice",
			Columns:   []string{"name", "quantity", "price", "vat", "discount"},
			IsDefault: true,
			ForUpload: true,
		},
		{
			ID:        uuid.New(),
			Name:      "Standard export",
			Columns:   []string{"name", "quantity", "price"},
			IsDefault: true,
			ForUpload: false,
		},
	}
}

// List returns all templates in insertion order.
func (s *Store) List() []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Template, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.templates[id])
	}
	return out
}

// ListForUpload returns the templates of one ForUpload partition, in order.
func (s *Store) ListForUpload(forUpload bool) []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Template
	for _, id := range s.order {
		if tpl := s.templates[id]; tpl.ForUpload == forUpload {
			out = append(out, *tpl)
		}
	}
	return out
}

// Get returns a template by id.
func (s *Store) Get(id uuid.UUID) (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[id]
	if !ok {
		return Template{}, false
	}
	return *tpl, true
}

// Add validates and stores a new custom template. A fresh id is assigned and
// IsDefault is always false.
func (s *Store) Add(c Candidate) (Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(c)
}

func (s *Store) addLocked(c Candidate) (Template, error) {
	if err := s.validateLocked(c, uuid.Nil); err != nil {
		return Template{}, err
	}
	tpl := &Template{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(c.Name),
		Columns:   append([]string(nil), c.Columns...),
		IsDefault: false,
		ForUpload: c.ForUpload,
	}
	s.templates[tpl.ID] = tpl
	s.order = append(s.order, tpl.ID)
	return *tpl, nil
}

// Update edits a template. Editing a locked default with changed values forks
// it into a new custom template and leaves the original untouched; identical
// values are reported as ErrNothingChanged. Non-default templates mutate in
// place after re-checking uniqueness against everything but themselves.
func (s *Store) Update(id uuid.UUID, c Candidate) (Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.templates[id]
	if !ok {
		return Template{}, ErrNotFound
	}

	name := strings.TrimSpace(c.Name)
	if existing.IsDefault {
		if name == existing.Name && sameColumns(c.Columns, existing.Columns) && c.ForUpload == existing.ForUpload {
			return *existing, ErrNothingChanged
		}
		// Fork-on-write: the default keeps its identity, the edit becomes a
		// new custom template. A columns-only edit keeps the default's name,
		// which would collide with the default itself, so the fork gets a
		// derived copy name instead.
		if strings.EqualFold(name, existing.Name) {
			c.Name = s.copyNameLocked(name, c.ForUpload)
		}
		return s.addLocked(c)
	}

	if err := s.validateLocked(c, id); err != nil {
		return Template{}, err
	}
	existing.Name = name
	existing.Columns = append([]string(nil), c.Columns...)
	existing.ForUpload = c.ForUpload
	return *existing, nil
}

// Remove deletes a custom template. Defaults are protected.
func (s *Store) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, ok := s.templates[id]
	if !ok {
		return ErrNotFound
	}
	if tpl.IsDefault {
		return &ProtectedEntityError{Name: tpl.Name}
	}
	delete(s.templates, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// copyNameLocked derives the first free "<base> (copy)" name within a
// ForUpload partition, counting up from "(copy 2)" on further forks.
func (s *Store) copyNameLocked(base string, forUpload bool) string {
	taken := func(name string) bool {
		for _, tpl := range s.templates {
			if tpl.ForUpload == forUpload && strings.EqualFold(tpl.Name, name) {
				return true
			}
		}
		return false
	}
	name := base + " (copy)"
	for i := 2; taken(name); i++ {
		name = fmt.Sprintf("%s (copy %d)", base, i)
	}
	return name
}

// validateLocked enforces the candidate invariants. exclude skips one id when
// re-checking uniqueness for an in-place update.
func (s *Store) validateLocked(c Candidate, exclude uuid.UUID) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "must not be blank"}
	}
	if len(c.Columns) == 0 {
		return &ValidationError{Field: "columns", Message: "must not be empty"}
	}
	lower := strings.ToLower(name)
	for id, tpl := range s.templates {
		if id == exclude {
			continue
		}
		if tpl.ForUpload == c.ForUpload && strings.ToLower(tpl.Name) == lower {
			return &ValidationError{Field: "name", Message: "a template with this name already exists"}
		}
	}
	return nil
}
