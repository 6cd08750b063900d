package actor

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownMaterial  = errors.New("unknown material")
	ErrUndefinedContact = errors.New("undefined contact pair")
	ErrInvalidContact   = errors.New("invalid contact properties")
)

// Material is a named physical material. It is immutable once declared.
type Material struct {
	Name    string
	Density float64
}

// ContactPair holds the combined surface response of two materials.
type ContactPair struct {
	MaterialA   string
	MaterialB   string
	Friction    float64 // >= 0
	Restitution float64 // 0 = no rebound, 1 = perfect restitution
}

type contactKey struct {
	a, b string
}

// makeContactKey orders the names so (a, b) and (b, a) share an entry
func makeContactKey(a, b string) contactKey {
	if b < a {
		a, b = b, a
	}

	return contactKey{a: a, b: b}
}

// MaterialTable stores the declared materials and their pairwise contacts.
// Lookups are symmetric. A pair without an entry only resolves when an
// explicit default has been set.
type MaterialTable struct {
	materials map[string]*Material
	contacts  map[contactKey]ContactPair
	fallback  *ContactPair
}

func NewMaterialTable() *MaterialTable {
	return &MaterialTable{
		materials: make(map[string]*Material),
		contacts:  make(map[contactKey]ContactPair),
	}
}

// Declare registers a material, returning the existing one when the name is taken.
func (t *MaterialTable) Declare(name string, density float64) *Material {
	if m, ok := t.materials[name]; ok {
		return m
	}

	m := &Material{Name: name, Density: density}
	t.materials[name] = m

	return m
}

// Get returns a declared material
func (t *MaterialTable) Get(name string) (*Material, error) {
	m, ok := t.materials[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownMaterial)
	}

	return m, nil
}

// Names returns the declared material names in sorted order
func (t *MaterialTable) Names() []string {
	names := make([]string, 0, len(t.materials))
	for name := range t.materials {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func validateContact(friction, restitution float64) error {
	if friction < 0 {
		return fmt.Errorf("friction %v < 0: %w", friction, ErrInvalidContact)
	}
	if restitution < 0 || restitution > 1 {
		return fmt.Errorf("restitution %v outside [0,1]: %w", restitution, ErrInvalidContact)
	}

	return nil
}

// SetContact defines the contact between two declared materials.
func (t *MaterialTable) SetContact(a, b string, friction, restitution float64) error {
	if _, err := t.Get(a); err != nil {
		return err
	}
	if _, err := t.Get(b); err != nil {
		return err
	}
	if err := validateContact(friction, restitution); err != nil {
		return fmt.Errorf("contact %s/%s: %w", a, b, err)
	}

	t.contacts[makeContactKey(a, b)] = ContactPair{
		MaterialA:   a,
		MaterialB:   b,
		Friction:    friction,
		Restitution: restitution,
	}

	return nil
}

// SetDefault installs the explicit fallback used for pairs without an entry.
func (t *MaterialTable) SetDefault(friction, restitution float64) error {
	if err := validateContact(friction, restitution); err != nil {
		return fmt.Errorf("default contact: %w", err)
	}

	t.fallback = &ContactPair{Friction: friction, Restitution: restitution}

	return nil
}

// Lookup returns the contact for two materials, in any argument order.
func (t *MaterialTable) Lookup(a, b *Material) (ContactPair, error) {
	if a == nil || b == nil {
		return ContactPair{}, fmt.Errorf("nil material: %w", ErrUnknownMaterial)
	}

	if pair, ok := t.contacts[makeContactKey(a.Name, b.Name)]; ok {
		return pair, nil
	}

	if t.fallback != nil {
		pair := *t.fallback
		pair.MaterialA, pair.MaterialB = a.Name, b.Name
		return pair, nil
	}

	return ContactPair{}, fmt.Errorf("%s/%s: %w", a.Name, b.Name, ErrUndefinedContact)
}

// Validate checks that every pair of declared materials, including a material
// against itself, resolves to a contact.
func (t *MaterialTable) Validate() error {
	names := t.Names()
	for i, a := range names {
		for _, b := range names[i:] {
			if _, err := t.Lookup(t.materials[a], t.materials[b]); err != nil {
				return err
			}
		}
	}

	return nil
}
