package skill

import (
	"errors"
	"fmt"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/model"
)

// Registry resolves skill IDs to behaviors. One registry per session,
// built from a catalog and passed to every consumer.
type Registry struct {
	catalog *data.Catalog
	skills  map[int32]Skill
}

// NewRegistry instantiates a behavior for every catalog skill.
// Unknown behaviors are reported as *data.ConfigError.
func NewRegistry(catalog *data.Catalog) (*Registry, error) {
	r := &Registry{
		catalog: catalog,
		skills:  make(map[int32]Skill),
	}

	var errs []error
	for _, def := range catalog.Skills() {
		s, err := CreateSkill(def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.skills[def.ID] = s
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Get returns the skill by ID.
func (r *Registry) Get(id int32) (Skill, bool) {
	s, ok := r.skills[id]
	return s, ok
}

// Catalog returns the catalog the registry was built from.
func (r *Registry) Catalog() *data.Catalog {
	return r.catalog
}

// Kit returns the class template and its skill kit.
// An unknown class or a kit referencing an unregistered skill is a
// configuration error: the actor must not be initialized.
func (r *Registry) Kit(class string) (*data.ClassKit, model.Kit, error) {
	ck, ok := r.catalog.Class(class)
	if !ok {
		return nil, model.Kit{}, &data.ConfigError{Class: class, Field: "class", Reason: "unknown class"}
	}

	kit := model.Kit{BasicAttack: ck.BasicAttack, Skills: append([]int32(nil), ck.Skills...)}
	for _, id := range kit.All() {
		if _, ok := r.skills[id]; !ok {
			return nil, model.Kit{}, &data.ConfigError{Class: class, SkillID: id, Field: "skills", Reason: "skill not registered"}
		}
	}
	return ck, kit, nil
}

// Describe returns descriptions of the kit's skills in kit order.
func (r *Registry) Describe(kit model.Kit) ([]Description, error) {
	out := make([]Description, 0, len(kit.Skills)+1)
	for _, id := range kit.All() {
		s, ok := r.skills[id]
		if !ok {
			return nil, fmt.Errorf("skill %d: %w", id, ErrUnknownSkill)
		}
		out = append(out, s.Describe())
	}
	return out, nil
}
