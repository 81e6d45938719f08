package rbac

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// RoleSeed describes a role and its grants as declared in the seed file.
type RoleSeed struct {
	Name        string       `yaml:"name"`
	DisplayName string       `yaml:"display_name"`
	Permissions []Permission `yaml:"permissions"`
}

// UnmarshalYAML validates permission components while decoding so a typo in
// the seed file fails startup instead of silently granting nothing.
func (p *Permission) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Action string `yaml:"action"`
		Entity string `yaml:"entity"`
		Access string `yaml:"access"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Access == "" {
		raw.Access = string(AccessAny)
	}

	action, err := ParseAction(raw.Action)
	if err != nil {
		return err
	}
	entity, err := ParseEntity(raw.Entity)
	if err != nil {
		return err
	}
	access, err := ParseAccess(raw.Access)
	if err != nil {
		return err
	}

	p.Action = action
	p.Entity = entity
	p.Access = access
	return nil
}

// ParseSeed decodes the YAML role definitions applied at startup.
// The seed must contain an admin role; the last-admin invariant is
// meaningless without one.
func ParseSeed(r io.Reader) ([]RoleSeed, error) {
	var doc struct {
		Roles []RoleSeed `yaml:"roles"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("rbac: failed to parse seed: %w", err)
	}
	if len(doc.Roles) == 0 {
		return nil, errors.New("rbac: seed contains no roles")
	}

	hasAdmin := false
	for _, role := range doc.Roles {
		if role.Name == "" {
			return nil, errors.New("rbac: seed role with empty name")
		}
		if role.Name == RoleAdmin {
			hasAdmin = true
		}
	}
	if !hasAdmin {
		return nil, errors.New("rbac: seed must define the admin role")
	}

	return doc.Roles, nil
}
