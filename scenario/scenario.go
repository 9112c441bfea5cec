// Package scenario holds the static game templates: map graph, regions,
// bonus tables, nations, and starting ownership. Templates are immutable
// configuration; game creation copies them into session records and never
// writes back.
package scenario

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios/*.yaml
var builtins embed.FS

// Template is one scenario definition as decoded from YAML.
type Template struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	StartDate   time.Time `yaml:"startDate"`
	DaysPerTurn int       `yaml:"daysPerTurn"`
	// SetupTroops is the total initial allotment per participant, starting
	// garrisons included.
	SetupTroops    int            `yaml:"setupTroops"`
	Nations        []Nation       `yaml:"nations"`
	Regions        map[string]int `yaml:"regions"` // region name -> full-hold bonus
	SpecialBonuses []SpecialBonus `yaml:"specialBonuses"`
	Territories    []TerritoryDef `yaml:"territories"`
}

// Nation is a playable side.
type Nation struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// TerritoryDef is one map node with its starting garrison.
type TerritoryDef struct {
	Name     string   `yaml:"name"`
	Region   string   `yaml:"region"`
	Nation   string   `yaml:"nation"`
	Troops   int      `yaml:"troops"`
	Adjacent []string `yaml:"adjacent"`
}

// SpecialBonus is a named multi-territory reinforcement combo.
type SpecialBonus struct {
	Name        string   `yaml:"name"`
	Territories []string `yaml:"territories"`
	Bonus       int      `yaml:"bonus"`
}

// Parse decodes a YAML template, mirrors adjacency so borders are symmetric
// regardless of which side declared them, and validates the result.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	t.mirrorAdjacency()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// mirrorAdjacency makes every declared border bidirectional.
func (t *Template) mirrorAdjacency() {
	byName := map[string]*TerritoryDef{}
	for i := range t.Territories {
		byName[t.Territories[i].Name] = &t.Territories[i]
	}
	for i := range t.Territories {
		from := &t.Territories[i]
		for _, name := range from.Adjacent {
			to, ok := byName[name]
			if !ok {
				continue // caught by Validate
			}
			if !containsString(to.Adjacent, from.Name) {
				to.Adjacent = append(to.Adjacent, from.Name)
			}
		}
	}
	for i := range t.Territories {
		sort.Strings(t.Territories[i].Adjacent)
	}
}

// Validate checks internal consistency: unique territory names, known
// regions and nations, resolvable adjacency, and sane troop numbers.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("scenario has no id")
	}
	if len(t.Nations) < 2 {
		return fmt.Errorf("scenario %s: needs at least 2 nations, has %d", t.ID, len(t.Nations))
	}
	if t.SetupTroops < 1 {
		return fmt.Errorf("scenario %s: setupTroops must be positive", t.ID)
	}
	if t.DaysPerTurn < 1 {
		return fmt.Errorf("scenario %s: daysPerTurn must be positive", t.ID)
	}

	nations := map[string]bool{}
	for _, n := range t.Nations {
		if nations[n.Name] {
			return fmt.Errorf("scenario %s: duplicate nation %q", t.ID, n.Name)
		}
		nations[n.Name] = true
	}

	names := map[string]bool{}
	for _, td := range t.Territories {
		if names[td.Name] {
			return fmt.Errorf("scenario %s: duplicate territory %q", t.ID, td.Name)
		}
		names[td.Name] = true
	}
	for _, td := range t.Territories {
		if _, ok := t.Regions[td.Region]; !ok {
			return fmt.Errorf("scenario %s: territory %q has unknown region %q", t.ID, td.Name, td.Region)
		}
		if td.Nation != "" && !nations[td.Nation] {
			return fmt.Errorf("scenario %s: territory %q starts under unknown nation %q", t.ID, td.Name, td.Nation)
		}
		if td.Troops < 1 {
			return fmt.Errorf("scenario %s: territory %q needs a starting garrison", t.ID, td.Name)
		}
		if len(td.Adjacent) == 0 {
			return fmt.Errorf("scenario %s: territory %q is unreachable", t.ID, td.Name)
		}
		for _, adj := range td.Adjacent {
			if adj == td.Name {
				return fmt.Errorf("scenario %s: territory %q borders itself", t.ID, td.Name)
			}
			if !names[adj] {
				return fmt.Errorf("scenario %s: territory %q borders unknown %q", t.ID, td.Name, adj)
			}
		}
	}

	for _, sb := range t.SpecialBonuses {
		for _, name := range sb.Territories {
			if !names[name] {
				return fmt.Errorf("scenario %s: special bonus %q references unknown territory %q", t.ID, sb.Name, name)
			}
		}
	}
	return nil
}

// Nation returns the named nation definition, or nil.
func (t *Template) Nation(name string) *Nation {
	for i := range t.Nations {
		if t.Nations[i].Name == name {
			return &t.Nations[i]
		}
	}
	return nil
}

// Builtin loads an embedded scenario by id.
func Builtin(id string) (*Template, error) {
	data, err := builtins.ReadFile("scenarios/" + id + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown scenario %q", id)
	}
	return Parse(data)
}

// BuiltinIDs lists the embedded scenario ids.
func BuiltinIDs() []string {
	entries, err := builtins.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(ids)
	return ids
}

func containsString(slice []string, item string) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
