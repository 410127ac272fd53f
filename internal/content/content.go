// Package content loads the read-only records the client presents: factions, characters,
// map locations and webtoon episodes.
//
// The records ship embedded in the binary. A TOML file with the same layout can replace
// them (`--content`). Record order is presentation order and is preserved.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"academy-cli/internal/model"
)

//go:embed content.toml
var embedded []byte

// Kind names a record collection.
type Kind string

const (
	KindCharacter Kind = "characters"
	KindLocation  Kind = "locations"
	KindFaction   Kind = "factions"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "character", "characters", "char", "chars":
		return KindCharacter, nil
	case "location", "locations", "loc", "map":
		return KindLocation, nil
	case "faction", "factions", "world":
		return KindFaction, nil
	default:
		return "", fmt.Errorf("unknown kind %q (expected characters, locations or factions)", s)
	}
}

type Site struct {
	Title       string `json:"title" toml:"title"`
	Subtitle    string `json:"subtitle,omitempty" toml:"subtitle"`
	Tagline     string `json:"tagline,omitempty" toml:"tagline"`
	AudioSource string `json:"audioSource,omitempty" toml:"audio_source"`
}

type Content struct {
	Site       Site              `toml:"site"`
	Factions   []model.Faction   `toml:"factions"`
	Characters []model.Character `toml:"characters"`
	Locations  []model.Location  `toml:"locations"`
	Episodes   []model.Episode   `toml:"episodes"`
}

// RecordError reports a record missing a required field.
type RecordError struct {
	Kind  Kind
	Index int
	ID    string
	Field string
}

func (e *RecordError) Error() string {
	ref := fmt.Sprintf("%s[%d]", e.Kind, e.Index)
	if e.ID != "" {
		ref += fmt.Sprintf(" (%s)", e.ID)
	}
	return fmt.Sprintf("content: %s: %s", ref, e.Field)
}

var defaultContent = sync.OnceValues(func() (*Content, error) {
	return Parse(embedded)
})

// Default returns the embedded records. Callers must not modify the result.
func Default() (*Content, error) {
	return defaultContent()
}

// Load reads records from path, or returns the embedded ones when path is empty.
func Load(path string) (*Content, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Content, error) {
	var c Content
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse content: %s", strict.String())
		}
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Content) validate() error {
	seen := map[Kind]map[string]bool{}
	check := func(kind Kind, i int, id, name, category, categoryField string) error {
		id = strings.TrimSpace(id)
		switch {
		case id == "":
			return &RecordError{Kind: kind, Index: i, Field: "missing id"}
		case strings.TrimSpace(name) == "":
			return &RecordError{Kind: kind, Index: i, ID: id, Field: "missing name"}
		case strings.TrimSpace(category) == "":
			return &RecordError{Kind: kind, Index: i, ID: id, Field: "missing " + categoryField}
		}
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if seen[kind][id] {
			return &RecordError{Kind: kind, Index: i, ID: id, Field: "duplicate id"}
		}
		seen[kind][id] = true
		return nil
	}

	for i, f := range c.Factions {
		if err := check(KindFaction, i, f.ID, f.Name, f.Alignment, "alignment"); err != nil {
			return err
		}
	}
	for i, ch := range c.Characters {
		if err := check(KindCharacter, i, ch.ID, ch.Name, ch.Affiliation, "affiliation"); err != nil {
			return err
		}
	}
	for i, l := range c.Locations {
		if err := check(KindLocation, i, l.ID, l.Name, string(l.Type), "type"); err != nil {
			return err
		}
		if !l.Type.Valid() {
			return &RecordError{Kind: KindLocation, Index: i, ID: l.ID, Field: fmt.Sprintf("invalid type %q", l.Type)}
		}
		if l.X < 0 || l.X > 100 || l.Y < 0 || l.Y > 100 {
			return &RecordError{Kind: KindLocation, Index: i, ID: l.ID, Field: "coordinates outside 0..100"}
		}
	}
	for i, ep := range c.Episodes {
		if strings.TrimSpace(ep.ImageURL) == "" {
			return &RecordError{Kind: "episodes", Index: i, Field: "missing image_url"}
		}
	}
	return nil
}

func (c *Content) Character(id string) (model.Character, bool) {
	for _, ch := range c.Characters {
		if strings.EqualFold(ch.ID, id) {
			return ch, true
		}
	}
	return model.Character{}, false
}

func (c *Content) Location(id string) (model.Location, bool) {
	for _, l := range c.Locations {
		if strings.EqualFold(l.ID, id) {
			return l, true
		}
	}
	return model.Location{}, false
}

func (c *Content) Faction(id string) (model.Faction, bool) {
	for _, f := range c.Factions {
		if strings.EqualFold(f.ID, id) {
			return f, true
		}
	}
	return model.Faction{}, false
}

// Lookup finds id across collections, characters first.
// Ids are unique within a kind only, so "academy" resolves to the location before the faction
// is considered; use the kind-specific getters to disambiguate.
func (c *Content) Lookup(id string) (Kind, any, bool) {
	if ch, ok := c.Character(id); ok {
		return KindCharacter, ch, true
	}
	if l, ok := c.Location(id); ok {
		return KindLocation, l, true
	}
	if f, ok := c.Faction(id); ok {
		return KindFaction, f, true
	}
	return "", nil, false
}
