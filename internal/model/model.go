package model

import "strings"

// Placeholder text for optional descriptive fields that a record leaves empty.
const (
        NotAvailable = "N/A"
        Unknown      = "Unknown"
)

type Character struct {
        ID          string `json:"id" toml:"id"`
        Name        string `json:"name" toml:"name"`
        Affiliation string `json:"affiliation" toml:"affiliation"`

        Role        string `json:"role,omitempty" toml:"role"`
        Ability     string `json:"ability,omitempty" toml:"ability"`
        Hair        string `json:"hair,omitempty" toml:"hair"`
        Eyes        string `json:"eyes,omitempty" toml:"eyes"`
        Outfit      string `json:"outfit,omitempty" toml:"outfit"`
        Personality string `json:"personality,omitempty" toml:"personality"`
        Features    string `json:"features,omitempty" toml:"features"`
}

func (c Character) ItemID() string      { return c.ID }
func (c Character) DisplayName() string { return c.Name }
func (c Character) Category() string    { return c.Affiliation }

// Attributes lists the descriptive fields in display order, empty ones as "N/A".
func (c Character) Attributes() []Attribute {
        return []Attribute{
                {Label: "Affiliation", Value: Or(c.Affiliation, NotAvailable)},
                {Label: "Role", Value: Or(c.Role, Unknown)},
                {Label: "Ability", Value: Or(c.Ability, NotAvailable)},
                {Label: "Hair", Value: Or(c.Hair, NotAvailable)},
                {Label: "Eyes", Value: Or(c.Eyes, NotAvailable)},
                {Label: "Outfit", Value: Or(c.Outfit, NotAvailable)},
                {Label: "Personality", Value: Or(c.Personality, NotAvailable)},
                {Label: "Features", Value: Or(c.Features, NotAvailable)},
        }
}

type LocationType string

const (
        LocationAcademy LocationType = "academy"
        LocationHQ      LocationType = "hq"
        LocationCity    LocationType = "city"
        LocationDanger  LocationType = "danger"
)

func (t LocationType) Valid() bool {
        switch t {
        case LocationAcademy, LocationHQ, LocationCity, LocationDanger:
                return true
        default:
                return false
        }
}

// Location is a pin on the map. X and Y are percentages of the map's width and height.
type Location struct {
        ID          string       `json:"id" toml:"id"`
        Name        string       `json:"name" toml:"name"`
        KorName     string       `json:"korName,omitempty" toml:"kor_name"`
        X           float64      `json:"x" toml:"x"`
        Y           float64      `json:"y" toml:"y"`
        Type        LocationType `json:"type" toml:"type"`
        Description string       `json:"description,omitempty" toml:"description"`
        ImageURL    string       `json:"imageUrl,omitempty" toml:"image_url"`
}

func (l Location) ItemID() string      { return l.ID }
func (l Location) DisplayName() string { return l.Name }
func (l Location) Category() string    { return string(l.Type) }

func (l Location) Attributes() []Attribute {
        return []Attribute{
                {Label: "Type", Value: Or(string(l.Type), NotAvailable)},
                {Label: "Local name", Value: Or(l.KorName, NotAvailable)},
                {Label: "Description", Value: Or(l.Description, NotAvailable)},
        }
}

type Faction struct {
        ID        string `json:"id" toml:"id"`
        Name      string `json:"name" toml:"name"`
        Alignment string `json:"alignment" toml:"alignment"`
        Leader    string `json:"leader,omitempty" toml:"leader"`
        Summary   string `json:"summary,omitempty" toml:"summary"`

        // Lore is markdown.
        Lore string `json:"lore,omitempty" toml:"lore"`
}

func (f Faction) ItemID() string      { return f.ID }
func (f Faction) DisplayName() string { return f.Name }
func (f Faction) Category() string    { return f.Alignment }

func (f Faction) Attributes() []Attribute {
        return []Attribute{
                {Label: "Alignment", Value: Or(f.Alignment, NotAvailable)},
                {Label: "Leader", Value: Or(f.Leader, NotAvailable)},
                {Label: "Summary", Value: Or(f.Summary, NotAvailable)},
        }
}

// Episode is one webtoon page.
type Episode struct {
        Number   int    `json:"number" toml:"number"`
        Title    string `json:"title,omitempty" toml:"title"`
        ImageURL string `json:"imageUrl" toml:"image_url"`
}

type Attribute struct {
        Label string `json:"label"`
        Value string `json:"value"`
}

// Or returns s, or fallback when s is blank.
func Or(s, fallback string) string {
        if strings.TrimSpace(s) == "" {
                return fallback
        }
        return s
}
