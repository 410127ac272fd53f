package cli

import (
        "strconv"

        "academy-cli/internal/catalog"
        "academy-cli/internal/model"
)

// Table layouts for --format table. JSON and EDN output marshal the underlying slices.

type characterTable []model.Character

func (characterTable) TableHeader() []string {
        return []string{"ID", "NAME", "AFFILIATION", "ROLE", "ABILITY"}
}

func (t characterTable) TableRows() [][]string {
        rows := make([][]string, 0, len(t))
        for _, c := range t {
                rows = append(rows, []string{
                        c.ID,
                        c.Name,
                        model.Or(c.Affiliation, model.NotAvailable),
                        model.Or(c.Role, model.NotAvailable),
                        model.Or(c.Ability, model.NotAvailable),
                })
        }
        return rows
}

type locationTable []model.Location

func (locationTable) TableHeader() []string {
        return []string{"ID", "NAME", "LOCAL NAME", "TYPE", "X", "Y"}
}

func (t locationTable) TableRows() [][]string {
        rows := make([][]string, 0, len(t))
        for _, l := range t {
                rows = append(rows, []string{
                        l.ID,
                        l.Name,
                        model.Or(l.KorName, model.NotAvailable),
                        string(l.Type),
                        strconv.FormatFloat(l.X, 'f', -1, 64),
                        strconv.FormatFloat(l.Y, 'f', -1, 64),
                })
        }
        return rows
}

type factionTable []model.Faction

func (factionTable) TableHeader() []string {
        return []string{"ID", "NAME", "ALIGNMENT", "LEADER"}
}

func (t factionTable) TableRows() [][]string {
        rows := make([][]string, 0, len(t))
        for _, f := range t {
                rows = append(rows, []string{f.ID, f.Name, f.Alignment, model.Or(f.Leader, model.Unknown)})
        }
        return rows
}

type categoryTable []string

func (categoryTable) TableHeader() []string { return []string{"#", "CATEGORY"} }

func (t categoryTable) TableRows() [][]string {
        rows := make([][]string, 0, len(t))
        for i, c := range t {
                rows = append(rows, []string{strconv.Itoa(i), c})
        }
        return rows
}

// detailView is one record with its display attributes and, for records with pictures,
// the resolved image.
type detailView struct {
        Kind       string            `json:"kind"`
        Record     any               `json:"record"`
        Attributes []model.Attribute `json:"attributes"`
        Image      *imageView        `json:"image,omitempty"`
}

type imageView struct {
        URL      string `json:"url"`
        Variant  int    `json:"variant"`
        Variants int    `json:"variants"`
        // Shown is what a viewer displays: URL, or the placeholder when the check failed.
        Shown   string `json:"shown"`
        Checked bool   `json:"checked"`
        Error   string `json:"error,omitempty"`
}

func (detailView) TableHeader() []string { return []string{"FIELD", "VALUE"} }

func (d detailView) TableRows() [][]string {
        rows := [][]string{{"Kind", d.Kind}}
        if it, ok := d.Record.(catalog.Item); ok {
                rows = append(rows, []string{"ID", it.ItemID()}, []string{"Name", it.DisplayName()})
        }
        for _, a := range d.Attributes {
                rows = append(rows, []string{a.Label, a.Value})
        }
        if d.Image != nil {
                rows = append(rows,
                        []string{"Image", d.Image.Shown},
                        []string{"File", strconv.Itoa(d.Image.Variant) + "/" + strconv.Itoa(d.Image.Variants)},
                )
                if d.Image.Error != "" {
                        rows = append(rows, []string{"Image error", d.Image.Error})
                }
        }
        return rows
}
