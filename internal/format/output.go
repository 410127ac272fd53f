package format

import (
        "encoding/json"
        "fmt"
        "io"
        "sort"
        "strings"

        "github.com/jedib0t/go-pretty/v6/table"
        "github.com/jedib0t/go-pretty/v6/text"
)

const (
        JSON  = "json"
        EDN   = "edn"
        Table = "table"
)

// Tabular is implemented by payloads that know their table layout.
type Tabular interface {
        TableHeader() []string
        TableRows() [][]string
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - edn
// - table (Tabular payloads as columns, anything else as key/value rows)
func Write(w io.Writer, v any, format string, pretty bool) error {
        switch strings.ToLower(strings.TrimSpace(format)) {
        case "", JSON:
                return WriteJSON(w, v, pretty)
        case EDN:
                return WriteEDN(w, v, pretty)
        case Table:
                return WriteTable(w, v)
        default:
                return fmt.Errorf("unknown format: %s (expected json, edn or table)", format)
        }
}

// WriteJSON writes strict JSON, one document per call.
func WriteJSON(w io.Writer, v any, pretty bool) error {
        var b []byte
        var err error
        if pretty {
                b, err = json.MarshalIndent(v, "", "  ")
        } else {
                b, err = json.Marshal(v)
        }
        if err != nil {
                return err
        }
        _, err = fmt.Fprintln(w, string(b))
        return err
}

func WriteTable(w io.Writer, v any) error {
        var header []string
        var rows [][]string
        if t, ok := v.(Tabular); ok {
                header, rows = t.TableHeader(), t.TableRows()
        } else {
                var err error
                header, rows, err = keyValueRows(v)
                if err != nil {
                        return err
                }
        }
        out := renderTable(header, rows)
        if out == "" {
                return nil
        }
        _, err := fmt.Fprintln(w, out)
        return err
}

func renderTable(header []string, rows [][]string) string {
        cols := len(header)
        if cols == 0 {
                return ""
        }
        tw := table.NewWriter()
        tw.SetStyle(table.StyleRounded)

        hr := make(table.Row, cols)
        for i, h := range header {
                hr[i] = h
        }
        tw.AppendHeader(hr)
        for _, row := range rows {
                r := make(table.Row, cols)
                for i := range r {
                        if i < len(row) {
                                r[i] = row[i]
                        } else {
                                r[i] = ""
                        }
                }
                tw.AppendRow(r)
        }

        cfgs := make([]table.ColumnConfig, 0, cols)
        for i := 0; i < cols; i++ {
                cfgs = append(cfgs, table.ColumnConfig{
                        Number:      i + 1,
                        AlignHeader: text.AlignLeft,
                        WidthMax:    60,
                })
        }
        tw.SetColumnConfigs(cfgs)
        return tw.Render()
}

// keyValueRows flattens v's top-level JSON fields into FIELD/VALUE rows.
func keyValueRows(v any) ([]string, [][]string, error) {
        b, err := json.Marshal(v)
        if err != nil {
                return nil, nil, err
        }
        var m map[string]any
        if err := json.Unmarshal(b, &m); err != nil {
                // Not an object: one cell holding the raw JSON.
                return []string{"VALUE"}, [][]string{{string(b)}}, nil
        }
        keys := make([]string, 0, len(m))
        for k := range m {
                keys = append(keys, k)
        }
        sort.Strings(keys)
        rows := make([][]string, 0, len(keys))
        for _, k := range keys {
                rows = append(rows, []string{k, cell(m[k])})
        }
        return []string{"FIELD", "VALUE"}, rows, nil
}

func cell(v any) string {
        switch t := v.(type) {
        case nil:
                return ""
        case string:
                return t
        case float64, bool:
                return fmt.Sprint(t)
        default:
                b, _ := json.Marshal(t)
                return string(b)
        }
}
