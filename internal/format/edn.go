package format

import (
        "encoding/json"
        "io"
        "sort"
        "strconv"
        "strings"
        "unicode"
)

// WriteEDN writes v as EDN, going through its JSON encoding so json tags name the keys.
// Keys become kebab-case keywords: "imageUrl" -> :image-url.
func WriteEDN(w io.Writer, v any, pretty bool) error {
        b, err := json.Marshal(v)
        if err != nil {
                return err
        }
        var x any
        if err := json.Unmarshal(b, &x); err != nil {
                return err
        }
        var sb strings.Builder
        ednWriter{sb: &sb, pretty: pretty}.value(x, 0)
        sb.WriteByte('\n')
        _, err = io.WriteString(w, sb.String())
        return err
}

type ednWriter struct {
        sb     *strings.Builder
        pretty bool
}

func (e ednWriter) value(v any, depth int) {
        switch t := v.(type) {
        case nil:
                e.sb.WriteString("nil")
        case bool:
                e.sb.WriteString(strconv.FormatBool(t))
        case string:
                e.sb.WriteString(strconv.Quote(t))
        case float64:
                if t == float64(int64(t)) {
                        e.sb.WriteString(strconv.FormatInt(int64(t), 10))
                } else {
                        e.sb.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
                }
        case []any:
                e.seq('[', ']', len(t), depth, func(i int) { e.value(t[i], depth+1) })
        case map[string]any:
                keys := make([]string, 0, len(t))
                for k := range t {
                        keys = append(keys, k)
                }
                sort.Strings(keys)
                e.seq('{', '}', len(keys), depth, func(i int) {
                        e.sb.WriteString(keyword(keys[i]))
                        e.sb.WriteByte(' ')
                        e.value(t[keys[i]], depth+1)
                })
        }
}

func (e ednWriter) seq(open, close byte, n, depth int, elem func(int)) {
        e.sb.WriteByte(open)
        for i := 0; i < n; i++ {
                switch {
                case e.pretty:
                        e.sb.WriteByte('\n')
                        e.sb.WriteString(strings.Repeat("  ", depth+1))
                case i > 0:
                        e.sb.WriteByte(' ')
                }
                elem(i)
        }
        if e.pretty && n > 0 {
                e.sb.WriteByte('\n')
                e.sb.WriteString(strings.Repeat("  ", depth))
        }
        e.sb.WriteByte(close)
}

func keyword(s string) string {
        var b strings.Builder
        b.WriteByte(':')
        for i, r := range strings.TrimSpace(s) {
                switch {
                case r == ' ' || r == '_':
                        b.WriteByte('-')
                case unicode.IsUpper(r):
                        if i > 0 {
                                b.WriteByte('-')
                        }
                        b.WriteRune(unicode.ToLower(r))
                default:
                        b.WriteRune(r)
                }
        }
        return b.String()
}
