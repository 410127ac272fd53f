package cli

import (
        "errors"
        "fmt"
        "strings"

        "academy-cli/internal/catalog"
        "academy-cli/internal/content"

        "github.com/spf13/cobra"
)

func kindAliases(k content.Kind) []string {
        switch k {
        case content.KindCharacter:
                return []string{"character", "chars", "registry"}
        case content.KindLocation:
                return []string{"location", "map"}
        default:
                return []string{"faction", "world"}
        }
}

func newRecordsCmd(app *App, kind content.Kind) *cobra.Command {
        cmd := &cobra.Command{
                Use:     string(kind),
                Aliases: kindAliases(kind),
                Short:   "Browse " + string(kind),
        }
        cmd.AddCommand(newRecordsListCmd(app, kind))
        return cmd
}

func newRecordsListCmd(app *App, kind content.Kind) *cobra.Command {
        var category string
        var query string

        cmd := &cobra.Command{
                Use:   "list",
                Short: "List " + string(kind) + " (optionally filtered by category and name)",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        c, err := app.content()
                        if err != nil {
                                return writeErr(cmd, err)
                        }

                        var data any
                        var total int
                        switch kind {
                        case content.KindCharacter:
                                items, err := filterRecords(c.Characters, category, query)
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                data, total = characterTable(items), len(c.Characters)
                        case content.KindLocation:
                                items, err := filterRecords(c.Locations, category, query)
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                data, total = locationTable(items), len(c.Locations)
                        default:
                                items, err := filterRecords(c.Factions, category, query)
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                data, total = factionTable(items), len(c.Factions)
                        }

                        return writeOut(cmd, app, data, map[string]any{
                                "kind":     string(kind),
                                "category": orAll(category),
                                "query":    query,
                                "total":    total,
                        }, "academy show <id>", "academy categories "+string(kind))
                },
        }

        cmd.Flags().StringVarP(&category, "category", "c", "", "Only records in this category (see `academy categories`)")
        cmd.Flags().StringVarP(&query, "search", "s", "", "Fuzzy match on the display name")
        return cmd
}

func orAll(category string) string {
        if strings.TrimSpace(category) == "" {
                return catalog.AllCategory
        }
        return category
}

// filterRecords applies a category filter then a name search, the same way the TUI
// registry does. Category names match case-insensitively.
func filterRecords[T catalog.Item](items []T, category, query string) ([]T, error) {
        b := catalog.NewBrowser(items, 1)
        if category = strings.TrimSpace(category); category != "" {
                for _, c := range b.Categories() {
                        if strings.EqualFold(c, category) {
                                category = c
                                break
                        }
                }
                if err := b.SetFilter(category); err != nil {
                        if errors.Is(err, catalog.ErrUnknownCategory) {
                                return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(b.Categories(), ", "))
                        }
                        return nil, err
                }
        }
        return catalog.Search(b.Visible(), query), nil
}

func newCategoriesCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:       "categories <characters|locations|factions>",
                Short:     "List the filter categories of a record kind",
                Args:      cobra.ExactArgs(1),
                ValidArgs: []string{string(content.KindCharacter), string(content.KindLocation), string(content.KindFaction)},
                RunE: func(cmd *cobra.Command, args []string) error {
                        kind, err := content.ParseKind(args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        c, err := app.content()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        var cats []string
                        switch kind {
                        case content.KindCharacter:
                                cats = catalog.Categories(c.Characters)
                        case content.KindLocation:
                                cats = catalog.Categories(c.Locations)
                        default:
                                cats = catalog.Categories(c.Factions)
                        }
                        return writeOut(cmd, app, categoryTable(cats), map[string]any{"kind": string(kind)})
                },
        }
}
