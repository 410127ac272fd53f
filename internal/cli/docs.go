package cli

import (
        "fmt"
        "strings"

        "academy-cli/internal/docs"
        "academy-cli/internal/format"

        "github.com/charmbracelet/glamour"
        "github.com/spf13/cobra"
)

type docsTopic struct {
        Topic    string `json:"topic"`
        Markdown string `json:"markdown"`
}

type topicTable []string

func (topicTable) TableHeader() []string { return []string{"TOPIC"} }

func (t topicTable) TableRows() [][]string {
        rows := make([][]string, 0, len(t))
        for _, topic := range t {
                rows = append(rows, []string{topic})
        }
        return rows
}

func newDocsCmd(app *App) *cobra.Command {
        var raw bool

        cmd := &cobra.Command{
                Use:   "docs [topic]",
                Short: "Show help topics: controls, entrance, content, config",
                Args:  cobra.MaximumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        if len(args) == 0 {
                                return writeOut(cmd, app, topicTable(docs.Topics()), nil, "academy docs <topic>")
                        }

                        topic := args[0]
                        body, ok := docs.Get(topic)
                        if !ok {
                                return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (available: %s)", topic, strings.Join(docs.Topics(), ", ")))
                        }

                        if raw {
                                _, err := fmt.Fprint(cmd.OutOrStdout(), body)
                                return err
                        }
                        if app.Format == format.Table {
                                out, err := glamour.Render(body, "dark")
                                if err != nil {
                                        out = body
                                }
                                _, err = fmt.Fprint(cmd.OutOrStdout(), out)
                                return err
                        }
                        return writeOut(cmd, app, docsTopic{Topic: strings.ToLower(strings.TrimSpace(topic)), Markdown: body}, nil)
                },
        }

        cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
        return cmd
}
