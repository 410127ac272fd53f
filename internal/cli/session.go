package cli

import (
        "context"
        "fmt"

        "academy-cli/internal/session"

        "github.com/spf13/cobra"
)

type sessionStatus struct {
        SessionID string            `json:"sessionId"`
        TTLHours  float64           `json:"ttlHours"`
        Visited   bool              `json:"visitedEntrance"`
        Entries   map[string]string `json:"entries"`
}

func newSessionCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "session",
                Short: "Inspect or reset this browsing session's stored values",
        }
        cmd.AddCommand(newSessionStatusCmd(app))
        cmd.AddCommand(newSessionClearCmd(app))
        return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
        if ctx := cmd.Context(); ctx != nil {
                return ctx
        }
        return context.Background()
}

func newSessionStatusCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "status",
                Short: "Show the session id and its stored values",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        ctx := cmdContext(cmd)
                        _, sess, err := app.openSession(ctx)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        entries, err := sess.Entries(ctx)
                        if err != nil {
                                return writeErr(cmd, fmt.Errorf("read session: %w", err))
                        }
                        visited, err := session.Flag(ctx, sess, session.FlagVisitedEntrance)
                        if err != nil {
                                return writeErr(cmd, fmt.Errorf("read session: %w", err))
                        }
                        return writeOut(cmd, app, sessionStatus{
                                SessionID: sess.SessionID,
                                TTLHours:  sess.TTL.Hours(),
                                Visited:   visited,
                                Entries:   entries,
                        }, nil, "academy session clear")
                },
        }
}

func newSessionClearCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "clear",
                Short: "Forget this session's values (the entrance reveal plays again)",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        ctx := cmdContext(cmd)
                        _, sess, err := app.openSession(ctx)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := sess.Clear(ctx); err != nil {
                                return writeErr(cmd, fmt.Errorf("clear session: %w", err))
                        }
                        return writeOut(cmd, app, map[string]any{"sessionId": sess.SessionID, "cleared": true}, nil)
                },
        }
}
