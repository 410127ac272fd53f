package cli

import (
        "context"
        "fmt"

        "academy-cli/internal/onboarding"
        "academy-cli/internal/session"

        "github.com/spf13/cobra"
)

type entranceResult struct {
        SessionID string `json:"sessionId"`
        From      string `json:"from"`
        Stage     string `json:"stage"`
        Skipped   bool   `json:"skipped"`
        RevealMs  int64  `json:"revealMs"`
        Timers    int    `json:"timers"`
        Visited   bool   `json:"visited"`
}

func newEntranceCmd(app *App) *cobra.Command {
        var reset bool

        cmd := &cobra.Command{
                Use:   "entrance",
                Short: "Run the entrance reveal headlessly (music, timed reveal, session flag)",
                Long: `Invoking the command is the gesture: it starts the music and the timed reveal, waits
for it to finish and records the session flag. A session that has already seen the
reveal goes straight to the main stage.`,
                Args: cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        ctx := cmdContext(cmd)
                        rt, err := app.openClient(ctx)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        defer rt.Close()

                        if reset {
                                if err := rt.session.Clear(ctx); err != nil {
                                        return writeErr(cmd, fmt.Errorf("clear session: %w", err))
                                }
                        }

                        res, err := runEntrance(ctx, rt, onboarding.RealClock)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, res, nil, "academy session status", "academy entrance --reset")
                },
        }

        cmd.Flags().BoolVar(&reset, "reset", false, "Clear this session first so the reveal plays again")
        return cmd
}

func runEntrance(ctx context.Context, rt *client, clock onboarding.Clock) (entranceResult, error) {
        reached := make(chan struct{})
        r, err := onboarding.NewRunner(ctx, onboarding.RunnerConfig{
                Machine: onboarding.Machine{Reveal: rt.settings.RevealDuration},
                Clock:   clock,
                Session: rt.session,
                Player:  rt.coord,
                Logger:  rt.log.Logger,
                OnStage: func(s onboarding.Stage) {
                        if s == onboarding.StageMain {
                                close(reached)
                        }
                },
        })
        if err != nil {
                return entranceResult{}, err
        }
        defer r.Close()

        res := entranceResult{
                SessionID: rt.session.SessionID,
                From:      r.Stage().String(),
                RevealMs:  rt.settings.RevealDuration.Milliseconds(),
        }
        if r.Stage() == onboarding.StageMain {
                res.Skipped = true
        } else {
                r.Dispatch(onboarding.GestureEvent{Kind: onboarding.GestureKey})
                select {
                case <-reached:
                case <-ctx.Done():
                        return entranceResult{}, fmt.Errorf("entrance interrupted: %w", ctx.Err())
                }
        }

        res.Stage = r.Stage().String()
        res.Timers = r.TimersStarted()
        visited, err := session.Flag(ctx, rt.session, session.FlagVisitedEntrance)
        if err != nil {
                return entranceResult{}, fmt.Errorf("read session flag: %w", err)
        }
        res.Visited = visited
        return res, nil
}
