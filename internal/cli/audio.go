package cli

import (
        "log/slog"
        "time"

        "academy-cli/internal/playback"

        "github.com/spf13/cobra"
)

type audioStatus struct {
        Backend string         `json:"backend"`
        State   playback.State `json:"state"`
}

type audioPlayResult struct {
        AttemptID string         `json:"attemptId,omitempty"`
        Outcome   string         `json:"outcome"`
        Reason    string         `json:"reason,omitempty"`
        Error     string         `json:"error,omitempty"`
        State     playback.State `json:"state"`
}

func newAudioCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "audio",
                Short: "Background music",
        }
        cmd.AddCommand(newAudioPlayCmd(app))
        cmd.AddCommand(newAudioStatusCmd(app))
        return cmd
}

func newAudioPlayCmd(app *App) *cobra.Command {
        var dur time.Duration

        cmd := &cobra.Command{
                Use:   "play",
                Short: "Play the looping theme until interrupted (or for --for)",
                Long:  "Respects the mute toggle saved by the interactive client.",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        ctx := cmdContext(cmd)
                        rt, err := app.openClient(ctx)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        defer rt.Close()

                        if st, err := rt.store.LoadTUIState(); err == nil && st != nil && st.Muted {
                                rt.coord.SetMuted(true)
                        }

                        res := <-rt.coord.RequestPlay(ctx)
                        out := audioPlayResult{
                                AttemptID: res.AttemptID,
                                Outcome:   res.Outcome.String(),
                                Reason:    res.Reason,
                                State:     rt.coord.State(),
                        }
                        if res.Err != nil {
                                out.Error = res.Err.Error()
                        }
                        if err := writeOut(cmd, app, out, nil, "academy audio status"); err != nil {
                                return err
                        }
                        if !res.Started() {
                                if res.Outcome == playback.OutcomeDenied {
                                        return writeErr(cmd, res.Err)
                                }
                                return nil
                        }

                        rt.log.Info("playing until interrupted", slog.Duration("for", dur))
                        if dur > 0 {
                                select {
                                case <-ctx.Done():
                                case <-time.After(dur):
                                }
                        } else {
                                <-ctx.Done()
                        }
                        rt.coord.Pause()
                        return nil
                },
        }

        cmd.Flags().DurationVar(&dur, "for", 0, "Stop after this long (0 = until Ctrl-C)")
        return cmd
}

func newAudioStatusCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "status",
                Short: "Show the configured source, volume, backend and saved mute state",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        rt, err := app.openClient(cmdContext(cmd))
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        defer rt.Close()

                        if st, err := rt.store.LoadTUIState(); err == nil && st != nil && st.Muted {
                                rt.coord.SetMuted(true)
                        }
                        return writeOut(cmd, app, audioStatus{
                                Backend: rt.settings.AudioBackend,
                                State:   rt.coord.State(),
                        }, nil, "academy audio play", "academy config set audioBackend mpv")
                },
        }
}
