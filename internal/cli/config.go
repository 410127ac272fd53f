package cli

import (
        "fmt"

        "academy-cli/internal/store"

        "github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "config",
                Short: "Show or change ~/.academy/config.json",
        }
        cmd.AddCommand(newConfigShowCmd(app))
        cmd.AddCommand(newConfigSetCmd(app))
        cmd.AddCommand(newConfigPathCmd(app))
        return cmd
}

// settingsView is Settings with durations in the units the config file uses.
type settingsView struct {
        RevealDurationMs int64   `json:"revealDurationMs"`
        Volume           float64 `json:"volume"`
        AudioSource      string  `json:"audioSource"`
        AudioBackend     string  `json:"audioBackend"`
        ImageBaseURL     string  `json:"imageBaseUrl"`
        PlaceholderImage string  `json:"placeholderImage,omitempty"`
        VariantCount     int     `json:"variantCount"`
        SessionTTLHours  float64 `json:"sessionTtlHours"`
        LogLevel         string  `json:"logLevel"`
        LogFormat        string  `json:"logFormat"`
        LogPath          string  `json:"logPath"`
        Theme            string  `json:"theme,omitempty"`
        Glyphs           string  `json:"glyphs,omitempty"`
}

func newSettingsView(s store.Settings) settingsView {
        return settingsView{
                RevealDurationMs: s.RevealDuration.Milliseconds(),
                Volume:           s.Volume,
                AudioSource:      s.AudioSource,
                AudioBackend:     s.AudioBackend,
                ImageBaseURL:     s.ImageBaseURL,
                PlaceholderImage: s.PlaceholderImage,
                VariantCount:     s.VariantCount,
                SessionTTLHours:  s.SessionTTL.Hours(),
                LogLevel:         s.LogLevel,
                LogFormat:        s.LogFormat,
                LogPath:          s.LogPath,
                Theme:            s.Theme,
                Glyphs:           s.Glyphs,
        }
}

func newConfigShowCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "show",
                Short: "Show the effective settings (defaults < config file < environment)",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        s, err := app.settings()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        path, _ := store.ConfigPath()
                        return writeOut(cmd, app, newSettingsView(s), map[string]any{"path": path}, "academy config set <key> <value>")
                },
        }
}

func newConfigSetCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:       "set <key> [value]",
                Short:     "Set one config key; omit the value to reset it to the default",
                Args:      cobra.RangeArgs(1, 2),
                ValidArgs: store.ConfigKeys(),
                RunE: func(cmd *cobra.Command, args []string) error {
                        cfg, err := store.LoadConfig()
                        if err != nil {
                                return writeErr(cmd, fmt.Errorf("load config: %w", err))
                        }
                        value := ""
                        if len(args) == 2 {
                                value = args[1]
                        }
                        if err := cfg.Set(args[0], value); err != nil {
                                return writeErr(cmd, err)
                        }
                        // Refuse to save a file the next launch could not run with.
                        s, err := store.Resolve(cfg)
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := store.SaveConfig(cfg); err != nil {
                                return writeErr(cmd, fmt.Errorf("save config: %w", err))
                        }
                        app.resolved = &s
                        return writeOut(cmd, app, newSettingsView(s), map[string]any{"key": args[0]})
                },
        }
}

func newConfigPathCmd(app *App) *cobra.Command {
        return &cobra.Command{
                Use:   "path",
                Short: "Print the config file path",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        path, err := store.ConfigPath()
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        fmt.Fprintln(cmd.OutOrStdout(), path)
                        return nil
                },
        }
}
