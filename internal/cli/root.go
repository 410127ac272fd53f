package cli

import (
        "context"
        "errors"
        "fmt"
        "log/slog"
        "os"
        "strings"

        "academy-cli/internal/content"
        "academy-cli/internal/format"
        "academy-cli/internal/imageurl"
        "academy-cli/internal/logging"
        "academy-cli/internal/playback"
        "academy-cli/internal/session"
        "academy-cli/internal/store"
        "academy-cli/internal/tui"

        "github.com/mattn/go-isatty"
        "github.com/spf13/cobra"
)

type App struct {
        ContentPath string
        PrettyJSON  bool
        Format      string
        LogLevel    string

        // Lazily resolved; see settings() and content().
        resolved *store.Settings
        loaded   *content.Content
}

func NewRootCmd() *cobra.Command {
        app := &App{}

        cmd := &cobra.Command{
                Use:           "academy",
                Short:         "Detective Academy 19th in the terminal",
                SilenceUsage:  true,
                SilenceErrors: true,
                Example: strings.TrimSpace(`
  # Open the interactive client
  academy

  # Browse the registry from scripts
  academy characters list --category Academy
  academy show ARIA --variant 3

  # Play the entrance reveal without the TUI
  academy entrance
`),
                RunE: func(cmd *cobra.Command, args []string) error {
                        // No subcommand on a terminal => interactive TUI.
                        if len(args) == 0 && stdoutIsTerminal() {
                                return runTUI(cmd, app)
                        }
                        return cmd.Help()
                },
        }

        cmd.PersistentFlags().StringVar(&app.ContentPath, "content", envOr("ACADEMY_CONTENT", ""), "Content file (TOML); defaults to the built-in records")
        cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
        cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("ACADEMY_FORMAT", defaultFormat()), "Output format (json|edn|table)")
        cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error); overrides config")

        cmd.AddCommand(newRecordsCmd(app, content.KindCharacter))
        cmd.AddCommand(newRecordsCmd(app, content.KindLocation))
        cmd.AddCommand(newRecordsCmd(app, content.KindFaction))
        cmd.AddCommand(newShowCmd(app))
        cmd.AddCommand(newCategoriesCmd(app))
        cmd.AddCommand(newEntranceCmd(app))
        cmd.AddCommand(newSessionCmd(app))
        cmd.AddCommand(newAudioCmd(app))
        cmd.AddCommand(newConfigCmd(app))
        cmd.AddCommand(newDocsCmd(app))

        return cmd
}

func stdoutIsTerminal() bool {
        fd := os.Stdout.Fd()
        return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// defaultFormat is table for people and json for pipes.
func defaultFormat() string {
        if stdoutIsTerminal() {
                return format.Table
        }
        return format.JSON
}

func runTUI(cmd *cobra.Command, app *App) error {
        ctx := cmdContext(cmd)
        rt, err := app.openClient(ctx)
        if err != nil {
                return writeErr(cmd, err)
        }
        defer rt.Close()

        return tui.Run(ctx, tui.Options{
                Content:     rt.content,
                Coordinator: rt.coord,
                Session:     rt.session,
                Store:       rt.store,
                Settings:    rt.settings,
                Logger:      rt.log.Logger,
                Prober:      imageurl.NewProber(),
        })
}

func (app *App) settings() (store.Settings, error) {
        if app.resolved != nil {
                return *app.resolved, nil
        }
        cfg, err := store.LoadConfig()
        if err != nil {
                return store.Settings{}, fmt.Errorf("load config: %w", err)
        }
        s, err := store.Resolve(cfg)
        if err != nil {
                return store.Settings{}, fmt.Errorf("resolve config: %w", err)
        }
        if lv := strings.TrimSpace(app.LogLevel); lv != "" {
                s.LogLevel = lv
        }
        app.resolved = &s
        return s, nil
}

func (app *App) content() (*content.Content, error) {
        if app.loaded != nil {
                return app.loaded, nil
        }
        c, err := content.Load(app.ContentPath)
        if err != nil {
                return nil, fmt.Errorf("load content: %w", err)
        }
        app.loaded = c
        return c, nil
}

// client is everything a session-aware command needs: settings, content, the session
// store, the playback coordinator and a logger.
type client struct {
        settings store.Settings
        content  *content.Content
        store    store.Store
        session  *session.SQLiteStore
        coord    *playback.Coordinator
        log      *logging.Logger
}

func (app *App) openClient(ctx context.Context) (*client, error) {
        s, err := app.settings()
        if err != nil {
                return nil, err
        }
        c, err := app.content()
        if err != nil {
                return nil, err
        }
        st, sess, err := app.openSession(ctx)
        if err != nil {
                return nil, err
        }

        log, err := logging.New(logging.Options{
                Level:       s.LogLevel,
                Format:      s.LogFormat,
                OutputPaths: []string{s.LogPath},
        })
        if err != nil {
                return nil, fmt.Errorf("open log: %w", err)
        }

        coord := playback.New(playback.NewPlayer(s.AudioBackend, log.Logger), playback.Options{
                Volume: s.Volume,
                Logger: log.Logger,
        })
        coord.RegisterSource(audioSource(s, c))

        return &client{
                settings: s,
                content:  c,
                store:    st,
                session:  sess,
                coord:    coord,
                log:      log,
        }, nil
}

// openSession opens the state directory and the current browsing session's store.
func (app *App) openSession(ctx context.Context) (store.Store, *session.SQLiteStore, error) {
        s, err := app.settings()
        if err != nil {
                return store.Store{}, nil, err
        }
        st, err := store.Open()
        if err != nil {
                return store.Store{}, nil, err
        }
        if err := st.Ensure(); err != nil {
                return store.Store{}, nil, fmt.Errorf("prepare %s: %w", st.Dir, err)
        }
        sess, err := session.OpenSQLite(ctx, st.SessionDir(), session.ResolveID(), s.SessionTTL)
        if err != nil {
                return store.Store{}, nil, fmt.Errorf("open session: %w", err)
        }
        return st, sess, nil
}

// audioSource prefers an explicitly configured source, then the content file's, then the
// built-in default.
func audioSource(s store.Settings, c *content.Content) string {
        if s.AudioSource != store.DefaultAudioSource || c == nil || strings.TrimSpace(c.Site.AudioSource) == "" {
                return s.AudioSource
        }
        return c.Site.AudioSource
}

func (rt *client) Close() {
        if err := rt.coord.Close(); err != nil {
                rt.log.Warn("close audio backend failed", slog.Any("error", err))
        }
        _ = rt.log.Close()
}

func envOr(k, d string) string {
        if v := os.Getenv(k); v != "" {
                return v
        }
        return d
}

// writeOut wraps data in the output envelope. Table output prints data alone.
func writeOut(cmd *cobra.Command, app *App, data any, meta map[string]any, hints ...string) error {
        if strings.EqualFold(strings.TrimSpace(app.Format), format.Table) {
                return format.Write(cmd.OutOrStdout(), data, format.Table, false)
        }
        env := map[string]any{"data": data}
        if len(meta) > 0 {
                env["meta"] = meta
        }
        if len(hints) > 0 {
                env["_hints"] = hints
        }
        return format.Write(cmd.OutOrStdout(), env, app.Format, app.PrettyJSON)
}

// writeErr prints err to stderr and marks it printed so Execute does not repeat it.
func writeErr(cmd *cobra.Command, err error) error {
        fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
        return reportedError{err: err}
}

// Execute runs the root command and prints any error not already reported.
func Execute(cmd *cobra.Command) error {
        err := cmd.Execute()
        if err == nil {
                return nil
        }
        var rep reportedError
        if !errors.As(err, &rep) {
                fmt.Fprintln(cmd.ErrOrStderr(), "Error: "+err.Error())
        }
        return err
}
