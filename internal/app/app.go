package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"github.com/five82/iqama/internal/config"
	"github.com/five82/iqama/internal/localstore"
	"github.com/five82/iqama/internal/logging"
	"github.com/five82/iqama/internal/logtail"
	"github.com/five82/iqama/internal/prefs"
	"github.com/five82/iqama/internal/remote"
	"github.com/five82/iqama/internal/server"
	"github.com/five82/iqama/internal/state"
	"github.com/five82/iqama/internal/syncer"
	"github.com/five82/iqama/internal/ui"
)

// Options configure every iqama entry point.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/iqama/prefs.toml
	Debug      bool
	// Stderr receives console logs for the headless commands.
	Stderr io.Writer
}

const closeTimeout = 2 * time.Second

// ErrRemoteNotConfigured is returned by Sync when no remote is set up.
var ErrRemoteNotConfigured = errors.New("remote sync is not configured (set " +
	config.EnvRemoteURL + " and " + config.EnvRemoteKey + ")")

type runtime struct {
	cfg       config.Config
	session   *state.Session
	logCloser io.Closer
}

type openMode int

const (
	modeEditor openMode = iota
	modeHeadless
	modeLocalOnly
)

// open loads config, installs logging and builds the session. The editor logs
// to the log file only; headless commands log to the console.
func open(opts Options, mode openMode) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logOpts := logging.Options{Debug: opts.Debug, Stderr: opts.Stderr}
	if mode == modeEditor {
		logOpts.File = cfg.LogFile
	} else {
		logOpts.Console = true
	}
	logCloser, err := logging.Setup(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	var remoteStore remote.Store
	if mode != modeLocalOnly {
		remoteStore, err = newRemote(cfg.Remote)
		if err != nil {
			_ = logCloser.Close()
			return nil, err
		}
	}

	store := localstore.Open(cfg.DataDir, localstore.Options{
		Local:      cfg.Storage.Local,
		Cookie:     cfg.Storage.Cookie,
		Structured: cfg.Storage.Structured,
	})
	sess := state.Open(state.Options{
		Store:  store,
		Remote: remoteStore,
		Sync:   syncer.Options{Debounce: cfg.Sync.Debounce},
	})

	log.Debug().
		Str("data_dir", cfg.DataDir).
		Bool("remote", remoteStore != nil).
		Msg("session opened")
	return &runtime{cfg: cfg, session: sess, logCloser: logCloser}, nil
}

// newRemote returns nil when sync is not configured so the session runs
// local-only. A disabled *remote.Client is never returned as a non-nil Store.
func newRemote(cfg config.Remote) (remote.Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := remote.NewClient(remote.Options{
		URL:      cfg.URL,
		APIKey:   cfg.APIKey,
		Table:    cfg.Table,
		RecordID: cfg.RecordID,
	})
	if err != nil {
		return nil, fmt.Errorf("init remote client: %w", err)
	}
	if !client.Enabled() {
		return nil, nil
	}
	log.Debug().Str("endpoint", client.Endpoint()).Msg("remote sync enabled")
	return client, nil
}

func (rt *runtime) close() error {
	err := rt.session.Close(closeTimeout)
	_ = rt.logCloser.Close()
	return err
}

// Run boots the editor TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := open(opts, modeEditor)
	if err != nil {
		return err
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	pollCtx, stopPoller := context.WithCancel(ctx)
	StartPoller(pollCtx, rt.session, rt.cfg.Sync.RetryEvery)

	final, runErr := ui.Run(ui.Options{
		Context:   ctx,
		Session:   rt.session,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
	stopPoller()

	// Whatever was on screen when the program stopped is the last word.
	final.Commit()
	closeErr := rt.close()

	if runErr != nil {
		return errors.Join(fmt.Errorf("run ui: %w", runErr), closeErr)
	}
	return closeErr
}

// Sync runs the startup remote policy once without the UI and reports what
// happened.
func Sync(ctx context.Context, opts Options, out io.Writer) error {
	rt, err := open(opts, modeHeadless)
	if err != nil {
		return err
	}
	if !rt.session.Snapshot().Remote {
		_ = rt.close()
		return ErrRemoteNotConfigured
	}

	rt.session.Hydrate()
	replaced, syncErr := rt.session.Bootstrap(ctx)
	closeErr := rt.close()
	if syncErr != nil {
		return errors.Join(syncErr, closeErr)
	}

	if replaced {
		fmt.Fprintln(out, "Remote record loaded; local copy replaced.")
	} else {
		fmt.Fprintln(out, "Remote record was empty; seeded from local copy.")
	}
	return closeErr
}

// Show prints the locally stored times and the next prayer per masjid.
func Show(opts Options, now time.Time, out io.Writer) error {
	rt, err := open(opts, modeLocalOnly)
	if err != nil {
		return err
	}
	rt.session.Hydrate()

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	snap := rt.session.Snapshot()
	fmt.Fprint(out, ui.RenderSummary(snap.State, rt.session.NextPrayers(now), userPrefs.Clock12h))
	return rt.close()
}

// Serve runs the bundled remote store until the context is cancelled.
func Serve(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logCloser, err := logging.Setup(logging.Options{Console: true, Debug: opts.Debug, Stderr: opts.Stderr})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	return server.Run(ctx, server.Options{
		Addr:          cfg.Serve.Addr,
		APIKey:        cfg.Serve.APIKey,
		RedisAddr:     cfg.Serve.RedisAddr,
		RedisPassword: cfg.Serve.RedisPassword,
	})
}

// Logs prints the last maxLines lines of the iqama log file.
func Logs(opts Options, maxLines int, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lines, err := logtail.Read(cfg.LogFile, maxLines)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		errOut := opts.Stderr
		if errOut == nil {
			errOut = os.Stderr
		}
		fmt.Fprintf(errOut, "no log entries in %s\n", cfg.LogFile)
		return nil
	}
	palette := logtail.Palette{}
	if isTerminal(out) {
		palette = logtail.DefaultPalette()
	}
	fmt.Fprintln(out, strings.Join(logtail.FormatLines(lines, palette), "\n"))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
