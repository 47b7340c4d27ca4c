// Package alfred integrates with the Alfred launcher: it provides the
// workflow directories, emits result entries as script filter feedback
// and runs the background refresh as an Alfred background job.
package alfred

import (
	"os"
	"os/exec"
	"path/filepath"

	aw "github.com/deanishe/awgo"
	"github.com/pkg/errors"

	"github.com/Luzifer/lgtm/pkg/result"
)

const (
	envBundleID = "alfred_workflow_bundleid"
	envCacheDir = "alfred_workflow_cache"
	envDataDir  = "alfred_workflow_data"

	refreshJobName = "refresh"
)

// Workflow wraps an awgo workflow. It implements the refresh.Output and
// refresh.Spawner interfaces.
type Workflow struct {
	executable string
	wf         *aw.Workflow
}

// fallbackEnv prefers the variables Alfred sets and falls back to
// directories below the user cache dir when running outside Alfred
type fallbackEnv map[string]string

func (f fallbackEnv) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}

	v, ok := f[key]
	return v, ok
}

// New creates a Workflow. Outside Alfred the bundle ID selects
// <user cache dir>/<bundle ID>/{data,cache} as workflow directories.
func New(bundleID string) (*Workflow, error) {
	if bundleID == "" {
		return nil, errors.New("bundle ID required")
	}

	userCache, err := os.UserCacheDir()
	if err != nil {
		return nil, errors.Wrap(err, "determine user cache dir")
	}

	executable, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "determine executable")
	}

	root := filepath.Join(userCache, bundleID)

	return &Workflow{
		executable: executable,
		wf: aw.NewFromEnv(fallbackEnv{
			envBundleID: bundleID,
			envCacheDir: filepath.Join(root, "cache"),
			envDataDir:  filepath.Join(root, "data"),
		}),
	}, nil
}

// BundleID returns the bundle ID of the workflow
func (w *Workflow) BundleID() string { return w.wf.BundleID() }

// CacheDir returns the directory for volatile workflow files
func (w *Workflow) CacheDir() string { return w.wf.CacheDir() }

// DataDir returns the directory for persistent workflow files
func (w *Workflow) DataDir() string { return w.wf.DataDir() }

// Write sends the entries as script filter feedback to stdout
func (w *Workflow) Write(entries []result.Entry) error {
	for _, e := range entries {
		it := w.wf.NewItem(e.Title).
			Subtitle(e.Subtitle).
			Arg(e.Arg).
			UID(e.ID).
			Valid(true)

		if e.Icon != "" {
			it.Icon(&aw.Icon{Value: e.Icon, Type: aw.IconTypeImage})
		}
	}

	w.wf.SendFeedback()
	return nil
}

// SpawnBackgroundRefresh starts the workflow binary with args as a
// detached background job. A refresh still running from an earlier
// invocation is left alone instead of starting another one.
func (w *Workflow) SpawnBackgroundRefresh(args []string) error {
	if w.wf.IsRunning(refreshJobName) {
		return nil
	}

	cmd := exec.Command(w.executable, args...) //#nosec:G204 // Re-executes own binary

	return errors.Wrap(w.wf.RunInBackground(refreshJobName, cmd), "start background job")
}
