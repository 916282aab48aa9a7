package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"rigup/internal/catalog"
	"rigup/internal/execute"
	"rigup/internal/logx"
	"rigup/internal/paths"
	"rigup/internal/plan"
	"rigup/internal/resolve"
	"rigup/internal/session"
	"rigup/internal/sysinfo"
)

// app bundles the collaborators every command needs: resolved paths, the
// loaded catalog, the detected system profile, and a wired engine.
type app struct {
	paths   paths.AppPaths
	cat     catalog.Catalog
	profile sysinfo.Profile
	sess    *session.Session
	eng     *session.Engine
	log     *log.Logger
	closer  io.Closer
}

func newApp() (*app, error) {
	pp, err := paths.Resolve(catalogPath)
	if err != nil {
		return nil, err
	}

	logger := logx.Discard()
	var closer io.Closer
	if err := pp.EnsureStateDirs(); err == nil {
		if fileLog, c, err := logx.New(pp); err == nil {
			logger = fileLog
			closer = c
		}
	}

	cat, err := catalog.Load(pp.CatalogFile)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	if pp.CatalogFile != "" {
		logger.Printf("catalog loaded from %s (%d entries)", pp.CatalogFile, len(cat.Software))
	} else {
		logger.Printf("built-in catalog loaded (%d entries)", len(cat.Software))
	}

	profile, err := sysinfo.Detect()
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	logger.Printf("profile: distro=%s manager=%s arch=%s shell=%s",
		profile.DistroID, profile.Manager, profile.Arch, profile.ShellProfile)

	sess := session.New(cat)
	eng := session.NewEngine(cat, profile, sess)
	eng.Logger = logger
	eng.PlanOpts = plan.Options{DownloadDir: pp.DownloadDir}

	resolver := resolve.New(profile)
	resolver.Logger = logger
	resolver.GitHubToken = os.Getenv("GITHUB_TOKEN")
	eng.Resolver = resolver

	executor := execute.New()
	executor.Logger = logger
	eng.Runner = executor

	return &app{
		paths:   pp,
		cat:     cat,
		profile: profile,
		sess:    sess,
		eng:     eng,
		log:     logger,
		closer:  closer,
	}, nil
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

// selectEntries applies the command's positional args to the session:
// explicit ids replace the default selection, no args keeps the catalog
// defaults.
func (a *app) selectEntries(ids []string) error {
	if len(ids) == 0 {
		if len(a.sess.SelectedIDs()) == 0 {
			return fmt.Errorf("catalog has no default entries; name the software to act on")
		}
		return nil
	}

	a.sess.DeselectAll()
	for _, id := range ids {
		if _, ok := a.cat.Get(id); !ok {
			return fmt.Errorf("unknown software %q (see rigup list)", id)
		}
		if err := a.sess.Toggle(id); err != nil {
			return err
		}
	}
	return nil
}
