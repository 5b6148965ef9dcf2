package toolinstall

import (
	"context"
	"fmt"

	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/git"
	"github.com/thoreinstein/pyup/internal/paths"
	"github.com/thoreinstein/pyup/internal/platform"
	"github.com/thoreinstein/pyup/internal/runner"
)

// PluginReport describes the outcome of EnsurePlugin.
type PluginReport struct {
	// Available is true when `pyenv virtualenv` works at the end.
	Available bool
	// Installed is true when this call installed the plugin.
	Installed bool
	Notes     []string
}

// HasPlugin reports whether `pyenv virtualenv --help` succeeds.
func HasPlugin(ctx context.Context, r runner.Runner) (bool, error) {
	res, err := r.Run(ctx, runner.Cmd{Name: "pyenv", Args: []string{"virtualenv", "--help"}})
	if err != nil {
		return false, err
	}
	return res.OK(), nil
}

// EnsurePlugin offers a late install of pyenv-virtualenv when pyenv is
// present without it. env is the snapshot returned by EnsureInstalled.
func (i *Installer) EnsurePlugin(ctx context.Context, p platform.Platform, env runner.Env) (PluginReport, error) {
	r := i.runner.WithEnv(env)

	ok, err := HasPlugin(ctx, r)
	if err != nil {
		return PluginReport{}, errors.Wrap(err, "checking pyenv-virtualenv")
	}
	if ok {
		return PluginReport{Available: true}, nil
	}

	var rep PluginReport
	switch {
	case p == platform.MacOS && r.Probe("brew"):
		accepted, err := i.gate.Confirm(ctx, decision.Request{
			ID:       "plugin.brew",
			Question: "pyenv-virtualenv is not available. Install it with Homebrew now?",
			Detail:   "Command: brew install pyenv-virtualenv",
			Default:  true,
		})
		if err != nil {
			return rep, err
		}
		if !accepted {
			return rep, nil
		}
		c := runner.Cmd{Name: "brew", Args: []string{"install", "pyenv-virtualenv"}, Interactive: true}
		res, err := r.Run(ctx, c)
		if err != nil {
			return rep, errors.Wrap(err, "brew install")
		}
		if !res.OK() {
			return rep, errors.NewInstallStepError(res.Code, c.Name, c.Args...)
		}

	case p.IsUbuntuLike():
		dest := paths.PluginDir(i.opts.PyenvRoot)
		if dirExists(dest) {
			if err := checkPlugin(dest); err != nil {
				rep.Notes = append(rep.Notes, fmt.Sprintf("%s is not a usable plugin checkout (%v). Remove it and re-run pyup to clone it again.", dest, err))
				return rep, nil
			}
			rep.Notes = append(rep.Notes, fmt.Sprintf("%s exists but `pyenv virtualenv` does not work; check that pyenv is initialised in your shell.", dest))
			return rep, nil
		}
		accepted, err := i.gate.Confirm(ctx, decision.Request{
			ID:       "plugin.clone",
			Question: "pyenv-virtualenv is not available. Clone it into your pyenv plugins now?",
			Detail:   "Command: " + git.CloneCmd(i.opts.VirtualenvRepo, dest).String(),
			Default:  true,
		})
		if err != nil {
			return rep, err
		}
		if !accepted {
			rep.Notes = append(rep.Notes, "Install it later with:\n  git clone "+i.opts.VirtualenvRepo+" "+dest)
			return rep, nil
		}
		if err := git.New(r).Clone(ctx, i.opts.VirtualenvRepo, dest); err != nil {
			return rep, err
		}

	default:
		rep.Notes = append(rep.Notes, "Install pyenv-virtualenv manually: https://github.com/pyenv/pyenv-virtualenv#installation")
		return rep, nil
	}

	rep.Installed = true
	rep.Available, err = HasPlugin(ctx, r)
	if err != nil {
		return rep, errors.Wrap(err, "checking pyenv-virtualenv")
	}
	return rep, nil
}
