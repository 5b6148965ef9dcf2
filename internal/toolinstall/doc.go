// Package toolinstall makes sure pyenv and the pyenv-virtualenv plugin are
// present, choosing an install method from the host's platform.Strategy.
//
// EnsureInstalled is idempotent. When pyenv already resolves it returns at
// once without running anything. Otherwise every mutating step is put to a
// decision.Gate first:
//
//   - macOS: Homebrew when available, else the official pyenv.run script.
//   - Ubuntu and Ubuntu under WSL: apt build dependencies via sudo, then a
//     git clone of pyenv and, optionally, of the plugin. Existing
//     directories are left alone.
//   - Windows and unknown hosts: nothing is run; ErrUnsupportedPlatform is
//     returned with guidance.
//
// After an install the Report carries a refreshed runner.Env. It affects
// only processes pyup starts itself; the user's open shells are unchanged.
package toolinstall
