// Package catalog turns the output of `pyenv install --list` into the
// numbered menu of stable CPython releases offered to the user.
//
// Only lines that are exactly major.minor.patch are stable. Release
// candidates, alphas, free-threaded builds and every other suffixed numeric
// string are pre-releases; anything not starting with a digit (pypy,
// miniconda, graalpy, ...) is a non-CPython implementation.
//
// The catalog is queried fresh on every call and never cached.
package catalog
