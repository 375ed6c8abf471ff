package vfs

import "strings"

// Root is the canonical absolute path of a tree's root directory.
const Root = "/"

// IsAbsolute reports whether arg names a path from the root: it starts with a
// separator or with a drive letter such as "C:".
func IsAbsolute(arg string) bool {
	if strings.HasPrefix(arg, "/") || strings.HasPrefix(arg, `\`) {
		return true
	}
	return hasDrive(arg)
}

func hasDrive(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Normalize returns the canonical spelling of p: forward slashes only, a
// single leading slash, no empty or trailing segments. A leading drive letter
// is dropped because the tree root is the drive.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if hasDrive(p) {
		p = p[2:]
	}
	segs := Segments(p)
	if len(segs) == 0 {
		return Root
	}
	return Root + strings.Join(segs, "/")
}

// Segments splits p into its non-empty segments.
func Segments(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Resolve turns a player-typed argument into an absolute path relative to
// cwd. Only a whole-argument "." or ".." is interpreted; dot segments inside
// a compound argument such as "a/../b" are kept verbatim and will simply fail
// to look up.
func Resolve(cwd, arg string) string {
	switch {
	case IsAbsolute(arg):
		return Normalize(arg)
	case arg == "..":
		segs := Segments(cwd)
		if len(segs) <= 1 {
			return Root
		}
		return Root + strings.Join(segs[:len(segs)-1], "/")
	case arg == ".":
		return cwd
	}
	base := strings.TrimRight(strings.ReplaceAll(cwd, `\`, "/"), "/")
	return Normalize(base + "/" + arg)
}

// Display renders a canonical path with Windows separators for output.
func Display(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}

// Depth returns the number of segments in p; the root has depth 0.
func Depth(p string) int {
	return len(Segments(p))
}
