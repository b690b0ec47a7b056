package routeprobe

import "strings"

// Filter selects which routes/methods a run covers. Include/Exclude are
// glob-style patterns over the path alone — `*` matches within one path
// segment, `**` matches zero or more whole segments. The root path "/"
// is treated as a single empty first segment, so a pattern ending in
// "/**" matches both the prefix itself and everything nested below it.
// Methods is an independent set: if non-empty, only requests whose
// method appears in it pass, regardless of what the path globs say. A
// bare path pattern like "/users/**" therefore matches that path under
// every method, exactly as it reads.
//
// Segment matching is hand-rolled here; see DESIGN.md for why no glob
// library is used.
type Filter struct {
	Include []string
	Exclude []string
	Methods []string
}

// NewFilter builds a Filter. An empty Include list means "include every
// path" by default; an empty Methods list means "allow every method."
func NewFilter(include, exclude, methods []string) *Filter {
	return &Filter{Include: include, Exclude: exclude, Methods: methods}
}

// Matches reports whether (method, path) passes this Filter: method is
// in Methods (or Methods is empty), path is included by at least one
// Include pattern (or Include is empty), and path is excluded by none.
func (f *Filter) Matches(method, path string) bool {
	if len(f.Methods) > 0 {
		allowed := false
		for _, m := range f.Methods {
			if strings.EqualFold(m, method) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	included := len(f.Include) == 0
	for _, pat := range f.Include {
		if globMatch(pat, path) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pat := range f.Exclude {
		if globMatch(pat, path) {
			return false
		}
	}
	return true
}

// Apply filters routes down to the matching subset, returning
// FilterAllEmptyError if nothing survives — selecting zero routes is
// always a configuration mistake, never a valid empty run. methods and
// paths are parallel to items.
func Apply[T any](f *Filter, methods, paths []string, items []T) ([]T, error) {
	var out []T
	for i := range items {
		if f.Matches(methods[i], paths[i]) {
			out = append(out, items[i])
		}
	}
	if len(out) == 0 {
		return nil, &FilterAllEmptyError{Include: f.Include, Exclude: f.Exclude}
	}
	return out, nil
}

// globMatch implements `*`/`**` glob matching segment-by-segment.
// `*` matches any run of non-'/' characters within a segment; `**`
// matches any number of whole segments (including zero).
func globMatch(pattern, s string) bool {
	pSegs := strings.Split(pattern, "/")
	sSegs := strings.Split(s, "/")
	return matchSegs(pSegs, sSegs)
}

func matchSegs(pat, s []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchSegs(pat[1:], s[i:]) {
					return true
				}
			}
			return false
		}
		if len(s) == 0 {
			return false
		}
		if !matchSeg(pat[0], s[0]) {
			return false
		}
		pat = pat[1:]
		s = s[1:]
	}
	return len(s) == 0
}

// matchSeg matches one path segment (no '/') against a pattern segment
// containing `*` wildcards via a standard greedy-with-backtrack scan.
func matchSeg(pat, s string) bool {
	var pi, si int
	var starIdx, starMatch = -1, 0
	for si < len(s) {
		if pi < len(pat) && (pat[pi] == '?' || pat[pi] == s[si]) {
			pi++
			si++
			continue
		}
		if pi < len(pat) && pat[pi] == '*' {
			starIdx = pi
			starMatch = si
			pi++
			continue
		}
		if starIdx >= 0 {
			pi = starIdx + 1
			starMatch++
			si = starMatch
			continue
		}
		return false
	}
	for pi < len(pat) && pat[pi] == '*' {
		pi++
	}
	return pi == len(pat)
}
