package searcher

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
)

// CompiledPattern wraps a regex compiled from a query pattern, with a
// substring fallback when the pattern is not valid regex, per spec.md
// §7 "Invalid regex in pattern".
type CompiledPattern struct {
	re            *regexp.Regexp
	raw           string
	caseSensitive bool
}

// CompilePattern compiles pattern as case-(in)sensitive regex. An invalid
// pattern falls back to plain substring matching via Match, never an error.
func CompilePattern(pattern string, caseSensitive bool) CompiledPattern {
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
		regexErr := engineerrors.New(engineerrors.ErrCodeInvalidRegex, "pattern is not valid regex, falling back to substring match", err).
			WithDetail("pattern", pattern)
		slog.Debug(regexErr.Error(), slog.String("pattern", pattern), slog.String("cause", err.Error()))
	}
	return CompiledPattern{re: re, raw: pattern, caseSensitive: caseSensitive}
}

// Match reports whether text satisfies the compiled pattern: regex search
// when the pattern compiled, else a case-folded substring search.
func (p CompiledPattern) Match(text string) bool {
	if p.re != nil {
		return p.re.MatchString(text)
	}
	if p.caseSensitive {
		return strings.Contains(text, p.raw)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(p.raw))
}

// FindFirst returns the byte offsets of the first match, or (-1,-1) if none.
func (p CompiledPattern) FindFirst(text string) (int, int) {
	if p.re != nil {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			return -1, -1
		}
		return loc[0], loc[1]
	}
	haystack, needle := text, p.raw
	if !p.caseSensitive {
		haystack, needle = strings.ToLower(haystack), strings.ToLower(needle)
	}
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return -1, -1
	}
	return idx, idx + len(needle)
}

var (
	fnmatchCacheMu sync.Mutex
	fnmatchCache   = map[string]*regexp.Regexp{}
)

// MatchFnmatch reports whether name matches pattern using Python-fnmatch
// semantics: `*` matches any run of characters (including `/`), `?` matches
// one character, `[seq]` is a character class. Used by the file_path
// searcher, per spec.md §4.1.1.
func MatchFnmatch(pattern, name string) bool {
	re := fnmatchRegex(pattern)
	return re.MatchString(name)
}

func fnmatchRegex(pattern string) *regexp.Regexp {
	fnmatchCacheMu.Lock()
	defer fnmatchCacheMu.Unlock()
	if re, ok := fnmatchCache[pattern]; ok {
		return re
	}
	re := regexp.MustCompile("(?i)^" + fnmatchTranslate(pattern) + "$")
	fnmatchCache[pattern] = re
	return re
}

func fnmatchTranslate(pattern string) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(".*")
			i++
		case '?':
			b.WriteString(".")
			i++
		case '[':
			j := i + 1
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j < len(pattern) {
				b.WriteString(pattern[i : j+1])
				i = j + 1
			} else {
				b.WriteString(regexp.QuoteMeta(string(c)))
				i++
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}

var (
	globCacheMu sync.Mutex
	globCache   = map[string]*regexp.Regexp{}
)

// MatchGlob reports whether path matches a gitignore-style include/exclude
// glob: `**` matches across directory boundaries, a single `*` or `?` does
// not cross `/`. Used for SearchQuery.IncludeGlobs/ExcludeGlobs.
func MatchGlob(pattern, path string) bool {
	re := globRegex(pattern)
	return re.MatchString(path)
}

func globRegex(pattern string) *regexp.Regexp {
	globCacheMu.Lock()
	defer globCacheMu.Unlock()
	if re, ok := globCache[pattern]; ok {
		return re
	}
	re := regexp.MustCompile("^" + globTranslate(pattern) + "$")
	globCache[pattern] = re
	return re
}

func globTranslate(pattern string) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 3
					continue
				}
				b.WriteString(".*")
				i += 2
				continue
			}
			b.WriteString("[^/]*")
			i++
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			j := i + 1
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j < len(pattern) {
				b.WriteString(pattern[i : j+1])
				i = j + 1
			} else {
				b.WriteString(regexp.QuoteMeta(string(c)))
				i++
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}

// MatchesGlobs reports whether path satisfies include (any-of, vacuously
// true if empty) and exclude (none-of) glob lists, per spec.md §8 property 9.
func MatchesGlobs(path string, include, exclude []string) bool {
	for _, pat := range exclude {
		if MatchGlob(pat, path) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if MatchGlob(pat, path) {
			return true
		}
	}
	return false
}

// NormalizeExtensions lowercases each extension and ensures a leading dot,
// per spec.md §4.1.1's file_type searcher.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
