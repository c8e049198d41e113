package cli

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const maxNameLength = 214

var (
	blacklistedNames = []string{"node_modules", "favicon.ico"}
	specialChars     = regexp.MustCompile(`[~'!()*]`)
	urlFriendly      = regexp.MustCompile(`^[A-Za-z0-9\-_.!~*'()]+$`)
	scopedName       = regexp.MustCompile(`^@([^/]+?)/([^/]+?)$`)
)

// InvalidNameError lists every rule a project name breaks.
type InvalidNameError struct {
	Name     string
	Problems []string
}

func (e *InvalidNameError) Error() string {
	return "Sorry, " + strings.Join(e.Problems, " and ") + "."
}

// ValidateName checks a project name against the package naming rules of
// the npm registry, so the generated package.json stays publishable.
func ValidateName(name string) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if name == "" {
		add("name length must be greater than zero")
	}
	if strings.HasPrefix(name, ".") {
		add("name cannot start with a period")
	}
	if strings.HasPrefix(name, "_") {
		add("name cannot start with an underscore")
	}
	if strings.TrimSpace(name) != name {
		add("name cannot contain leading or trailing spaces")
	}
	for _, b := range blacklistedNames {
		if strings.ToLower(name) == b {
			add("%s is a blacklisted name", b)
		}
	}

	if len(name) > maxNameLength {
		add("name can no longer contain more than %d characters", maxNameLength)
	}
	if strings.ToLower(name) != name {
		add("name can no longer contain capital letters")
	}
	segments := strings.Split(name, "/")
	if specialChars.MatchString(segments[len(segments)-1]) {
		add(`name can no longer contain special characters ("~'!()*")`)
	}
	if name != "" && !urlFriendly.MatchString(name) {
		m := scopedName.FindStringSubmatch(name)
		if m == nil || !urlFriendly.MatchString(m[1]) || !urlFriendly.MatchString(m[2]) {
			add("name can only contain URL-friendly characters")
		}
	}

	if len(problems) > 0 {
		return &InvalidNameError{Name: name, Problems: problems}
	}
	return nil
}

// ParseMock parses --mock overrides: comma-separated key=value pairs, where
// a bare key means true. Values true/false and numbers are coerced.
func ParseMock(s string) (map[string]any, error) {
	data := map[string]any{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid mock pair %q: missing key", pair)
		}
		if !hasValue {
			data[key] = true
			continue
		}
		data[key] = coerce(strings.TrimSpace(value))
	}
	return data, nil
}

func coerce(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}
