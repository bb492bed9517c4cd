package filter

import (
	"fmt"
	"strings"
)

// FromFlags builds a Config from command line values keyed by the Config yaml names.
// Tag lists are given as "key:[glob1,glob2]".
func FromFlags(vals map[string][]string) (Config, error) {
	if len(vals) == 0 {
		return Config{}, nil
	}
	tagAllow, err := parseFilters(vals[SpanTagAllowList])
	if err != nil {
		return Config{}, err
	}
	tagDeny, err := parseFilters(vals[SpanTagDenyList])
	if err != nil {
		return Config{}, err
	}
	return Config{
		SpanAllowList:    vals[SpanAllowList],
		SpanDenyList:     vals[SpanDenyList],
		SpanTagAllowList: tagAllow,
		SpanTagDenyList:  tagDeny,
		AttributeInclude: vals[AttributeInclude],
		AttributeExclude: vals[AttributeExclude],
	}, nil
}

func FromConfig(cfg Config) Filter {
	if cfg.Empty() {
		return nil
	}
	return NewGlobFilter(cfg)
}

// Merge appends the lists of other to cfg.
func (cfg Config) Merge(other Config) Config {
	out := Config{
		SpanAllowList:    append(append([]string{}, cfg.SpanAllowList...), other.SpanAllowList...),
		SpanDenyList:     append(append([]string{}, cfg.SpanDenyList...), other.SpanDenyList...),
		AttributeInclude: append(append([]string{}, cfg.AttributeInclude...), other.AttributeInclude...),
		AttributeExclude: append(append([]string{}, cfg.AttributeExclude...), other.AttributeExclude...),
		SpanTagAllowList: mergeTags(cfg.SpanTagAllowList, other.SpanTagAllowList),
		SpanTagDenyList:  mergeTags(cfg.SpanTagDenyList, other.SpanTagDenyList),
	}
	return out
}

func mergeTags(a, b map[string][]string) map[string][]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string][]string, len(a)+len(b))
	for k, v := range a {
		out[k] = append(out[k], v...)
	}
	for k, v := range b {
		out[k] = append(out[k], v...)
	}
	return out
}

func parseFilters(slice []string) (map[string][]string, error) {
	if len(slice) == 0 {
		return nil, nil
	}
	out := make(map[string][]string)

	// each string in the slice is of the form: "tagK:[glob1, glob2, ...]"
	for _, tag := range slice {
		s := strings.SplitN(tag, ":", 2)
		if len(s) != 2 {
			return nil, fmt.Errorf("invalid span tag filter: %s", tag)
		}
		patterns, err := parseValue(s[1])
		if err != nil {
			return nil, err
		}
		out[s[0]] = append(out[s[0]], patterns...)
	}
	return out, nil
}

// Gets a string slice from a string of the form "[foo*, bar*, ...]"
func parseValue(val string) ([]string, error) {
	if !strings.HasPrefix(val, "[") || !strings.HasSuffix(val, "]") {
		return nil, fmt.Errorf("invalid span tag filter: %s", val)
	}
	parts := strings.Split(val[1:len(val)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
