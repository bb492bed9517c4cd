package filter

const (
	SpanAllowList    = "spanAllowList"
	SpanDenyList     = "spanDenyList"
	SpanTagAllowList = "spanTagAllowList"
	SpanTagDenyList  = "spanTagDenyList"
	AttributeInclude = "attributeInclude"
	AttributeExclude = "attributeExclude"
)

// Configuration for filtering spans before they are turned into events.
type Config struct {
	// List of glob pattern strings. Only spans with names matching the allow list are exported.
	SpanAllowList []string `yaml:"spanAllowList"`

	// List of glob pattern strings. Spans with names matching the deny list are dropped.
	SpanDenyList []string `yaml:"spanDenyList"`

	// Attribute key to glob patterns. Only spans with an attribute value matching one of the patterns are exported.
	SpanTagAllowList map[string][]string `yaml:"spanTagAllowList"`

	// Attribute key to glob patterns. Spans with an attribute value matching one of the patterns are dropped.
	SpanTagDenyList map[string][]string `yaml:"spanTagDenyList"`

	// List of glob pattern strings. Only attributes with matching keys become event fields.
	AttributeInclude []string `yaml:"attributeInclude"`

	// List of glob pattern strings. Attributes with matching keys are not added to events.
	AttributeExclude []string `yaml:"attributeExclude"`
}

func (cfg Config) Empty() bool {
	return len(cfg.SpanAllowList) == 0 && len(cfg.SpanDenyList) == 0 && len(cfg.SpanTagAllowList) == 0 &&
		len(cfg.SpanTagDenyList) == 0 && len(cfg.AttributeInclude) == 0 && len(cfg.AttributeExclude) == 0
}
