package parser

// Limits are the resource ceilings enforced while parsing. Each check
// is O(1) per token; nothing beyond the current token is buffered.
type Limits struct {
	MaxPayloadBytes  int // total input size, checked before scanning
	MaxNestingDepth  int // open object/array scopes
	MaxArrayElements int // elements per array, checked mid-parse
	MaxStringBytes   int // decoded bytes per string token
}

// DefaultLimits returns the recommended production ceilings:
// 10 MiB payload, depth 10, 10,000 array elements, 1 MiB strings.
func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes:  10 << 20,
		MaxNestingDepth:  10,
		MaxArrayElements: 10_000,
		MaxStringBytes:   1 << 20,
	}
}
