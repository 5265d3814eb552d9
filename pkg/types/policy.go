package types

// UnknownFieldPolicy controls what happens when an input object carries
// a key with no matching field in the schema.
type UnknownFieldPolicy int

const (
	// RejectUnknownFields aborts the bind with UnknownField. Default.
	RejectUnknownFields UnknownFieldPolicy = iota
	// IgnoreUnknownFields drops unrecognized keys. Must be opted into
	// explicitly; it is never the silent default.
	IgnoreUnknownFields
)

func (p UnknownFieldPolicy) String() string {
	switch p {
	case RejectUnknownFields:
		return "reject"
	case IgnoreUnknownFields:
		return "ignore"
	default:
		return "unknown"
	}
}
