package descriptors

// Field identifies one overridable piece of descriptor metadata.
type Field int

const (
	// FieldUnknown guards against unparsed input.
	FieldUnknown Field = iota
	FieldReadOnly
	FieldCategory
	FieldConverter
	FieldDescription
	FieldDisplayName
	// FieldEditor covers the per-kind editor table.
	FieldEditor
)

func (f Field) String() string {
	switch f {
	case FieldReadOnly:
		return "readOnly"
	case FieldCategory:
		return "category"
	case FieldConverter:
		return "converter"
	case FieldDescription:
		return "description"
	case FieldDisplayName:
		return "displayName"
	case FieldEditor:
		return "editor"
	default:
		return "unknown"
	}
}

// ParseField converts a field name into a Field. Returns FieldUnknown for
// unrecognised values.
func ParseField(value string) Field {
	switch value {
	case "readOnly", "readonly", "read_only":
		return FieldReadOnly
	case "category":
		return FieldCategory
	case "converter":
		return FieldConverter
	case "description":
		return FieldDescription
	case "displayName", "displayname", "display_name":
		return FieldDisplayName
	case "editor", "editors":
		return FieldEditor
	default:
		return FieldUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	*f = ParseField(string(text))
	return nil
}
