package rdapclient

import "strings"

// VCard is the jCard representation of an RDAP entity's contact
// details (RFC 7095): a two-element array, "vcard" followed by a list
// of property tuples. The raw tuple-of-tuples shape is kept as the
// source of truth; accessors index by lower-cased property name and
// return the first occurrence, so nonstandard extensions are never
// lost even though they have no dedicated accessor.
type VCard struct {
	Properties []VCardProperty
}

// VCardProperty is one jCard property: [name, params, type, value...].
type VCardProperty struct {
	Name   string
	Params map[string][]string
	Type   string
	Value  any
}

// VCardAddress holds the seven ordered "adr" positional components.
// Empty positions are "" rather than omitted, per spec.md §9
// ("Optional-everywhere schema... do not conflate absent with empty
// for strings where empty is a valid value, notably adr").
type VCardAddress struct {
	POBox      string
	Extended   string
	Street     string
	Locality   string
	Region     string
	PostalCode string
	Country    string
}

// ParseVCard decodes a vcardArray value (as produced by json.Unmarshal
// into an any, i.e. []any{"vcard", []any{...}}) into a VCard. A value
// that isn't the expected two-element ["vcard", [...]] shape yields a
// DecodeError rather than a panic, since vcardArray is attacker- and
// registry-controlled input.
func ParseVCard(raw any) (*VCard, error) {
	arr, ok := raw.([]any)
	if !ok || len(arr) != 2 {
		return nil, &Error{Kind: KindDecodeError, Message: "vcardArray: not a 2-element array"}
	}
	if head, ok := arr[0].(string); !ok || lower(head) != "vcard" {
		return nil, &Error{Kind: KindDecodeError, Message: "vcardArray: missing 'vcard' header"}
	}
	props, ok := arr[1].([]any)
	if !ok {
		return nil, &Error{Kind: KindDecodeError, Message: "vcardArray: properties element not an array"}
	}

	v := &VCard{Properties: make([]VCardProperty, 0, len(props))}
	for _, p := range props {
		tuple, ok := p.([]any)
		if !ok || len(tuple) < 4 {
			continue // lenient: skip malformed property tuples rather than failing the whole card
		}
		name, _ := tuple[0].(string)
		vt, _ := tuple[2].(string)
		prop := VCardProperty{
			Name:   lower(name),
			Params: paramsFromAny(tuple[1]),
			Type:   vt,
		}
		if len(tuple) == 4 {
			prop.Value = tuple[3]
		} else {
			prop.Value = tuple[3:]
		}
		v.Properties = append(v.Properties, prop)
	}
	return v, nil
}

func paramsFromAny(raw any) map[string][]string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = []string{t}
		case []any:
			out[k] = toStringSlice(t)
		}
	}
	return out
}

// property returns the first property with the given lower-cased name.
func (v *VCard) property(name string) *VCardProperty {
	if v == nil {
		return nil
	}
	for i := range v.Properties {
		if v.Properties[i].Name == name {
			return &v.Properties[i]
		}
	}
	return nil
}

func (v *VCard) stringValue(name string) string {
	p := v.property(name)
	if p == nil {
		return ""
	}
	switch val := p.Value.(type) {
	case string:
		return val
	case []any:
		parts := toStringSlice(val)
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// FN returns the full formatted name ("fn" property).
func (v *VCard) FN() string { return v.stringValue("fn") }

// Org returns the organization name ("org" property). When the value
// is structured (organization name plus unit names), only the first
// component is returned.
func (v *VCard) Org() string {
	p := v.property("org")
	if p == nil {
		return ""
	}
	if arr, ok := p.Value.([]any); ok && len(arr) > 0 {
		if s, ok := arr[0].(string); ok {
			return s
		}
	}
	return v.stringValue("org")
}

// Email returns the first "email" property's value.
func (v *VCard) Email() string { return v.stringValue("email") }

// Tel returns the first "tel" property's value.
func (v *VCard) Tel() string { return v.stringValue("tel") }

// URL returns the first "url" property's value.
func (v *VCard) URL() string { return v.stringValue("url") }

// Role returns the first "role" or "title" property's value, role
// taking precedence when both are present.
func (v *VCard) Role() string {
	if r := v.stringValue("role"); r != "" {
		return r
	}
	return v.stringValue("title")
}

// N returns the structured name components (family, given, additional,
// prefixes, suffixes) joined with a space, best-effort.
func (v *VCard) N() string { return v.stringValue("n") }

// Adr returns the structured "adr" property's seven ordered
// components. Returns a zero-value VCardAddress (all fields "") when
// the property is absent or not structured, never nil, so callers
// don't need a presence check before reading fields.
func (v *VCard) Adr() VCardAddress {
	p := v.property("adr")
	if p == nil {
		return VCardAddress{}
	}
	arr, ok := p.Value.([]any)
	if !ok {
		return VCardAddress{}
	}
	get := func(i int) string {
		if i >= len(arr) {
			return ""
		}
		switch x := arr[i].(type) {
		case string:
			return x
		case []any:
			return strings.Join(toStringSlice(x), " ")
		}
		return ""
	}
	return VCardAddress{
		POBox:      get(0),
		Extended:   get(1),
		Street:     get(2),
		Locality:   get(3),
		Region:     get(4),
		PostalCode: get(5),
		Country:    get(6),
	}
}
