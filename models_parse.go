package rdapclient

import (
	"encoding/json"
)

// Object is a union interface implemented by all object classes,
// including the Unknown pass-through fallback.
type Object interface {
	GetObjectClassName() string
}

// DecodeWarning records a decode failure that was swallowed rather
// than failing the whole response. Field names the object class being
// decoded, not the offending member: a member that fails to decode
// makes the whole object fall back to Unknown with a single warning;
// members are not dropped one by one.
type DecodeWarning struct {
	Field   string
	Message string
}

// ParseObject inspects the response shape and returns a typed object.
// Precedence: explicit error object, search-result envelopes,
// objectClassName dispatch, then Help, then Unknown as the final
// fallback so malformed-but-parseable bodies are never a hard failure.
func ParseObject(m map[string]any) (Object, []DecodeWarning, error) {
	if m == nil {
		return nil, nil, &Error{Kind: KindDecodeError, Message: "nil RDAP object"}
	}

	if _, ok := m["errorCode"]; ok {
		var v ErrorResponse
		if err := decodeInto(m, &v); err != nil {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "decode error object", Err: err}
		}
		return &v, nil, nil
	}
	if _, ok := m["domainSearchResults"]; ok {
		var v DomainSearchResults
		if err := decodeInto(m, &v); err != nil {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "decode domain search results", Err: err}
		}
		return &v, nil, nil
	}
	if _, ok := m["entitySearchResults"]; ok {
		var v EntitySearchResults
		if err := decodeInto(m, &v); err != nil {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "decode entity search results", Err: err}
		}
		return &v, nil, nil
	}
	if _, ok := m["nameserverSearchResults"]; ok {
		var v NameserverSearchResults
		if err := decodeInto(m, &v); err != nil {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "decode nameserver search results", Err: err}
		}
		return &v, nil, nil
	}

	ocn, _ := m["objectClassName"].(string)
	var warnings []DecodeWarning
	switch lower(ocn) {
	case "entity":
		var v Entity
		if err := decodeInto(m, &v); err != nil {
			warnings = append(warnings, DecodeWarning{Field: "entity", Message: err.Error()})
			return Unknown{Raw: m}, warnings, nil
		}
		if !v.Validate() {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "invalid entity objectClassName"}
		}
		return &v, nil, nil
	case "domain":
		var v Domain
		if err := decodeInto(m, &v); err != nil {
			warnings = append(warnings, DecodeWarning{Field: "domain", Message: err.Error()})
			return Unknown{Raw: m}, warnings, nil
		}
		if !v.Validate() {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "invalid domain objectClassName"}
		}
		return &v, nil, nil
	case "nameserver":
		var v Nameserver
		if err := decodeInto(m, &v); err != nil {
			warnings = append(warnings, DecodeWarning{Field: "nameserver", Message: err.Error()})
			return Unknown{Raw: m}, warnings, nil
		}
		if !v.Validate() {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "invalid nameserver objectClassName"}
		}
		return &v, nil, nil
	case "ip network":
		var v IPNetwork
		if err := decodeInto(m, &v); err != nil {
			warnings = append(warnings, DecodeWarning{Field: "ip network", Message: err.Error()})
			return Unknown{Raw: m}, warnings, nil
		}
		if !v.Validate() {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "invalid ip network objectClassName"}
		}
		return &v, nil, nil
	case "autnum":
		var v Autnum
		if err := decodeInto(m, &v); err != nil {
			warnings = append(warnings, DecodeWarning{Field: "autnum", Message: err.Error()})
			return Unknown{Raw: m}, warnings, nil
		}
		if !v.Validate() {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "invalid autnum objectClassName"}
		}
		return &v, nil, nil
	case "":
		// No discriminator: treat as a help-shaped envelope if it looks
		// like one, otherwise preserve the raw body opaquely.
		if _, ok := m["notices"]; ok && len(m) <= 3 {
			var v Help
			if err := decodeInto(m, &v); err == nil {
				return &v, nil, nil
			}
		}
		return Unknown{Raw: m}, nil, nil
	default:
		return Unknown{Raw: m}, nil, nil
	}
}

func decodeInto(m map[string]any, v any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
