package rdapclient

import (
	"net/netip"
	"strconv"
	"strings"
)

// IPForm classifies how a raw query string relates to an IP address.
type IPForm int

const (
	NotAnIP IPForm = iota
	FormIPv4
	FormIPv6
	FormCIDR
)

// NormalizeIP expands shorthand IPv4 forms and classifies the result.
//
// Shorthand expansion mirrors historical inet_aton behavior restricted
// to decimal octets: "a.b" -> "a.0.0.b", "a.b.c" -> "a.b.0.c". A bare
// integer is left alone (NotAnIP) so the classifier can treat it as an
// autnum or TLD candidate. Anything containing ':' is parsed as IPv6.
func NormalizeIP(s string) (IPForm, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAnIP, "", nil
	}

	if i := strings.IndexByte(s, '/'); i >= 0 {
		return normalizeCIDR(s, i)
	}

	if strings.Contains(s, ":") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return NotAnIP, "", nil
		}
		return FormIPv6, addr.String(), nil
	}

	expanded, ok := expandShorthandV4(s)
	if !ok {
		return NotAnIP, "", nil
	}
	addr, err := netip.ParseAddr(expanded)
	if err != nil {
		return NotAnIP, "", nil
	}
	return FormIPv4, addr.String(), nil
}

func normalizeCIDR(s string, slash int) (IPForm, string, error) {
	addrPart, prefixPart := s[:slash], s[slash+1:]
	n, err := strconv.Atoi(prefixPart)
	if err != nil {
		return NotAnIP, "", &Error{Kind: KindInvalidQuery, Message: "malformed CIDR prefix: " + s}
	}

	if strings.Contains(addrPart, ":") {
		addr, err := netip.ParseAddr(addrPart)
		if err != nil || n < 0 || n > 128 {
			return NotAnIP, "", &Error{Kind: KindInvalidQuery, Message: "malformed IPv6 CIDR: " + s}
		}
		return FormCIDR, addr.String() + "/" + strconv.Itoa(n), nil
	}

	expanded, ok := expandShorthandV4(addrPart)
	if !ok {
		return NotAnIP, "", &Error{Kind: KindInvalidQuery, Message: "malformed IPv4 CIDR: " + s}
	}
	addr, err := netip.ParseAddr(expanded)
	if err != nil || n < 0 || n > 32 {
		return NotAnIP, "", &Error{Kind: KindInvalidQuery, Message: "malformed IPv4 CIDR: " + s}
	}
	// Policy: accept and preserve host bits rather than rewriting to the
	// network address; the literal is passed through to the RDAP server.
	return FormCIDR, addr.String() + "/" + strconv.Itoa(n), nil
}

// expandShorthandV4 expands the "a.b" and "a.b.c" historical inet_aton
// forms and accepts "a.b.c.d" as is. A bare single integer is deliberately left unexpanded (ok=false) so it
// can fall through to autnum/TLD classification.
func expandShorthandV4(s string) (string, bool) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return "", false
	}
	octets := make([]int, len(parts))
	for i, p := range parts {
		if p == "" {
			return "", false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return "", false
		}
		octets[i] = n
	}

	var a, b, c, d int
	switch len(octets) {
	case 2:
		a, b, c, d = octets[0], 0, 0, octets[1]
	case 3:
		a, b, c, d = octets[0], octets[1], 0, octets[2]
	case 4:
		a, b, c, d = octets[0], octets[1], octets[2], octets[3]
	}
	return strconv.Itoa(a) + "." + strconv.Itoa(b) + "." + strconv.Itoa(c) + "." + strconv.Itoa(d), true
}

// IsCIDR reports whether s parses as a CIDR (either family).
func IsCIDR(s string) bool {
	form, _, err := NormalizeIP(s)
	return err == nil && form == FormCIDR
}
