// main.go
// A Cobra-based CLI over the rdapclient package.
//
// Positional argument is the query string; the query type is normally
// auto-detected (see rdapclient.Classify) but can be forced with -t.
//
// Flags
//   -t, --type         force the query type instead of auto-detecting it
//   -s, --server       force every query to this RDAP base, skipping bootstrap
//   -f, --format       text | json | json-pretty (default text)
//       --json-source  registry | registrar, which object --json(-pretty) prints
//       --timeout      per-query timeout in seconds
//       --no-referral  skip the registrar referral hop for domain queries
//   -v, --verbose      print both registry and registrar objects in text mode
//
// Subcommands
//   domain, ip, asn, ns, entity, lookup   fetch a single object
//   tree                                  flush the related graph reachable from a seed
//   update                                refresh the bootstrap registries and persist the cache
//
// Env options for client construction:
//   RDAPCTL_UA, RDAPCTL_DNS_BOOTSTRAP, RDAPCTL_IPV4_BOOTSTRAP, RDAPCTL_IPV6_BOOTSTRAP, RDAPCTL_ASN_BOOTSTRAP
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	rc "github.com/openlookup/rdap"
)

var (
	flagType        string
	flagServer      string
	flagFormat      string
	flagJSONSource  string
	flagTimeout     int
	flagNoReferral  bool
	flagVerbose     bool
	flagMaxDepth    int
	flagFollowLinks bool
)

// exit codes per the documented CLI contract
const (
	exitOK           = 0
	exitQueryFailed  = 1
	exitInvalidUsage = 2
	exitNotFound     = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:           "rdapctl",
		Short:         "RDAP lookup CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagType, "type", "t", "", "override query type (domain|tld|ip|cidr|autnum|entity|nameserver)")
	root.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "force every query to this RDAP base URL")
	root.PersistentFlags().StringVarP(&flagFormat, "format", "f", "text", "output format: text|json|json-pretty")
	root.PersistentFlags().StringVar(&flagJSONSource, "json-source", "registry", "which object json/json-pretty prints: registry|registrar")
	root.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "per-query timeout in seconds (0 = client default)")
	root.PersistentFlags().BoolVar(&flagNoReferral, "no-referral", false, "skip the registrar referral hop for domain queries")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print both registry and registrar objects in text mode")

	root.AddCommand(cmdDomain(), cmdIP(), cmdASN(), cmdNS(), cmdEntity(), cmdLookup(), cmdTree(), cmdUpdate())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rdapctl:", err)
		return exitCodeFor(err)
	}
	return exitOK
}

func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	var rerr *rc.Error
	if errors.As(err, &rerr) {
		switch rerr.Kind {
		case rc.KindInvalidQuery:
			return exitInvalidUsage
		case rc.KindNotFound:
			return exitNotFound
		}
	}
	return exitQueryFailed
}

// newClient constructs the rdapclient.Client with env- and flag-configured options.
func newClient() *rc.Client {
	opts := []rc.Option{}
	if ua := os.Getenv("RDAPCTL_UA"); ua != "" {
		opts = append(opts, rc.WithUserAgent(ua))
	}
	if u := os.Getenv("RDAPCTL_DNS_BOOTSTRAP"); u != "" {
		opts = append(opts, rc.WithBootstrapURL(u))
	}
	if u := os.Getenv("RDAPCTL_IPV4_BOOTSTRAP"); u != "" {
		opts = append(opts, rc.WithIPv4BootstrapURL(u))
	}
	if u := os.Getenv("RDAPCTL_IPV6_BOOTSTRAP"); u != "" {
		opts = append(opts, rc.WithIPv6BootstrapURL(u))
	}
	if u := os.Getenv("RDAPCTL_ASN_BOOTSTRAP"); u != "" {
		opts = append(opts, rc.WithASNBootstrapURL(u))
	}
	if cfg, err := rc.Load(); err == nil {
		opts = append(opts, rc.WithConfig(cfg))
	}
	if flagTimeout > 0 {
		opts = append(opts, rc.WithTimeout(time.Duration(flagTimeout)*time.Second))
	}
	if flagServer != "" {
		opts = append(opts, rc.WithOverrideServer(flagServer))
	}
	if flagNoReferral {
		opts = append(opts, rc.WithFollowReferral(false))
	}
	if dir, err := os.UserCacheDir(); err == nil {
		opts = append(opts, rc.WithBootstrapCacheDir(dir+"/rdap"))
	}
	return rc.New(opts...)
}

func parseTypeOverride() (*rc.QueryType, error) {
	if flagType == "" {
		return nil, nil
	}
	var qt rc.QueryType
	switch strings.ToLower(flagType) {
	case "domain":
		qt = rc.QueryDomain
	case "tld":
		qt = rc.QueryTld
	case "ip":
		qt = rc.QueryIP
	case "cidr":
		qt = rc.QueryCIDR
	case "autnum", "asn":
		qt = rc.QueryAutnum
	case "entity":
		qt = rc.QueryEntity
	case "nameserver", "ns":
		qt = rc.QueryNameserver
	default:
		return nil, fmt.Errorf("unrecognized --type %q", flagType)
	}
	return &qt, nil
}

func runQuery(seed string, override *rc.QueryType) (*rc.QueryResult, error) {
	c := newClient()
	ctx := context.Background()
	return c.Query(ctx, seed, override)
}

func cmdDomain() *cobra.Command {
	return &cobra.Command{
		Use:   "domain <fqdn>",
		Short: "Fetch domain RDAP",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			qt := rc.QueryDomain
			return runAndRender(args[0], &qt)
		},
	}
}

func cmdIP() *cobra.Command {
	return &cobra.Command{
		Use:   "ip <ip|cidr>",
		Short: "Fetch IP network RDAP",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runAndRender(args[0], nil) // classifier tells IP apart from CIDR
		},
	}
}

func cmdASN() *cobra.Command {
	return &cobra.Command{
		Use:   "asn <AS12345|12345>",
		Short: "Fetch autnum RDAP",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			qt := rc.QueryAutnum
			return runAndRender(args[0], &qt)
		},
	}
}

func cmdNS() *cobra.Command {
	return &cobra.Command{
		Use:   "ns <hostname>",
		Short: "Fetch nameserver RDAP (requires -s/--server)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			qt := rc.QueryNameserver
			return runAndRender(args[0], &qt)
		},
	}
}

func cmdEntity() *cobra.Command {
	return &cobra.Command{
		Use:   "entity <handle>",
		Short: "Fetch entity RDAP (requires -s/--server)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			qt := rc.QueryEntity
			return runAndRender(args[0], &qt)
		},
	}
}

func cmdLookup() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <query>",
		Short: "Auto-detect and fetch RDAP (ASN/IP/CIDR/TLD/domain/entity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			override, err := parseTypeOverride()
			if err != nil {
				return err
			}
			return runAndRender(args[0], override)
		},
	}
}

func runAndRender(seed string, override *rc.QueryType) error {
	if flagType != "" {
		o, err := parseTypeOverride()
		if err != nil {
			return err
		}
		override = o
	}
	result, err := runQuery(seed, override)
	if err != nil {
		return err
	}
	return renderResult(result)
}

func cmdUpdate() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the IANA bootstrap registries and persist them to the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			if err := c.RefreshBootstrap(context.Background()); err != nil {
				return err
			}
			fmt.Println("bootstrap registries refreshed")
			return nil
		},
	}
}

// ---- rendering ----------------------------------------------------------

func renderResult(r *rc.QueryResult) error {
	switch flagFormat {
	case "json", "json-pretty":
		obj := r.Registry
		if flagJSONSource == "registrar" {
			if r.Registrar == nil {
				return errors.New("no registrar object was resolved for this query")
			}
			obj = r.Registrar
		}
		if flagFormat == "json-pretty" {
			return printJSONIndent(obj)
		}
		return printJSON(obj)
	default:
		return renderText(r)
	}
}

func renderText(r *rc.QueryResult) error {
	printAny(r.Registry)
	if r.Registrar != nil && (flagVerbose || r.Registry == nil) {
		fmt.Println()
		fmt.Printf("registrar (via %s):\n", r.RegistrarURL)
		printAny(r.Registrar)
	}
	if r.AbuseContact != "" || r.AdminContact != "" || r.TechContact != "" {
		fmt.Println()
		fmt.Println("contacts:")
		if r.AbuseContact != "" {
			fmt.Printf("  abuse:         %s\n", r.AbuseContact)
		}
		if r.AdminContact != "" {
			fmt.Printf("  administrative: %s\n", r.AdminContact)
		}
		if r.TechContact != "" {
			fmt.Printf("  technical:     %s\n", r.TechContact)
		}
	}
	return nil
}

func printAny(obj rc.Object) {
	switch v := obj.(type) {
	case *rc.Domain:
		printDomain(v)
	case *rc.Nameserver:
		printNameserver(v)
	case *rc.IPNetwork:
		printIPNet(v)
	case *rc.Autnum:
		printAutnum(v)
	case *rc.Entity:
		printEntity(v)
	case nil:
	default:
		fmt.Printf("%+v\n", v)
	}
}

func printJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printJSONIndent(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printHeader(kind, handle, extra string) {
	fmt.Printf("\n=== %s: %s %s===\n", strings.ToUpper(kind), handle, extra)
}

func printDomain(d *rc.Domain) {
	printHeader("domain", d.LDHName, "")
	fmt.Printf("handle: %s\n", d.Handle)
	if len(d.Status) > 0 {
		fmt.Printf("status: %v\n", d.Status)
	}
	if d.SecureDNS != nil {
		fmt.Printf("dnssec: zoneSigned=%v delegationSigned=%v\n", d.SecureDNS.ZoneSigned, d.SecureDNS.DelegationSigned)
	}
	if len(d.Nameservers) > 0 {
		fmt.Println("nameservers:")
		for _, ns := range d.Nameservers {
			fmt.Printf("  - %s\n", ns.LDHName)
		}
	}
	if len(d.Entities) > 0 {
		fmt.Println("entities:")
		for _, e := range d.Entities {
			fmt.Printf("  - %s (%v)\n", e.Handle, e.Roles)
		}
	}
}

func printNameserver(n *rc.Nameserver) {
	printHeader("nameserver", n.LDHName, "")
	fmt.Printf("handle: %s\n", n.Handle)
	if n.IPAddresses != nil {
		if len(n.IPAddresses.V4) > 0 {
			fmt.Printf("v4: %v\n", n.IPAddresses.V4)
		}
		if len(n.IPAddresses.V6) > 0 {
			fmt.Printf("v6: %v\n", n.IPAddresses.V6)
		}
	}
	if len(n.Entities) > 0 {
		fmt.Println("entities:")
		for _, e := range n.Entities {
			fmt.Printf("  - %s (%v)\n", e.Handle, e.Roles)
		}
	}
}

func printIPNet(n *rc.IPNetwork) {
	printHeader("ip network", n.Handle, fmt.Sprintf("(%s %s-%s) ", n.IPVersion, n.StartAddress, n.EndAddress))
	fmt.Printf("name: %s country: %s parent: %s\n", n.Name, n.Country, n.ParentHandle)
	if len(n.CIDR0CIDRs) > 0 {
		for _, p := range n.CIDR0CIDRs {
			if p.V4Prefix != "" {
				fmt.Printf("  cidr: %s/%d\n", p.V4Prefix, p.Length)
			}
			if p.V6Prefix != "" {
				fmt.Printf("  cidr: %s/%d\n", p.V6Prefix, p.Length)
			}
		}
	}
}

func printAutnum(a *rc.Autnum) {
	printHeader("autnum", a.Handle, fmt.Sprintf("(%d-%d) ", a.StartAutnum, a.EndAutnum))
	fmt.Printf("name: %s country: %s type: %s\n", a.Name, a.Country, a.Type)
}

func printEntity(e *rc.Entity) {
	printHeader("entity", e.Handle, "")
	if len(e.Roles) > 0 {
		fmt.Printf("roles: %v\n", e.Roles)
	}
}

// ---- tree (full related-graph walk) -------------------------------------

func cmdTree() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <seed>",
		Short: "Flush the related-object graph reachable from a seed (domain/ip/asn/ns/entity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			ctx := context.Background()

			seed := args[0]
			override, err := parseTypeOverride()
			if err != nil {
				return err
			}
			result, err := c.Query(ctx, seed, override)
			if err != nil {
				return err
			}

			seen := newSeenSet()
			graph := &Graph{Nodes: map[string]GraphNode{}, Edges: []GraphEdge{}}
			if err := walkAny(ctx, c, result.Registry, 0, flagMaxDepth, flagFollowLinks, seen, graph); err != nil {
				return err
			}

			if flagFormat == "json" || flagFormat == "json-pretty" {
				if flagFormat == "json-pretty" {
					return printJSONIndent(graph)
				}
				return printJSON(graph)
			}

			printHeader("tree", seed, fmt.Sprintf("(max-depth=%d follow-links=%v) ", flagMaxDepth, flagFollowLinks))
			printGraphText(graph)
			return nil
		},
	}
	cmd.Flags().IntVar(&flagMaxDepth, "max-depth", 5, "maximum recursion depth when walking the graph")
	cmd.Flags().BoolVar(&flagFollowLinks, "follow-links", false, "follow RDAP links[] to fetch additional objects (best-effort)")
	return cmd
}

type Graph struct {
	Nodes map[string]GraphNode `json:"nodes"`
	Edges []GraphEdge          `json:"edges"`
}

type GraphNode struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rel  string `json:"rel"`
}

type seenSet struct{ ids map[string]struct{} }

func newSeenSet() *seenSet { return &seenSet{ids: map[string]struct{}{}} }

func (s *seenSet) add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func makeNodeID(kind, key string) string { return kind + ":" + strings.ToLower(key) }

func walkAny(ctx context.Context, c *rc.Client, obj rc.Object, depth, maxDepth int, followLinks bool, seen *seenSet, g *Graph) error {
	if obj == nil || depth > maxDepth {
		return nil
	}
	switch v := obj.(type) {
	case *rc.Domain:
		id := makeNodeID("domain", v.LDHName)
		if !seen.add(id) {
			return nil
		}
		addNode(g, id, "domain", v)
		for _, ns := range v.Nameservers {
			qt := rc.QueryNameserver
			if res, err := c.Query(ctx, ns.LDHName, &qt); err == nil {
				if full, ok := res.Registry.(*rc.Nameserver); ok {
					to := makeNodeID("nameserver", full.LDHName)
					addEdge(g, id, to, "nameserver")
					_ = walkAny(ctx, c, full, depth+1, maxDepth, followLinks, seen, g)
				}
			}
		}
		walkEntities(ctx, c, id, v.Entities, depth, maxDepth, followLinks, seen, g)
		if followLinks {
			walkLinks(ctx, c, id, v.Links, depth, maxDepth, seen, g)
		}
	case *rc.Nameserver:
		id := makeNodeID("nameserver", v.LDHName)
		if !seen.add(id) {
			return nil
		}
		addNode(g, id, "nameserver", v)
		walkEntities(ctx, c, id, v.Entities, depth, maxDepth, followLinks, seen, g)
		if followLinks {
			walkLinks(ctx, c, id, v.Links, depth, maxDepth, seen, g)
		}
	case *rc.IPNetwork:
		id := makeNodeID("ip-network", v.Handle)
		if !seen.add(id) {
			return nil
		}
		addNode(g, id, "ip-network", v)
		walkEntities(ctx, c, id, v.Entities, depth, maxDepth, followLinks, seen, g)
		if followLinks {
			walkLinks(ctx, c, id, v.Links, depth, maxDepth, seen, g)
		}
	case *rc.Autnum:
		id := makeNodeID("autnum", v.Handle)
		if !seen.add(id) {
			return nil
		}
		addNode(g, id, "autnum", v)
		walkEntities(ctx, c, id, v.Entities, depth, maxDepth, followLinks, seen, g)
		if followLinks {
			walkLinks(ctx, c, id, v.Links, depth, maxDepth, seen, g)
		}
	case *rc.Entity:
		id := makeNodeID("entity", v.Handle)
		if !seen.add(id) {
			return nil
		}
		addNode(g, id, "entity", v)
		for i := range v.Entities {
			to := makeNodeID("entity", v.Entities[i].Handle)
			addEdge(g, id, to, "entity")
			_ = walkAny(ctx, c, &v.Entities[i], depth+1, maxDepth, followLinks, seen, g)
		}
		if followLinks {
			walkLinks(ctx, c, id, v.Links, depth, maxDepth, seen, g)
		}
	default:
		return errors.New("unknown seed type")
	}
	return nil
}

func walkEntities(ctx context.Context, c *rc.Client, fromID string, entities []rc.Entity, depth, maxDepth int, followLinks bool, seen *seenSet, g *Graph) {
	for i := range entities {
		qt := rc.QueryEntity
		res, err := c.Query(ctx, entities[i].Handle, &qt)
		var ent *rc.Entity
		if err == nil {
			ent, _ = res.Registry.(*rc.Entity)
		}
		if ent == nil {
			ent = &entities[i]
		}
		to := makeNodeID("entity", ent.Handle)
		addEdge(g, fromID, to, "entity")
		_ = walkAny(ctx, c, ent, depth+1, maxDepth, followLinks, seen, g)
	}
}

// walkLinks tries to follow RDAP link relations that look like domain/entity/ns/autnum/ip.
// Best-effort: failures are swallowed and the link is simply not added to the graph.
func walkLinks(ctx context.Context, c *rc.Client, fromID string, links []rc.Link, depth, maxDepth int, seen *seenSet, g *Graph) {
	for _, l := range links {
		if l.Href == "" {
			continue
		}
		u, err := url.Parse(l.Href)
		if err != nil || u.Path == "" {
			continue
		}
		path := strings.ToLower(u.Path)
		var qt rc.QueryType
		var kind string
		switch {
		case strings.Contains(path, "/domain/"):
			qt, kind = rc.QueryDomain, "domain"
		case strings.Contains(path, "/nameserver/"):
			qt, kind = rc.QueryNameserver, "nameserver"
		case strings.Contains(path, "/entity/"):
			qt, kind = rc.QueryEntity, "entity"
		case strings.Contains(path, "/autnum/"):
			qt, kind = rc.QueryAutnum, "autnum"
		case strings.Contains(path, "/ip/"):
			qt, kind = rc.QueryIP, "ip-network"
		default:
			continue
		}
		name := tail(path)
		if name == "" {
			continue
		}
		res, err := c.Query(ctx, name, &qt)
		if err != nil {
			continue
		}
		_ = walkAnyLinked(ctx, c, kind, res.Registry, fromID, l.Rel, depth, maxDepth, seen, g)
	}
}

func walkAnyLinked(ctx context.Context, c *rc.Client, kind string, obj rc.Object, fromID, rel string, depth, maxDepth int, seen *seenSet, g *Graph) error {
	id := objectNodeID(kind, obj)
	if id == "" {
		return nil
	}
	addEdge(g, fromID, id, "link:"+relOr(kind, rel))
	return walkAny(ctx, c, obj, depth+1, maxDepth, true, seen, g)
}

func objectNodeID(kind string, obj rc.Object) string {
	switch v := obj.(type) {
	case *rc.Domain:
		return makeNodeID(kind, v.LDHName)
	case *rc.Nameserver:
		return makeNodeID(kind, v.LDHName)
	case *rc.IPNetwork:
		return makeNodeID(kind, v.Handle)
	case *rc.Autnum:
		return makeNodeID(kind, v.Handle)
	case *rc.Entity:
		return makeNodeID(kind, v.Handle)
	default:
		return ""
	}
}

var slashTail = regexp.MustCompile(`/([^/]+)$`)

func tail(p string) string {
	m := slashTail.FindStringSubmatch(p)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}

func relOr(def, rel string) string {
	if rel == "" {
		return def
	}
	return rel
}

func addNode(g *Graph, id, kind string, data any) {
	if _, ok := g.Nodes[id]; ok {
		return
	}
	g.Nodes[id] = GraphNode{ID: id, Kind: kind, Data: data}
}

func addEdge(g *Graph, from, to, rel string) {
	g.Edges = append(g.Edges, GraphEdge{From: from, To: to, Rel: rel})
}

func printGraphText(g *Graph) {
	kinds := map[string][]GraphNode{}
	for _, n := range g.Nodes {
		kinds[n.Kind] = append(kinds[n.Kind], n)
	}
	order := []string{"domain", "nameserver", "entity", "ip-network", "autnum"}
	for _, k := range order {
		nodes := kinds[k]
		if len(nodes) == 0 {
			continue
		}
		fmt.Printf("\n[%s]\n", strings.ToUpper(k))
		for _, n := range nodes {
			fmt.Printf("- %s\n", n.ID)
			for _, e := range g.Edges {
				if e.From == n.ID {
					fmt.Printf("    -> %s (%s)\n", e.To, e.Rel)
				}
			}
		}
	}
}
