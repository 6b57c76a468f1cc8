package graph

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/teevee/pkg/domain"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// GraphOverlay contains session data to highlight on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// Options tune GenerateMermaid.
type Options struct {
	// Entry is drawn as a circle. Defaults to "start".
	Entry string
	// Redirects lists the states each macro may force, drawn as dotted edges
	// from every node that uses the macro.
	Redirects map[string][]string
	Overlay   *GraphOverlay
}

// GenerateMermaid produces a Mermaid flowchart of the dialogue graph.
// Shapes: entry ((circle)), terminal ([stadium]), soft step [rectangle],
// waiting for input [/parallelogram/].
func GenerateMermaid(nodes []domain.Node, opts Options) string {
	entry := opts.Entry
	if entry == "" {
		entry = domain.DefaultEntryNodeID
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == entry:
			opener, closer = "((", "))"
		case node.Terminal:
			opener, closer = "([", "])"
		case node.NeedsInput():
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer)

		if node.Next != "" {
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow("", node.ID, node.Next), sanitizeMermaidID(node.Next))
		}
		for _, b := range node.Branches {
			target := b.Target
			if target == "" {
				target = node.ID
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow(b.When.String(), node.ID, target), sanitizeMermaidID(target))
		}
		for _, r := range redirectsOf(node, opts.Redirects) {
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, r.macro, sanitizeMermaidID(r.target))
		}
	}

	if opts.Overlay != nil {
		writeOverlay(&sb, opts.Overlay)
	}
	return sb.String()
}

// arrow draws moves between sub-flows (start/retry -> getmovie) dashed.
func arrow(label, from, to string) string {
	jump := path.Dir(from) != path.Dir(to)
	if label == "" {
		if jump {
			return "-.->"
		}
		return "-->"
	}
	safe := strings.NewReplacer(`"`, "'", "`", "'").Replace(label)
	if jump {
		return fmt.Sprintf("-. \"%s\" .->", safe)
	}
	return fmt.Sprintf("-- \"%s\" -->", safe)
}

type redirectEdge struct {
	macro  string
	target string
}

func redirectsOf(node domain.Node, redirects map[string][]string) []redirectEdge {
	if len(redirects) == 0 {
		return nil
	}
	used := map[string]bool{}
	mark := func(text string) {
		for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
			used[strings.ToUpper(m[1])] = true
		}
	}
	mark(node.Prompt)
	for _, b := range node.Branches {
		if b.When.Kind == domain.GuardMacro {
			used[strings.ToUpper(b.When.Arg)] = true
		}
		mark(b.Reply)
	}

	var edges []redirectEdge
	for name := range used {
		for _, target := range redirects[name] {
			edges = append(edges, redirectEdge{macro: name, target: target})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].macro != edges[j].macro {
			return edges[i].macro < edges[j].macro
		}
		return edges[i].target < edges[j].target
	})
	return edges
}

func writeOverlay(sb *strings.Builder, overlay *GraphOverlay) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text stays readable on both light and dark themes.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[string]bool)
	for _, id := range overlay.VisitedNodes {
		safeID := sanitizeMermaidID(id)
		if safeID != "" && !seen[safeID] {
			seen[safeID] = true
			fmt.Fprintf(sb, "    class %s visited;\n", safeID)
		}
	}
	if overlay.CurrentNode != "" {
		fmt.Fprintf(sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
	}
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", `\`, "_").Replace(id)
}
