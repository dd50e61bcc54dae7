package output

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children []*treeNode
}

func (n *treeNode) findOrCreate(name string) *treeNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	child := &treeNode{name: name}
	n.children = append(n.children, child)
	return child
}

// PrintTree renders the scanned directories as one tree per host, e.g.
// http://example.com/admin/ and http://example.com/admin/config/ become
// example.com -> admin -> config.
func PrintTree(w io.Writer, dirURLs []string) {
	if len(dirURLs) == 0 {
		return
	}

	paths := make([]string, 0, len(dirURLs))
	seen := make(map[string]bool, len(dirURLs))
	for _, raw := range dirURLs {
		p := treePath(raw)
		if p != "" && !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	root := &treeNode{name: "/"}
	for _, p := range paths {
		node := root
		for _, part := range strings.Split(p, "/") {
			node = node.findOrCreate(part)
		}
	}

	fmt.Fprintf(w, "\n  Discovered directories:\n")
	printChildren(w, root, "  ")
}

// treePath turns a directory URL into "host/seg1/seg2".
func treePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.Trim(raw, "/")
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return u.Host
	}
	return u.Host + "/" + p
}

func printChildren(w io.Writer, node *treeNode, prefix string) {
	for i, child := range node.children {
		isLast := i == len(node.children)-1
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, child.name)
		nextPrefix := prefix + "│   "
		if isLast {
			nextPrefix = prefix + "    "
		}
		printChildren(w, child, nextPrefix)
	}
}
