package output

import (
	"fmt"
	"io"
	"net"
	"slices"
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

// PrintTree renders live hosts as a label tree rooted at their registrable
// suffix, e.g. api.dev.example.com under example.com -> dev -> api. Ports
// and paths are dropped; IP addresses are listed as they are.
func PrintTree(w io.Writer, hosts []string) {
	seen := make(map[string]bool, len(hosts))
	var unique []string
	for _, h := range hosts {
		h = strings.ToLower(hostname(h))
		if h != "" && !seen[h] {
			seen[h] = true
			unique = append(unique, h)
		}
	}
	if len(unique) == 0 {
		return
	}
	slices.SortFunc(unique, func(a, b string) int {
		return strings.Compare(reversed(a), reversed(b))
	})

	root := &treeNode{}
	for _, h := range unique {
		labels := strings.Split(h, ".")
		node := root
		if net.ParseIP(h) == nil && len(labels) >= 2 {
			node = node.findOrCreate(strings.Join(labels[len(labels)-2:], "."))
			labels = labels[:len(labels)-2]
		} else {
			node = node.findOrCreate(h)
			labels = nil
		}
		for i := len(labels) - 1; i >= 0; i-- {
			node = node.findOrCreate(labels[i])
		}
	}

	fmt.Fprintf(w, "\n  Live hosts:\n")
	for _, top := range root.children {
		fmt.Fprintf(w, "  %s\n", top.name)
		printChildren(w, top, "  ")
	}
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

func hostname(h string) string {
	if i := strings.IndexByte(h, '/'); i >= 0 {
		h = h[:i]
	}
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i >= 0 {
			return h[1:i]
		}
	}
	if i := strings.LastIndexByte(h, ':'); i >= 0 && strings.Count(h, ":") == 1 {
		h = h[:i]
	}
	return h
}

func reversed(host string) string {
	labels := strings.Split(host, ".")
	slices.Reverse(labels)
	return strings.Join(labels, ".")
}
