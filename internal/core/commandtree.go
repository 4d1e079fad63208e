package core

import (
	"sort"
	"strings"
)

// routeNode is one segment of the command route tree. This bot's surface is
// nearly flat — a handful of top-level commands plus the "prayer times"
// subcommand — but routing, help rendering and menu flattening all share the
// same shallow walk, so the segments still live in a tree.
type routeNode struct {
	seg      string
	cmd      *Command // nil for pure container nodes
	children map[string]*routeNode
}

func newRouteTree() *routeNode {
	return &routeNode{children: map[string]*routeNode{}}
}

func splitRoute(route string) []string {
	return strings.Fields(route)
}

// insert registers c under the given segments, creating container nodes along
// the way. Re-inserting a route replaces its command.
func (n *routeNode) insert(segs []string, c Command) {
	cur := n
	for _, seg := range segs {
		next, ok := cur.children[seg]
		if !ok {
			next = &routeNode{seg: seg, children: map[string]*routeNode{}}
			cur.children[seg] = next
		}
		cur = next
	}
	cur.cmd = &c
}

// lookup walks segs from n and returns the node reached, or nil when any
// segment is missing. The result may be a container without a command.
func (n *routeNode) lookup(segs []string) *routeNode {
	cur := n
	for _, seg := range segs {
		next, ok := cur.children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func (n *routeNode) step(seg string) (*routeNode, bool) {
	next, ok := n.children[seg]
	return next, ok
}

func (n *routeNode) sortedChildren() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
