package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/alexhholmes/bptdb/bptree"
)

// TextOptions control Text output.
type TextOptions struct {
	// Color enables ANSI colours regardless of the terminal.
	Color bool
	// HideIDs omits node ids from the diagram.
	HideIDs bool
}

type palette struct {
	branch *color.Color
	leaf   *color.Color
	id     *color.Color
	chain  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		branch: color.New(color.FgCyan, color.Bold),
		leaf:   color.New(color.FgGreen),
		id:     color.New(color.Faint),
		chain:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.branch, p.leaf, p.id, p.chain} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text writes an indented diagram of the tree followed by its leaf chain:
//
//	branch #1 [5]
//	├── branch #2 [3]
//	│   ├── leaf #4 [1 2]
//	│   └── leaf #5 [3 4]
//	└── branch #3 [7]
//	    ├── leaf #6 [5 6]
//	    └── leaf #7 [7]
//	chain: [1 2] → [3 4] → [5 6] → [7]
func Text[K any](w io.Writer, tree bptree.Walker[K], opts TextOptions) error {
	l, err := collect(tree)
	if err != nil {
		return err
	}

	t := textWriter[K]{layout: l, opts: opts, colors: newPalette(opts.Color)}
	t.node(l.root, "", "")

	t.b.WriteString("chain: ")
	for i, id := range l.leaves {
		if i > 0 {
			t.b.WriteString(t.colors.chain.Sprint(" → "))
		}
		t.b.WriteString(t.colors.leaf.Sprint(keys(l.nodes[id].Keys)))
	}
	t.b.WriteByte('\n')

	_, err = io.WriteString(w, t.b.String())
	return err
}

type textWriter[K any] struct {
	layout *layout[K]
	opts   TextOptions
	colors palette
	b      strings.Builder
}

func (t *textWriter[K]) node(id bptree.NodeID, prefix, childPrefix string) {
	v := t.layout.nodes[id]

	t.b.WriteString(prefix)
	kind, c := "leaf", t.colors.leaf
	if !v.IsLeaf() {
		kind, c = "branch", t.colors.branch
	}
	t.b.WriteString(kind)
	if !t.opts.HideIDs {
		t.b.WriteByte(' ')
		t.b.WriteString(t.colors.id.Sprintf("#%d", v.ID))
	}
	t.b.WriteByte(' ')
	t.b.WriteString(c.Sprint(keys(v.Keys)))
	t.b.WriteByte('\n')

	for i, child := range v.Children {
		if i == len(v.Children)-1 {
			t.node(child, childPrefix+"└── ", childPrefix+"    ")
		} else {
			t.node(child, childPrefix+"├── ", childPrefix+"│   ")
		}
	}
}

func keys[K any](ks []K) string {
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = fmt.Sprint(k)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Levels writes one line per depth with the keys of every node on it,
// root first.
func Levels[K any](w io.Writer, tree bptree.Walker[K]) error {
	l, err := collect(tree)
	if err != nil {
		return err
	}
	var b strings.Builder
	for depth, ids := range l.levels {
		fmt.Fprintf(&b, "%d:", depth)
		for _, id := range ids {
			b.WriteByte(' ')
			b.WriteString(keys(l.nodes[id].Keys))
		}
		b.WriteByte('\n')
	}
	_, err = io.WriteString(w, b.String())
	return err
}
