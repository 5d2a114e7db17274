package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/alexhholmes/bptdb/bptree"
)

// DOT writes the tree as a Graphviz digraph. Branches show one port per
// child pointer with keys between them; leaves show their keys. Leaf chain
// links are drawn as dashed edges that do not affect the layout.
func DOT[K any](w io.Writer, tree bptree.Walker[K]) error {
	l, err := collect(tree)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("digraph bptree {\n")
	b.WriteString("\tnode [shape=plain];\n")

	root := l.nodes[l.root]
	if root.IsLeaf() && len(root.Keys) == 0 {
		b.WriteString("\tempty [label=\"Tree is empty\"];\n}\n")
		_, err = io.WriteString(w, b.String())
		return err
	}

	for _, level := range l.levels {
		for _, id := range level {
			v := l.nodes[id]
			if v.IsLeaf() {
				writeLeaf(&b, v)
				continue
			}
			writeBranch(&b, v)
			for i, child := range v.Children {
				fmt.Fprintf(&b, "\tn%d:p%d -> n%d;\n", v.ID, i, child)
			}
		}
	}

	for i := 0; i+1 < len(l.leaves); i++ {
		fmt.Fprintf(&b, "\tn%d -> n%d [style=dashed, arrowhead=none, constraint=false];\n",
			l.leaves[i], l.leaves[i+1])
	}
	b.WriteString("}\n")

	_, err = io.WriteString(w, b.String())
	return err
}

const tableOpen = `<<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="2">`

func writeBranch[K any](b *strings.Builder, v bptree.NodeView[K]) {
	fmt.Fprintf(b, "\tn%d [label=%s<TR>", v.ID, tableOpen)
	for i := range v.Children {
		fmt.Fprintf(b, `<TD PORT="p%d">P%d</TD>`, i, i)
		if i < len(v.Keys) {
			fmt.Fprintf(b, "<TD>%s</TD>", html.EscapeString(fmt.Sprint(v.Keys[i])))
		}
	}
	b.WriteString("</TR></TABLE>>];\n")
}

func writeLeaf[K any](b *strings.Builder, v bptree.NodeView[K]) {
	fmt.Fprintf(b, "\tn%d [label=%s<TR>", v.ID, tableOpen)
	if len(v.Keys) == 0 {
		b.WriteString(`<TD BGCOLOR="lightblue">Empty Leaf</TD>`)
	}
	for _, k := range v.Keys {
		fmt.Fprintf(b, `<TD BGCOLOR="lightblue">%s</TD>`, html.EscapeString(fmt.Sprint(k)))
	}
	b.WriteString("</TR></TABLE>>];\n")
}
