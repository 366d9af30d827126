package table

import (
	"fmt"
	"io"

	"coredb/pager"

	"github.com/pkg/errors"
)

// PrintTree writes a recursive, depth-first rendering of the tree rooted at
// pageNum to w: two-space indent per level, "- leaf (size N)" followed by
// each key, or "- internal (size N)" followed by each child subtree and its
// separating key, then the right child subtree.
func (t *Table) PrintTree(w io.Writer, pageNum uint32, indent int) error {
	page, err := t.Pager.GetPage(pageNum)
	if err != nil {
		return err
	}

	pad := indentString(indent)
	switch NodeType(page) {
	case NodeTypeLeaf:
		n := NumCells(page)
		fmt.Fprintf(w, "%s- leaf (size %d)\n", pad, n)
		for i := uint32(0); i < n; i++ {
			fmt.Fprintf(w, "%s- %d\n", indentString(indent+1), LeafKey(page, i))
		}
	case NodeTypeInternal:
		n := NumKeys(page)
		fmt.Fprintf(w, "%s- internal (size %d)\n", pad, n)
		for i := uint32(0); i < n; i++ {
			child := internalChildAt(page, i)
			if child == InvalidPage {
				fmt.Fprintf(w, "%s- <empty child>\n", indentString(indent+1))
			} else if err := t.PrintTree(w, child, indent+1); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s- key %d\n", indentString(indent+1), InternalKey(page, i))
		}
		right := RightChild(page)
		if right == InvalidPage {
			fmt.Fprintf(w, "%s- <empty right child>\n", indentString(indent+1))
		} else if err := t.PrintTree(w, right, indent+1); err != nil {
			return err
		}
	default:
		return errors.Errorf("table: print_tree: unknown node type %d at page %d", NodeType(page), pageNum)
	}
	return nil
}

func indentString(depth int) string {
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// PrintConstants writes the fixed layout sizes to w, in the order the
// original front end emitted them.
func PrintConstants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", commonHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", leafHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", LeafCellSize())
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", uint32(pager.PageSize-leafHeaderSize))
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", MaxLeafCells())
}
