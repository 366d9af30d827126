package table

import "github.com/pkg/errors"

// Cursor is a position (page, cell) within the tree, used both for reads
// and as the insertion slot computed by Find. It is invalidated by any
// subsequent tree mutation; callers must not interleave cursor use with
// mutation of the same tree.
type Cursor struct {
	table      *Table
	PageNum    uint32
	CellNum    uint32
	EndOfTable bool
}

// Value returns the RowSize-byte slice of the cell the cursor points at.
// Valid only when !EndOfTable.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.table.Pager.GetPage(c.PageNum)
	if err != nil {
		return nil, err
	}
	if c.CellNum >= NumCells(page) {
		return nil, errors.Errorf("cursor: cell %d out of range (num_cells=%d)", c.CellNum, NumCells(page))
	}
	return LeafValue(page, c.CellNum), nil
}

// Advance moves the cursor to the next cell in ascending key order, crossing
// into the next leaf via its sibling pointer when the current leaf is
// exhausted, and setting EndOfTable once the last leaf runs out.
func (c *Cursor) Advance() error {
	page, err := c.table.Pager.GetPage(c.PageNum)
	if err != nil {
		return err
	}
	c.CellNum++
	if c.CellNum < NumCells(page) {
		return nil
	}
	next := NextLeaf(page)
	if next == 0 {
		c.EndOfTable = true
		return nil
	}
	c.PageNum = next
	c.CellNum = 0
	return nil
}

// Start returns a cursor descended leftmost to the first leaf, positioned
// at cell 0. EndOfTable is true iff that leaf is empty (an empty tree).
func (t *Table) Start() (*Cursor, error) {
	pageNum := t.RootPageNum
	for {
		page, err := t.Pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if NodeType(page) == NodeTypeLeaf {
			return &Cursor{table: t, PageNum: pageNum, CellNum: 0, EndOfTable: NumCells(page) == 0}, nil
		}
		child, err := Child(page, 0)
		if err != nil {
			return nil, err
		}
		pageNum = child
	}
}

// Find descends from the root to the leaf that should contain key, and
// returns a cursor at the smallest index i with key(i) >= key — either the
// existing match or the slot key should be inserted at.
func (t *Table) Find(key uint32) (*Cursor, error) {
	pageNum := t.RootPageNum
	for {
		page, err := t.Pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if NodeType(page) == NodeTypeLeaf {
			idx := findLeafIndex(page, key)
			return &Cursor{table: t, PageNum: pageNum, CellNum: idx}, nil
		}
		idx := findChildIndex(page, key)
		child, err := Child(page, idx)
		if err != nil {
			return nil, err
		}
		pageNum = child
	}
}
