// Package table implements the B+ tree: node layout accessors (layout.go),
// the row codec (row.go, schema.go), the scan cursor (cursor.go), and here,
// search and insertion with cascading splits and root promotion.
package table

import (
	"sort"

	"coredb/pager"

	"github.com/pkg/errors"
)

// InsertResult classifies the outcome of Table.Insert.
type InsertResult int

const (
	Success InsertResult = iota
	DuplicateKey
	TableFull
)

// errTableFull is the internal sentinel an allocation-path function returns
// when no further page can be allocated; Insert translates it into the
// TableFull result rather than surfacing a generic error.
var errTableFull = errors.New("table: no page can be allocated, max_pages exceeded")

// Table is the tree's root page number — always 0 for the life of the file
// — plus the pager backing it.
type Table struct {
	Pager       *pager.Pager
	RootPageNum uint32
}

// Open opens or creates the file at path. On an empty file, page 0 is
// initialized as an empty leaf root.
func Open(path string) (*Table, error) {
	p, err := pager.Open(path)
	if err != nil {
		return nil, err
	}
	t := &Table{Pager: p, RootPageNum: 0}
	if p.NumPages == 0 {
		root, err := p.GetPage(0)
		if err != nil {
			return nil, err
		}
		InitLeaf(root)
		SetIsRoot(root, true)
	}
	return t, nil
}

// Close flushes all resident pages, fsyncs, and evicts.
func (t *Table) Close() error {
	return t.Pager.Close()
}

// allocatePage hands out the next page number, or errTableFull if doing so
// would exceed pager.MaxPages.
func (t *Table) allocatePage() (uint32, error) {
	if t.Pager.NumPages >= pager.MaxPages {
		return 0, errTableFull
	}
	return t.Pager.AllocatePage(), nil
}

// Insert adds row into the tree, splitting and promoting the root as
// needed. Duplicate detection happens here, against the cursor's slot;
// leafInsert itself never checks for duplicates.
func (t *Table) Insert(row Row) (InsertResult, error) {
	cursor, err := t.Find(row.ID)
	if err != nil {
		return 0, err
	}
	page, err := t.Pager.GetPage(cursor.PageNum)
	if err != nil {
		return 0, err
	}
	if cursor.CellNum < NumCells(page) && LeafKey(page, cursor.CellNum) == row.ID {
		return DuplicateKey, nil
	}

	value := make([]byte, RowSize)
	if err := row.Serialize(value); err != nil {
		return 0, err
	}

	if err := t.leafInsert(cursor, row.ID, value); err != nil {
		if errors.Is(err, errTableFull) {
			return TableFull, nil
		}
		return 0, err
	}
	return Success, nil
}

// leafInsert shifts cells right of the cursor and writes the new cell in
// place if the leaf has room; otherwise it splits.
func (t *Table) leafInsert(cursor *Cursor, key uint32, value []byte) error {
	page, err := t.Pager.GetPage(cursor.PageNum)
	if err != nil {
		return err
	}
	n := NumCells(page)
	if n < MaxLeafCells() {
		for i := n; i > cursor.CellNum; i-- {
			copy(LeafCell(page, i), LeafCell(page, i-1))
		}
		SetNumCells(page, n+1)
		SetLeafKey(page, cursor.CellNum, key)
		copy(LeafValue(page, cursor.CellNum), value)
		return nil
	}
	return t.leafSplitInsert(cursor, key, value)
}

type leafEntry struct {
	key   uint32
	value []byte
}

// leafSplitInsert splits an overflowing leaf. The conceptual sequence of
// MaxLeafCells()+1 cells (existing cells with the new one spliced at
// cursor.CellNum) is built first, then partitioned, so the new cell is
// counted exactly once regardless of which half it lands in.
func (t *Table) leafSplitInsert(cursor *Cursor, key uint32, value []byte) error {
	oldPage, err := t.Pager.GetPage(cursor.PageNum)
	if err != nil {
		return err
	}

	n := NumCells(oldPage)
	preSplitMax := LeafKey(oldPage, n-1)

	entries := make([]leafEntry, 0, n+1)
	for i := uint32(0); i < n; i++ {
		if i == cursor.CellNum {
			entries = append(entries, leafEntry{key: key, value: value})
		}
		v := make([]byte, RowSize)
		copy(v, LeafValue(oldPage, i))
		entries = append(entries, leafEntry{key: LeafKey(oldPage, i), value: v})
	}
	if cursor.CellNum == n {
		entries = append(entries, leafEntry{key: key, value: value})
	}

	total := uint32(len(entries))
	left := (total + 1) / 2
	right := total - left

	newPageNum, err := t.allocatePage()
	if err != nil {
		return err
	}
	newPage, err := t.Pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	InitLeaf(newPage)
	SetParent(newPage, Parent(oldPage))
	SetNextLeaf(newPage, NextLeaf(oldPage))
	SetNextLeaf(oldPage, newPageNum)

	for i := uint32(0); i < left; i++ {
		SetLeafKey(oldPage, i, entries[i].key)
		copy(LeafValue(oldPage, i), entries[i].value)
	}
	SetNumCells(oldPage, left)

	for i := uint32(0); i < right; i++ {
		e := entries[left+i]
		SetLeafKey(newPage, i, e.key)
		copy(LeafValue(newPage, i), e.value)
	}
	SetNumCells(newPage, right)

	if IsRoot(oldPage) {
		return t.createNewRoot(newPageNum)
	}

	parentPageNum := Parent(oldPage)
	postSplitMax := LeafKey(oldPage, left-1)
	if err := t.updateInternalKey(parentPageNum, preSplitMax, postSplitMax); err != nil {
		return err
	}
	return t.internalInsert(parentPageNum, newPageNum)
}

// internalInsert inserts childPageNum into parentPageNum, splitting the
// parent first if it's already at capacity.
func (t *Table) internalInsert(parentPageNum, childPageNum uint32) error {
	parent, err := t.Pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	childMax, err := maxKey(t.Pager, childPageNum)
	if err != nil {
		return err
	}

	if NumKeys(parent) >= MaxInternalCells {
		return t.internalSplitInsert(parentPageNum, childPageNum, childMax)
	}

	child, err := t.Pager.GetPage(childPageNum)
	if err != nil {
		return err
	}

	if RightChild(parent) == InvalidPage {
		SetRightChild(parent, childPageNum)
		SetParent(child, parentPageNum)
		return nil
	}

	n := NumKeys(parent)
	rightChildNum, err := Child(parent, n)
	if err != nil {
		return err
	}
	rightMax, err := maxKey(t.Pager, rightChildNum)
	if err != nil {
		return err
	}

	if childMax > rightMax {
		setInternalChildAt(parent, n, rightChildNum)
		SetInternalKey(parent, n, rightMax)
		SetRightChild(parent, childPageNum)
	} else {
		idx := findChildIndex(parent, childMax)
		for i := n; i > idx; i-- {
			copy(InternalCell(parent, i), InternalCell(parent, i-1))
		}
		setInternalChildAt(parent, idx, childPageNum)
		SetInternalKey(parent, idx, childMax)
	}
	SetNumKeys(parent, n+1)
	SetParent(child, parentPageNum)
	return nil
}

// splitCell is one (child, key) pair in the conceptual list internal-split
// rebuilds from: key is the separator used while the cell is not the
// rightmost of its eventual side (the whole list, including the new child,
// is rewritten from scratch into both sides, mirroring the leaf-split
// approach).
type splitCell struct {
	child uint32
	key   uint32
}

// internalSplitInsert splits an internal node that is already at
// MaxInternalCells, inserting newChildPageNum into whichever side it belongs.
func (t *Table) internalSplitInsert(oldPageNum, newChildPageNum, childMax uint32) error {
	oldPage, err := t.Pager.GetPage(oldPageNum)
	if err != nil {
		return err
	}

	oldMaxBefore, err := maxKey(t.Pager, oldPageNum)
	if err != nil {
		return err
	}

	n := NumKeys(oldPage)
	entries := make([]splitCell, 0, n+2)
	for i := uint32(0); i < n; i++ {
		c, err := Child(oldPage, i)
		if err != nil {
			return err
		}
		entries = append(entries, splitCell{child: c, key: InternalKey(oldPage, i)})
	}
	rightChildNum, err := Child(oldPage, n)
	if err != nil {
		return err
	}
	// The right child has no stored key; oldMaxBefore (the subtree's
	// overall max) stands in for it when splicing the new child by key.
	entries = append(entries, splitCell{child: rightChildNum, key: oldMaxBefore})

	insertAt := sort.Search(len(entries), func(i int) bool { return childMax < entries[i].key })
	spliced := make([]splitCell, 0, len(entries)+1)
	spliced = append(spliced, entries[:insertAt]...)
	spliced = append(spliced, splitCell{child: newChildPageNum, key: childMax})
	spliced = append(spliced, entries[insertAt:]...)

	mid := len(spliced) / 2
	leftEntries := spliced[:mid]
	rightEntries := spliced[mid:]

	newPageNum, err := t.allocatePage()
	if err != nil {
		return err
	}
	if _, err := t.Pager.GetPage(newPageNum); err != nil {
		return err
	}

	var grandPageNum uint32
	wasRoot := IsRoot(oldPage)
	if wasRoot {
		// Give the split a grandparent to insert into: promote a fresh
		// root above the old (full) node, which createNewRoot relocates
		// verbatim into a brand-new left-child page, wiring newPageNum
		// in directly as its right child.
		if err := t.createNewRoot(newPageNum); err != nil {
			return err
		}
		newRoot, err := t.Pager.GetPage(oldPageNum) // oldPageNum == t.RootPageNum
		if err != nil {
			return err
		}
		relocated, err := Child(newRoot, 0)
		if err != nil {
			return err
		}
		grandPageNum = oldPageNum
		oldPageNum = relocated
		oldPage, err = t.Pager.GetPage(oldPageNum)
		if err != nil {
			return err
		}
	} else {
		grandPageNum = Parent(oldPage)
	}

	newPage, err := t.Pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	InitInternal(newPage)
	writeInternalSplitSide(oldPage, leftEntries)
	writeInternalSplitSide(newPage, rightEntries)
	SetParent(newPage, grandPageNum)

	if err := reparentChildren(t.Pager, oldPage, oldPageNum); err != nil {
		return err
	}
	if err := reparentChildren(t.Pager, newPage, newPageNum); err != nil {
		return err
	}

	oldNewMax, err := maxKey(t.Pager, oldPageNum)
	if err != nil {
		return err
	}
	if err := t.updateInternalKey(grandPageNum, oldMaxBefore, oldNewMax); err != nil {
		return err
	}
	if wasRoot {
		// createNewRoot already wired newPageNum in as the new root's
		// right child; nothing more to insert into the grandparent.
		return nil
	}
	return t.internalInsert(grandPageNum, newPageNum)
}

// writeInternalSplitSide rewrites page's cells and right child from
// entries: every entry but the last becomes an indexed (child, key) cell;
// the last becomes the right child, its key discarded (the invariant
// recomputes it via maxKey, same as any other right child).
func writeInternalSplitSide(page *pager.Page, entries []splitCell) {
	last := len(entries) - 1
	for i := 0; i < last; i++ {
		setInternalChildAt(page, uint32(i), entries[i].child)
		SetInternalKey(page, uint32(i), entries[i].key)
	}
	SetNumKeys(page, uint32(last))
	SetRightChild(page, entries[last].child)
}

// reparentChildren sets the parent pointer of every child (cells' children
// and the right child) of an internal node to point at pageNum.
func reparentChildren(pgr *pager.Pager, page *pager.Page, pageNum uint32) error {
	n := NumKeys(page)
	for i := uint32(0); i <= n; i++ {
		childNum, err := Child(page, i)
		if err != nil {
			return err
		}
		child, err := pgr.GetPage(childNum)
		if err != nil {
			return err
		}
		SetParent(child, pageNum)
	}
	return nil
}

// createNewRoot relocates the current root's bytes into a fresh left
// child, then re-initializes the root page as an internal node with that
// left child and newRight as its two subtrees.
func (t *Table) createNewRoot(newRight uint32) error {
	rootPageNum := t.RootPageNum
	rootPage, err := t.Pager.GetPage(rootPageNum)
	if err != nil {
		return err
	}

	leftPageNum, err := t.allocatePage()
	if err != nil {
		return err
	}
	leftPage, err := t.Pager.GetPage(leftPageNum)
	if err != nil {
		return err
	}

	leftPage.Data = rootPage.Data
	SetIsRoot(leftPage, false)
	SetParent(leftPage, rootPageNum)

	if NodeType(leftPage) == NodeTypeInternal {
		if err := reparentChildren(t.Pager, leftPage, leftPageNum); err != nil {
			return err
		}
	}

	leftMax, err := maxKey(t.Pager, leftPageNum)
	if err != nil {
		return err
	}

	InitInternal(rootPage)
	SetIsRoot(rootPage, true)
	SetNumKeys(rootPage, 1)
	setInternalChildAt(rootPage, 0, leftPageNum)
	SetInternalKey(rootPage, 0, leftMax)
	SetRightChild(rootPage, newRight)

	newRightPage, err := t.Pager.GetPage(newRight)
	if err != nil {
		return err
	}
	SetParent(newRightPage, rootPageNum)

	return nil
}

// updateInternalKey locates the cell in node whose key is oldKey via
// findChildIndex and overwrites it with newKey, maintaining the invariant
// that an internal key equals the max key of its subtree. The rightmost
// child has no stored separator key, so when oldKey belongs to it this is a
// harmless no-op: the right child's bound is always recomputed via maxKey,
// never read out of a cell.
func (t *Table) updateInternalKey(pageNum uint32, oldKey, newKey uint32) error {
	page, err := t.Pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	idx := findChildIndex(page, oldKey)
	if idx >= NumKeys(page) {
		return nil
	}
	SetInternalKey(page, idx, newKey)
	return nil
}

// findChildIndex performs a binary search over an internal node: the
// smallest index i with key(i) >= key, or NumKeys(page) if every key is
// smaller (selecting the right child).
func findChildIndex(page *pager.Page, key uint32) uint32 {
	n := int(NumKeys(page))
	return uint32(sort.Search(n, func(i int) bool { return InternalKey(page, uint32(i)) >= key }))
}

// findLeafIndex performs the equivalent binary search over a leaf's cells.
func findLeafIndex(page *pager.Page, key uint32) uint32 {
	n := int(NumCells(page))
	return uint32(sort.Search(n, func(i int) bool { return LeafKey(page, uint32(i)) >= key }))
}

// maxKey returns the largest key reachable in the subtree rooted at
// pageNum: for a leaf, its last key; for an internal node, the max_key of
// its right child.
func maxKey(pgr *pager.Pager, pageNum uint32) (uint32, error) {
	page, err := pgr.GetPage(pageNum)
	if err != nil {
		return 0, err
	}
	if NodeType(page) == NodeTypeLeaf {
		n := NumCells(page)
		if n == 0 {
			return 0, errors.Errorf("table: max_key: leaf page %d is empty", pageNum)
		}
		return LeafKey(page, n-1), nil
	}
	right, err := Child(page, NumKeys(page))
	if err != nil {
		return 0, err
	}
	return maxKey(pgr, right)
}
