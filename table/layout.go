package table

import (
	"encoding/binary"

	"coredb/pager"
	"github.com/pkg/errors"
)

// Node type tags stored at offset 0 of every page.
const (
	NodeTypeInternal byte = 0
	NodeTypeLeaf     byte = 1
)

// InvalidPage is the in-band sentinel (2^32 - 1) marking an uninitialized
// internal right-child pointer. The on-disk encoding always writes
// 0xFFFFFFFF for it.
const InvalidPage uint32 = 0xFFFFFFFF

// Common node header: node_type(1) | is_root(1) | parent_page_num(4).
const (
	nodeTypeOffset   = 0
	isRootOffset     = 1
	parentOffset     = 2
	commonHeaderSize = 6
)

// Leaf node header continues with num_cells(4) | next_leaf_page_num(4).
const (
	leafNumCellsOffset = commonHeaderSize
	leafNextLeafOffset = leafNumCellsOffset + 4
	leafHeaderSize     = leafNextLeafOffset + 4 // 14

	leafKeySize  = 4
	leafCellsOff = leafHeaderSize
)

// Internal node header continues with num_keys(4) | right_child_page_num(4).
const (
	internalNumKeysOffset    = commonHeaderSize
	internalRightChildOffset = internalNumKeysOffset + 4
	internalHeaderSize       = internalRightChildOffset + 4 // 14

	internalChildSize  = 4
	internalKeySize    = 4
	internalCellSize   = internalChildSize + internalKeySize // 8
	internalCellsOff   = internalHeaderSize
	MaxInternalCells   = 3 // deliberately small, per spec, to force splits
)

// LeafCellSize is key(4) + value(RowSize).
func LeafCellSize() uint32 { return leafKeySize + RowSize }

// MaxLeafCells is how many leaf cells fit in a page after the leaf header.
func MaxLeafCells() uint32 {
	return (pager.PageSize - leafHeaderSize) / LeafCellSize()
}

// --- common header ---

func NodeType(p *pager.Page) byte { return p.Data[nodeTypeOffset] }

func SetNodeType(p *pager.Page, t byte) { p.Data[nodeTypeOffset] = t }

func IsRoot(p *pager.Page) bool { return p.Data[isRootOffset] != 0 }

func SetIsRoot(p *pager.Page, v bool) {
	if v {
		p.Data[isRootOffset] = 1
	} else {
		p.Data[isRootOffset] = 0
	}
}

func Parent(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[parentOffset : parentOffset+4])
}

func SetParent(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[parentOffset:parentOffset+4], n)
}

// --- leaf body ---

func NumCells(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[leafNumCellsOffset : leafNumCellsOffset+4])
}

func SetNumCells(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[leafNumCellsOffset:leafNumCellsOffset+4], n)
}

func NextLeaf(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[leafNextLeafOffset : leafNextLeafOffset+4])
}

func SetNextLeaf(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[leafNextLeafOffset:leafNextLeafOffset+4], n)
}

// LeafCell returns a slice of length LeafCellSize() over cell i's bytes.
func LeafCell(p *pager.Page, i uint32) []byte {
	off := leafCellsOff + i*LeafCellSize()
	return p.Data[off : off+LeafCellSize()]
}

func LeafKey(p *pager.Page, i uint32) uint32 {
	cell := LeafCell(p, i)
	return binary.LittleEndian.Uint32(cell[:leafKeySize])
}

func SetLeafKey(p *pager.Page, i uint32, key uint32) {
	cell := LeafCell(p, i)
	binary.LittleEndian.PutUint32(cell[:leafKeySize], key)
}

// LeafValue returns the RowSize-byte value slice of cell i.
func LeafValue(p *pager.Page, i uint32) []byte {
	cell := LeafCell(p, i)
	return cell[leafKeySize:]
}

// InitLeaf resets p to an empty, non-root leaf.
func InitLeaf(p *pager.Page) {
	SetNodeType(p, NodeTypeLeaf)
	SetIsRoot(p, false)
	SetNumCells(p, 0)
	SetNextLeaf(p, 0)
}

// --- internal body ---

func NumKeys(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[internalNumKeysOffset : internalNumKeysOffset+4])
}

func SetNumKeys(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[internalNumKeysOffset:internalNumKeysOffset+4], n)
}

func RightChild(p *pager.Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[internalRightChildOffset : internalRightChildOffset+4])
}

func SetRightChild(p *pager.Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[internalRightChildOffset:internalRightChildOffset+4], n)
}

// InternalCell returns a slice of length internalCellSize over cell i's bytes.
func InternalCell(p *pager.Page, i uint32) []byte {
	off := internalCellsOff + i*internalCellSize
	return p.Data[off : off+internalCellSize]
}

func InternalKey(p *pager.Page, i uint32) uint32 {
	cell := InternalCell(p, i)
	return binary.LittleEndian.Uint32(cell[internalChildSize : internalChildSize+internalKeySize])
}

func SetInternalKey(p *pager.Page, i uint32, key uint32) {
	cell := InternalCell(p, i)
	binary.LittleEndian.PutUint32(cell[internalChildSize:internalChildSize+internalKeySize], key)
}

func internalChildAt(p *pager.Page, i uint32) uint32 {
	cell := InternalCell(p, i)
	return binary.LittleEndian.Uint32(cell[:internalChildSize])
}

func setInternalChildAt(p *pager.Page, i uint32, child uint32) {
	cell := InternalCell(p, i)
	binary.LittleEndian.PutUint32(cell[:internalChildSize], child)
}

// Child returns the i-th child of an internal node: for i == NumKeys(p) this
// is the right child, otherwise cell i's stored child. Resolving to
// InvalidPage is a fatal layout error — an internal node never has an
// uninitialized child once live in the tree.
func Child(p *pager.Page, i uint32) (uint32, error) {
	var c uint32
	if i == NumKeys(p) {
		c = RightChild(p)
	} else {
		c = internalChildAt(p, i)
	}
	if c == InvalidPage {
		return 0, errors.Errorf("table: access through invalid child pointer at index %d", i)
	}
	return c, nil
}

// InitInternal resets p to an empty, non-root internal node with an
// uninitialized (InvalidPage) right child.
func InitInternal(p *pager.Page) {
	SetNodeType(p, NodeTypeInternal)
	SetIsRoot(p, false)
	SetNumKeys(p, 0)
	SetRightChild(p, InvalidPage)
}
