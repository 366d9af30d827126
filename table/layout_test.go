package table

import (
	"testing"

	"coredb/pager"

	"github.com/stretchr/testify/require"
)

func TestMaxLeafCells(t *testing.T) {
	require.EqualValues(t, (uint32(pager.PageSize)-leafHeaderSize)/LeafCellSize(), MaxLeafCells())
	require.Greater(t, MaxLeafCells(), uint32(0))
}

func TestLeafCellAccessors(t *testing.T) {
	p := &pager.Page{}
	InitLeaf(p)
	require.Equal(t, NodeTypeLeaf, NodeType(p))
	require.False(t, IsRoot(p))
	require.EqualValues(t, 0, NumCells(p))

	SetNumCells(p, 2)
	SetLeafKey(p, 0, 10)
	SetLeafKey(p, 1, 20)
	copy(LeafValue(p, 0), []byte{1, 2, 3})

	require.EqualValues(t, 10, LeafKey(p, 0))
	require.EqualValues(t, 20, LeafKey(p, 1))
	require.Equal(t, byte(1), LeafValue(p, 0)[0])
}

func TestInternalCellAccessorsAndInvalidChild(t *testing.T) {
	p := &pager.Page{}
	InitInternal(p)
	require.Equal(t, NodeTypeInternal, NodeType(p))
	require.Equal(t, InvalidPage, RightChild(p))

	_, err := Child(p, 0)
	require.Error(t, err, "right child is still INVALID")

	SetNumKeys(p, 1)
	setInternalChildAt(p, 0, 5)
	SetInternalKey(p, 0, 99)
	SetRightChild(p, 6)

	c0, err := Child(p, 0)
	require.NoError(t, err)
	require.EqualValues(t, 5, c0)

	c1, err := Child(p, 1)
	require.NoError(t, err)
	require.EqualValues(t, 6, c1)

	require.EqualValues(t, 99, InternalKey(p, 0))
}

func TestParentRoundTrip(t *testing.T) {
	p := &pager.Page{}
	InitLeaf(p)
	SetParent(p, 1234)
	require.EqualValues(t, 1234, Parent(p))
}
