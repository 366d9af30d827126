package pager

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "pager_test_*.db")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

func TestOpenEmptyFile(t *testing.T) {
	p, err := Open(tempFile(t))
	require.NoError(t, err)
	require.EqualValues(t, 0, p.NumPages)
	require.NoError(t, p.Close())
}

func TestOpenRejectsCorruptLength(t *testing.T) {
	path := tempFile(t)
	require.NoError(t, os.WriteFile(path, make([]byte, PageSize+17), 0600))

	_, err := Open(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "corrupt file")
}

func TestGetPageOutOfBounds(t *testing.T) {
	p, err := Open(tempFile(t))
	require.NoError(t, err)
	defer p.Close()

	_, err = p.GetPage(MaxPages)
	require.Error(t, err)
}

func TestGetPageGrowsNumPages(t *testing.T) {
	p, err := Open(tempFile(t))
	require.NoError(t, err)
	defer p.Close()

	pg, err := p.GetPage(0)
	require.NoError(t, err)
	require.NotNil(t, pg)
	require.EqualValues(t, 1, p.NumPages)

	pg.Data[10] = 0xAB
}

func TestAllocatePageThenGetPageIsMonotonic(t *testing.T) {
	p, err := Open(tempFile(t))
	require.NoError(t, err)
	defer p.Close()

	n0 := p.AllocatePage()
	_, err = p.GetPage(n0)
	require.NoError(t, err)

	n1 := p.AllocatePage()
	require.Equal(t, n0+1, n1)
}

func TestCloseFlushesAndReopenPreservesBytes(t *testing.T) {
	path := tempFile(t)

	p, err := Open(path)
	require.NoError(t, err)
	pg, err := p.GetPage(0)
	require.NoError(t, err)
	pg.Data[0] = 0x7F
	pg.Data[PageSize-1] = 0x01
	require.NoError(t, p.Close())

	p2, err := Open(path)
	require.NoError(t, err)
	defer p2.Close()
	require.EqualValues(t, 1, p2.NumPages)

	pg2, err := p2.GetPage(0)
	require.NoError(t, err)
	require.Equal(t, byte(0x7F), pg2.Data[0])
	require.Equal(t, byte(0x01), pg2.Data[PageSize-1])
}

func TestFlushUnresidentPageErrors(t *testing.T) {
	p, err := Open(tempFile(t))
	require.NoError(t, err)
	defer p.Close()

	err = p.Flush(5)
	require.Error(t, err)
}
