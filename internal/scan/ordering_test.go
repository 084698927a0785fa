package scan

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billysbar/tlmerge/internal/config"
)

func entryNames(entries []entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func TestOrderNaturalSortsLexicographically(t *testing.T) {
	entries := []entry{{name: "b"}, {name: "a"}, {name: "10"}, {name: "2"}}
	orderNatural(entries)
	assert.Equal(t, []string{"10", "2", "a", "b"}, entryNames(entries))
}

func TestOrderNumSortsNumericallyWithNameTiebreak(t *testing.T) {
	entries := []entry{
		{name: "10", sortKey: 10.0},
		{name: "2", sortKey: 2.0},
		{name: "2.0", sortKey: 2.0},
	}
	orderNum(entries)
	assert.Equal(t, []string{"2", "2.0", "10"}, entryNames(entries))
}

func TestFilterNumRejectsNonNumericNames(t *testing.T) {
	_, ok := filterNum("group-a")
	assert.False(t, ok)

	key, ok := filterNum("3.5")
	require.True(t, ok)
	assert.Equal(t, 3.5, key)
}

func TestOrderABCSortsByLengthThenLowercaseName(t *testing.T) {
	entries := []entry{{name: "B"}, {name: "aa"}, {name: "a"}, {name: "Ab"}}
	orderABC(entries)
	assert.Equal(t, []string{"a", "B", "aa", "Ab"}, entryNames(entries))
}

func TestFilterABCRejectsNonAlphaAndEmptyNames(t *testing.T) {
	_, ok := filterABC("")
	assert.False(t, ok)

	_, ok = filterABC("group1")
	assert.False(t, ok)

	_, ok = filterABC("Group")
	assert.True(t, ok)
}

func TestApplyGroupOrderingDispatchesByPolicy(t *testing.T) {
	entries := []entry{{name: "10", sortKey: 10.0}, {name: "2", sortKey: 2.0}}
	out := applyGroupOrdering(entries, config.OrderNum, true)
	assert.Equal(t, []string{"2", "10"}, entryNames(out))

	entries = []entry{{name: "b"}, {name: "a"}}
	out = applyGroupOrdering(entries, config.OrderNatural, true)
	assert.Equal(t, []string{"a", "b"}, entryNames(out))

	unordered := []entry{{name: "b"}, {name: "a"}}
	out = applyGroupOrdering(unordered, config.OrderNatural, false)
	assert.Equal(t, []string{"b", "a"}, entryNames(out))
}

func TestGroupFilterReturnsNilForNaturalPolicy(t *testing.T) {
	assert.Nil(t, groupFilter(config.OrderNatural))
	assert.NotNil(t, groupFilter(config.OrderNum))
	assert.NotNil(t, groupFilter(config.OrderABC))
}

func TestListDirSkipsNamesExceedingMaxLength(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dir, "short"), ""))
	require.NoError(t, writeFile(filepath.Join(dir, "this-name-is-definitely-too-long-for-a-column"), ""))

	entries, err := listDir(dir, 10, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, entryNames(entries))
}

func TestListDirHonorsWantDirsAndAllowed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, mkSubdir(filepath.Join(dir, "sub")))
	require.NoError(t, writeFile(filepath.Join(dir, "file.txt"), ""))

	dirs, err := listDir(dir, 25, true, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub"}, entryNames(dirs))

	files, err := listDir(dir, 25, false, func(name string) bool { return name != "file.txt" }, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}
