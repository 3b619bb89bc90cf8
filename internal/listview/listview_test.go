package listview

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func (i item) SearchFields() []string { return []string{i.Name} }

func numbered(n int) []item {
	rv := make([]item, 0, n)
	for i := 1; i <= n; i++ {
		rv = append(rv, item{ID: fmt.Sprintf("%d", i), Name: fmt.Sprintf("I%d", i)})
	}
	return rv
}

func names(items []item) []string {
	rv := make([]string, 0, len(items))
	for _, it := range items {
		rv = append(rv, it.Name)
	}
	return rv
}

func TestViewTenItemsPageSizeFour(t *testing.T) {
	c := New[item](WithPageSize[item](4))
	c.SetRecords(numbered(10))

	v := c.View()
	require.Equal(t, []string{"I1", "I2", "I3", "I4"}, names(v.Items))
	assert.Equal(t, "Showing 1 to 4 of 10 items", v.ShowingText())
	assert.Equal(t, "Page 1 of 3", v.PageText())
	assert.False(t, v.HasPrev)
	assert.True(t, v.HasNext)

	require.True(t, c.GoToPage(3))
	v = c.View()
	require.Equal(t, []string{"I9", "I10"}, names(v.Items))
	assert.Equal(t, "Showing 9 to 10 of 10 items", v.ShowingText())
	assert.True(t, v.HasPrev)
	assert.False(t, v.HasNext)
}

func TestEmptyRecordSet(t *testing.T) {
	c := New[item]()
	c.SetRecords([]item{})

	v := c.View()
	assert.Equal(t, 1, v.TotalPages)
	assert.Empty(t, v.Items)
	assert.False(t, v.HasPrev)
	assert.False(t, v.HasNext)
	assert.Equal(t, 0, v.Start)
	assert.Equal(t, 0, v.End)
	assert.Equal(t, "Showing 0 to 0 of 0 items", v.ShowingText())
}

func TestNeverLoadedControllerHasOneEmptyPage(t *testing.T) {
	c := New[item]()
	v := c.View()
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 1, v.TotalPages)
	assert.Empty(t, v.Items)
}

func TestPageLengthBoundsAndPartition(t *testing.T) {
	for _, size := range []int{1, 2, 3, 4, 7, 10, 11} {
		for _, count := range []int{0, 1, 3, 4, 9, 10, 23} {
			t.Run(fmt.Sprintf("size=%d/count=%d", size, count), func(t *testing.T) {
				c := New[item](WithPageSize[item](size))
				c.SetRecords(numbered(count))

				seen := []string{}
				pages := c.TotalPages()
				for p := 1; p <= pages; p++ {
					c.GoToPage(p)
					v := c.View()
					require.Equal(t, p, v.Page)
					require.LessOrEqual(t, len(v.Items), size)
					if p < pages {
						require.Len(t, v.Items, size)
					}
					seen = append(seen, names(v.Items)...)
				}
				assert.Equal(t, names(c.Filtered()), seen)
			})
		}
	}
}

func TestViewIsIdempotent(t *testing.T) {
	c := New[item](WithPageSize[item](3), WithSearchMode[item](ModeRank))
	c.SetRecords(numbered(8))
	c.SetSearchTerm("1")
	c.NextPage()

	first := c.View()
	second := c.View()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("View changed without a mutation (-first +second):\n%s", diff)
	}
}

func TestSearchResetsPage(t *testing.T) {
	c := New[item](WithPageSize[item](2))
	c.SetRecords(numbered(10))
	require.True(t, c.GoToPage(3))
	require.Equal(t, 3, c.View().Page)

	c.SetSearchTerm("x")
	assert.Equal(t, 1, c.View().Page)
}

func TestSetRecordsResetsPageButKeepsTerm(t *testing.T) {
	c := New[item](WithPageSize[item](2))
	c.SetRecords(numbered(10))
	c.SetSearchTerm("I1")
	c.GoToPage(1)

	c.SetRecords([]item{{ID: "a", Name: "I10"}, {ID: "b", Name: "I2"}, {ID: "c", Name: "I11"}})
	v := c.View()
	assert.Equal(t, "I1", c.SearchTerm())
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, []string{"I10", "I11"}, names(v.Items))
}

func TestOutOfRangeNavigationIsIgnored(t *testing.T) {
	c := New[item](WithPageSize[item](4))
	c.SetRecords(numbered(8))
	require.Equal(t, 2, c.TotalPages())

	assert.False(t, c.GoToPage(5))
	assert.Equal(t, 1, c.CurrentPage())
	assert.False(t, c.GoToPage(0))
	assert.False(t, c.GoToPage(-1))
	assert.False(t, c.PrevPage())
	assert.Equal(t, 1, c.CurrentPage())

	require.True(t, c.NextPage())
	assert.False(t, c.NextPage())
	assert.Equal(t, 2, c.CurrentPage())
}

func TestSearchModes(t *testing.T) {
	fruit := []item{{ID: "1", Name: "Apple"}, {ID: "2", Name: "Banana"}, {ID: "3", Name: "Grape"}}

	tests := []struct {
		name string
		mode SearchMode
		want []string
	}{
		{name: "rank demotes non-matches", mode: ModeRank, want: []string{"Banana", "Apple", "Grape"}},
		{name: "exclude drops non-matches", mode: ModeExclude, want: []string{"Banana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[item](WithSearchMode[item](tt.mode))
			c.SetRecords(fruit)
			c.SetSearchTerm("an")
			assert.Equal(t, tt.want, names(c.Filtered()))
			assert.Equal(t, tt.want, names(c.View().Items))
		})
	}
}

func TestRankIsStablePartition(t *testing.T) {
	records := []item{
		{Name: "b1"}, {Name: "a1"}, {Name: "b2"}, {Name: "a2"}, {Name: "b3"},
	}
	got := Apply(records, "A", ModeRank, DefaultPredicate[item]())
	assert.Equal(t, []string{"a1", "a2", "b1", "b2", "b3"}, names(got))
}

func TestEmptyTermReturnsAllInOrder(t *testing.T) {
	records := numbered(5)
	for _, mode := range []SearchMode{ModeExclude, ModeRank} {
		assert.Equal(t, names(records), names(Apply(records, "", mode, DefaultPredicate[item]())))
		assert.Equal(t, names(records), names(Apply(records, "   ", mode, DefaultPredicate[item]())))
	}
}

func TestPageSizeFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultPageSize, New[item](WithPageSize[item](0)).PageSize())
	assert.Equal(t, DefaultPageSize, New[item](WithPageSize[item](-3)).PageSize())
}

func TestSetRecordsCopiesInput(t *testing.T) {
	records := numbered(3)
	c := New[item]()
	c.SetRecords(records)
	records[0].Name = "changed"
	assert.Equal(t, "I1", c.View().Items[0].Name)
}

func TestParseSearchMode(t *testing.T) {
	m, err := ParseSearchMode("rank")
	require.NoError(t, err)
	assert.Equal(t, ModeRank, m)

	m, err = ParseSearchMode(" Exclude ")
	require.NoError(t, err)
	assert.Equal(t, ModeExclude, m)

	_, err = ParseSearchMode("sorted")
	require.Error(t, err)
	assert.Equal(t, "rank", ModeRank.String())
}
