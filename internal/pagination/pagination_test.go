package pagination

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    Window
	}{
		{"last of seven re-anchors", 7, 7, Window{3, 7}},
		{"first of seven", 1, 7, Window{1, 5}},
		{"middle of three", 2, 3, Window{1, 3}},
		{"middle of ten", 5, 10, Window{3, 7}},
		{"second of four", 2, 4, Window{1, 4}},
		{"single page", 1, 1, Window{1, 1}},
		{"near end of ten", 9, 10, Window{6, 10}},
		{"zero total treated as one", 1, 0, Window{1, 1}},
		{"current above total clamps", 12, 10, Window{6, 10}},
		{"current below one clamps", -3, 10, Window{1, 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeWindow(tc.current, tc.total))
		})
	}
}

func TestComputeWindow_Properties(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for current := 1; current <= total; current++ {
			w := ComputeWindow(current, total)
			require.Equal(t, min(WindowWidth, total), w.Width(), "width for %d/%d", current, total)
			require.GreaterOrEqual(t, w.Start, 1)
			require.LessOrEqual(t, w.End, total)
			require.True(t, w.Contains(current), "window %+v must contain %d", w, current)
		}
	}
}

func kinds(cs []Control) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		if c.Kind == KindPage {
			out = append(out, c.Label)
			continue
		}
		out = append(out, string(c.Kind))
	}
	return out
}

func TestBuildControls_Layout(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []string
	}{
		{"both ellipses", 5, 10, []string{"prev", "1", "ellipsis", "3", "4", "5", "6", "7", "ellipsis", "10", "next"}},
		{"no ellipses", 2, 4, []string{"prev", "1", "2", "3", "4", "next"}},
		{"single page", 1, 1, []string{"prev", "1", "next"}},
		{"page one adjacent without ellipsis", 4, 10, []string{"prev", "1", "2", "3", "4", "5", "6", "ellipsis", "10", "next"}},
		{"last page adjacent without ellipsis", 7, 10, []string{"prev", "1", "ellipsis", "5", "6", "7", "8", "9", "10", "next"}},
		{"end of seven", 7, 7, []string{"prev", "1", "ellipsis", "3", "4", "5", "6", "7", "next"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cs := BuildControls(PageState{TableID: "t", CurrentPage: tc.current, TotalPages: tc.total, RecordsPerPage: 10})
			assert.Equal(t, tc.want, kinds(cs))
		})
	}
}

func TestBuildControls_PrevNextDisabled(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for current := 1; current <= total; current++ {
			cs := BuildControls(PageState{TableID: "t", CurrentPage: current, TotalPages: total, RecordsPerPage: 5})
			prev, next := cs[0], cs[len(cs)-1]
			require.Equal(t, KindPrev, prev.Kind)
			require.Equal(t, KindNext, next.Kind)
			assert.Equal(t, current == 1, !prev.Interactive(), "prev at %d/%d", current, total)
			assert.Equal(t, current == total, !next.Interactive(), "next at %d/%d", current, total)
			if prev.Interactive() {
				assert.Equal(t, current-1, prev.Page)
			}
			if next.Interactive() {
				assert.Equal(t, current+1, next.Page)
			}
		}
	}
}

func TestBuildControls_ActivePage(t *testing.T) {
	cs := BuildControls(PageState{TableID: "t", CurrentPage: 3, TotalPages: 8, RecordsPerPage: 10})
	var active []Control
	for _, c := range cs {
		if c.Active {
			active = append(active, c)
		}
	}
	require.Len(t, active, 1)
	assert.Equal(t, 3, active[0].Page)
	assert.True(t, active[0].Interactive(), "active page stays clickable")
}

func TestRenderControls(t *testing.T) {
	html, err := RenderControls(PageState{TableID: "sales", CurrentPage: 1, TotalPages: 3, RecordsPerPage: 10})
	require.NoError(t, err)

	out := string(html)
	assert.True(t, strings.HasPrefix(out, `<ul class="pagination" data-table="sales">`))
	assert.Contains(t, out, `<li class="page-item disabled"><span class="page-link">« Prev</span></li>`)
	assert.Contains(t, out, `<li class="page-item active"><a class="page-link" href="/get_table_data?page_number=1&amp;records_per_page=10&amp;table_name=sales" data-page="1">1</a></li>`)
	assert.Contains(t, out, `data-page="2">Next »</a>`)
}

func TestRenderControls_EscapesTableID(t *testing.T) {
	html, err := RenderControls(PageState{TableID: `x"><script>`, CurrentPage: 1, TotalPages: 1, RecordsPerPage: 10})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}

func TestRenderControls_InvalidState(t *testing.T) {
	_, err := RenderControls(PageState{TableID: "t", CurrentPage: 4, TotalPages: 3, RecordsPerPage: 10})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPageState(t *testing.T) {
	s, err := NewPageState("t", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, 1, s.TotalPages)

	_, err = NewPageState("", 3, 10)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = NewPageState("t", 3, 0)
	assert.ErrorIs(t, err, ErrInvalidState)

	s.TotalPages = 6
	assert.Equal(t, 6, s.ClampPage(9))
	assert.Equal(t, 1, s.ClampPage(-1))
	assert.False(t, s.HasPrevious())
	assert.True(t, s.HasNext())
}

func TestTotalPagesForAndOffset(t *testing.T) {
	assert.Equal(t, 1, TotalPagesFor(0, 10))
	assert.Equal(t, 1, TotalPagesFor(10, 10))
	assert.Equal(t, 2, TotalPagesFor(11, 10))
	assert.Equal(t, 1, TotalPagesFor(5, 0))
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
}
