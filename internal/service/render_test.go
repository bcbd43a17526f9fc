package service

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFragment(t *testing.T) {
	html, err := renderFragment("sales", []string{"region", "amount"}, [][]string{{"north", "10"}, {"south", "20"}}, 11)
	require.NoError(t, err)

	assert.Contains(t, html, `data-table="sales"`)
	assert.Contains(t, html, `border-collapse: collapse;`)
	assert.Contains(t, html, `<th class="col_heading level0">region</th>`)
	assert.Contains(t, html, `<th class="row_heading level0">11</th>`)
	assert.Contains(t, html, `<th class="row_heading level0">12</th>`)
	assert.Contains(t, html, `<td class="data">south</td>`)
	assert.Equal(t, 3, strings.Count(html, "<tr>"), "header row plus two data rows")
}

func TestRenderFragment_EscapesCells(t *testing.T) {
	html, err := renderFragment("x", []string{"<b>col</b>"}, [][]string{{`<script>alert("x")</script>`}}, 1)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "&lt;b&gt;col&lt;/b&gt;")
}

func TestTableElementID(t *testing.T) {
	id := tableElementID(`weird "name" {}`)
	assert.Regexp(t, regexp.MustCompile(`^T_[0-9a-f]{8}$`), id)
	assert.Equal(t, id, tableElementID(`weird "name" {}`))
	assert.NotEqual(t, id, tableElementID("other"))
}
