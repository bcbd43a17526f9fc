package service

import (
	"fmt"
	"hash/fnv"
	"html/template"
	"strings"
)

// fragmentTemplate mirrors the styled table markup the explorer UI expects:
// dark header cells, bordered data cells, and a row-heading column with the
// 1-based position of each row in the whole table.
var fragmentTemplate = template.Must(template.New("fragment").Parse(
	`<style type="text/css">
#{{.ID}} th { background-color: #333; color: white; font-weight: bold; font-size: 16px; }
#{{.ID}} td { border: 2px solid black; padding: 5px; }
</style>
<table id="{{.ID}}" class="result-table" data-table="{{.Name}}" style="border: 2px solid black; border-collapse: collapse;">
  <thead>
    <tr>
      <th class="blank level0">&nbsp;</th>
{{- range .Columns}}
      <th class="col_heading level0">{{.}}</th>
{{- end}}
    </tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>
      <th class="row_heading level0">{{.Index}}</th>
{{- range .Cells}}
      <td class="data">{{.}}</td>
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>
`))

type fragmentRow struct {
	Index int
	Cells []string
}

type fragmentData struct {
	ID      string
	Name    string
	Columns []string
	Rows    []fragmentRow
}

// tableElementID derives a CSS-safe element id from the table name.
func tableElementID(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("T_%08x", h.Sum32())
}

// renderFragment renders rows as one page of table name; firstIndex is the
// 1-based position of rows[0]. Cell text is HTML-escaped.
func renderFragment(name string, columns []string, rows [][]string, firstIndex int) (string, error) {
	data := fragmentData{
		ID:      tableElementID(name),
		Name:    name,
		Columns: columns,
		Rows:    make([]fragmentRow, len(rows)),
	}
	for i, cells := range rows {
		data.Rows[i] = fragmentRow{Index: firstIndex + i, Cells: cells}
	}

	var b strings.Builder
	if err := fragmentTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render table %q: %w", name, err)
	}
	return b.String(), nil
}
