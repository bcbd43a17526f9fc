package pagination

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
)

// TableDataPath is the backend endpoint serving one page of a table.
const TableDataPath = "/get_table_data"

// PageURL builds the table-data request URL for a page.
func PageURL(tableID string, page, recordsPerPage int) string {
	q := url.Values{}
	q.Set("table_name", tableID)
	q.Set("page_number", strconv.Itoa(page))
	q.Set("records_per_page", strconv.Itoa(recordsPerPage))
	return TableDataPath + "?" + q.Encode()
}

var controlsTmpl = template.Must(template.New("controls").Parse(
	`<ul class="pagination" data-table="{{.TableID}}">` +
		`{{range .Controls}}` +
		`<li class="page-item{{if .Active}} active{{end}}{{if .Disabled}} disabled{{end}}">` +
		`{{if .Href}}<a class="page-link" href="{{.Href}}" data-page="{{.Page}}">{{.Label}}</a>` +
		`{{else}}<span class="page-link">{{.Label}}</span>{{end}}` +
		`</li>` +
		`{{end}}` +
		`</ul>`))

type renderedControl struct {
	Control
	Href string
}

// RenderControls renders the navigation bar of s as an HTML list. Every
// interactive control links to the table-data URL of its page; disabled
// arrows and ellipses render as plain spans.
func RenderControls(s PageState) (template.HTML, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	controls := BuildControls(s)
	view := struct {
		TableID  string
		Controls []renderedControl
	}{TableID: s.TableID, Controls: make([]renderedControl, 0, len(controls))}

	for _, c := range controls {
		rc := renderedControl{Control: c}
		if c.Interactive() {
			rc.Href = PageURL(s.TableID, c.Page, s.RecordsPerPage)
		}
		view.Controls = append(view.Controls, rc)
	}

	var buf bytes.Buffer
	if err := controlsTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render controls for %q: %w", s.TableID, err)
	}
	return template.HTML(buf.String()), nil
}
