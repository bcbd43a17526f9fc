// Package pagination computes page windows and navigation controls for
// paginated result tables.
package pagination

// WindowWidth is the maximum number of page links shown at once.
const WindowWidth = 5

// Window is an inclusive, contiguous range of page numbers.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width returns the number of pages covered by the window.
func (w Window) Width() int { return w.End - w.Start + 1 }

// Contains reports whether page falls inside the window.
func (w Window) Contains(page int) bool { return page >= w.Start && page <= w.End }

// Pages lists the window's page numbers in ascending order.
func (w Window) Pages() []int {
	out := make([]int, 0, w.Width())
	for p := w.Start; p <= w.End; p++ {
		out = append(out, p)
	}
	return out
}

// ComputeWindow returns the window of width min(WindowWidth, totalPages)
// centred on currentPage where possible. Near the last page the window is
// re-anchored so it never shrinks: (7 of 7) gives 3..7, not 5..7.
func ComputeWindow(currentPage, totalPages int) Window {
	if totalPages < 1 {
		totalPages = 1
	}
	currentPage = clamp(currentPage, 1, totalPages)

	start := max(1, currentPage-2)
	end := min(totalPages, start+WindowWidth-1)
	if end-start < WindowWidth-1 {
		start = max(1, end-WindowWidth+1)
	}
	return Window{Start: start, End: end}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
