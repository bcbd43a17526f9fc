package pagination

import "strconv"

// ControlKind identifies one element of the navigation bar.
type ControlKind string

const (
	KindPrev     ControlKind = "prev"
	KindPage     ControlKind = "page"
	KindEllipsis ControlKind = "ellipsis"
	KindNext     ControlKind = "next"
)

const (
	prevLabel     = "« Prev"
	nextLabel     = "Next »"
	ellipsisLabel = "..."
)

// Control is a single navigation element. Page is the page a control
// requests when activated; it is zero for ellipses and disabled arrows.
type Control struct {
	Kind     ControlKind `json:"kind"`
	Page     int         `json:"page,omitempty"`
	Label    string      `json:"label"`
	Active   bool        `json:"active,omitempty"`
	Disabled bool        `json:"disabled,omitempty"`
}

// Interactive reports whether activating the control issues a page request.
func (c Control) Interactive() bool {
	return !c.Disabled && c.Kind != KindEllipsis && c.Page > 0
}

// BuildControls lays out the navigation bar for s:
//
//	[Prev] [1] [...]? [window pages] [...]? [last] [Next]
//
// Page 1 precedes the window only when the window starts after it, and the
// ellipsis only when there is a gap (Start > 2). The trailing side mirrors it.
func BuildControls(s PageState) []Control {
	total := max(1, s.TotalPages)
	current := clamp(s.CurrentPage, 1, total)
	w := ComputeWindow(current, total)

	out := make([]Control, 0, w.Width()+6)

	prev := Control{Kind: KindPrev, Label: prevLabel, Disabled: current == 1}
	if !prev.Disabled {
		prev.Page = current - 1
	}
	out = append(out, prev)

	if w.Start > 1 {
		out = append(out, pageControl(1, false))
		if w.Start > 2 {
			out = append(out, Control{Kind: KindEllipsis, Label: ellipsisLabel, Disabled: true})
		}
	}

	for p := w.Start; p <= w.End; p++ {
		out = append(out, pageControl(p, p == current))
	}

	if w.End < total {
		if w.End < total-1 {
			out = append(out, Control{Kind: KindEllipsis, Label: ellipsisLabel, Disabled: true})
		}
		out = append(out, pageControl(total, false))
	}

	next := Control{Kind: KindNext, Label: nextLabel, Disabled: current == total}
	if !next.Disabled {
		next.Page = current + 1
	}
	return append(out, next)
}

func pageControl(page int, active bool) Control {
	return Control{Kind: KindPage, Page: page, Label: strconv.Itoa(page), Active: active}
}
