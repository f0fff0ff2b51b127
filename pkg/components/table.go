package components

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// ---------------------------------------------------------------------------
// Sort keys
// ---------------------------------------------------------------------------

type keyKind int

const (
	keyMissing keyKind = iota
	keyNumber
	keyString
)

// Key is the value a row exposes for sorting on one column. Missing keys
// order before numbers, numbers before strings.
type Key struct {
	kind keyKind
	num  float64
	str  string
}

// NumberKey orders numerically. NaN is treated as missing.
func NumberKey(v float64) Key {
	if math.IsNaN(v) {
		return Key{}
	}
	return Key{kind: keyNumber, num: v}
}

// StringKey orders lexically.
func StringKey(s string) Key { return Key{kind: keyString, str: s} }

// MissingKey marks an absent value.
func MissingKey() Key { return Key{} }

// OptionalKey is NumberKey(*v), or MissingKey for nil.
func OptionalKey[N int | int32 | int64 | float64](v *N) Key {
	if v == nil {
		return Key{}
	}
	return NumberKey(float64(*v))
}

// Compare returns -1, 0 or +1.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.kind, o.kind); c != 0 {
		return c
	}
	switch k.kind {
	case keyNumber:
		return cmp.Compare(k.num, o.num)
	case keyString:
		return strings.Compare(k.str, o.str)
	}
	return 0
}

// ---------------------------------------------------------------------------
// Cells and rows
// ---------------------------------------------------------------------------

// CellStyle is a semantic style resolved against the theme at render time.
type CellStyle int

const (
	StyleNormal CellStyle = iota
	StyleMuted
	StyleGood
	StyleWarn
	StyleBad
	StyleAccent
)

// MissingText is shown in place of absent values.
const MissingText = "-"

// Cell is one rendered value.
type Cell struct {
	Text  string
	Style CellStyle
	Align Align
}

// Missing is the placeholder cell for absent values.
func Missing() Cell { return Cell{Text: MissingText, Style: StyleMuted} }

// Row is implemented by every row type shown in an ExtendedTable. Cells must
// return one cell per header. delta selects phase-relative times over times
// relative to the reference point.
type Row interface {
	Cells(delta bool) []Cell
	SortKey(column int, delta bool) Key
}

// ---------------------------------------------------------------------------
// Row cursor
// ---------------------------------------------------------------------------

// TableState is the row cursor and viewport offset of a table.
type TableState struct {
	selected int
	offset   int
	height   int
}

// Selected returns the selected row index.
func (s TableState) Selected() int { return s.selected }

// Offset returns the first row in the viewport.
func (s TableState) Offset() int { return s.offset }

// Height returns the viewport height in rows; 0 means unbounded.
func (s TableState) Height() int { return s.height }

// SetHeight changes the viewport height and keeps the selection visible.
func (s *TableState) SetHeight(h int) {
	if h < 0 {
		h = 0
	}
	s.height = h
	s.follow()
}

// Next moves the cursor down one row out of n.
func (s *TableState) Next(n int) {
	s.Select(s.selected+1, n)
}

// Previous moves the cursor up one row out of n.
func (s *TableState) Previous(n int) {
	s.Select(s.selected-1, n)
}

// Select moves the cursor to i, clamped to [0, n).
func (s *TableState) Select(i, n int) {
	if n <= 0 {
		s.selected, s.offset = 0, 0
		return
	}
	s.selected = min(max(i, 0), n-1)
	s.follow()
}

// Clamp keeps the cursor valid after the row count changed to n.
func (s *TableState) Clamp(n int) {
	s.Select(s.selected, n)
	if n > 0 && s.height > 0 && s.offset > max(n-s.height, 0) {
		s.offset = max(n-s.height, 0)
	}
}

// Window returns the half-open range of rows to draw out of n.
func (s TableState) Window(n int) (start, end int) {
	start = min(s.offset, n)
	end = n
	if s.height > 0 {
		end = min(start+s.height, n)
	}
	return start, end
}

func (s *TableState) follow() {
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.height > 0 && s.selected >= s.offset+s.height {
		s.offset = s.selected - s.height + 1
	}
}

// ---------------------------------------------------------------------------
// ExtendedTable
// ---------------------------------------------------------------------------

// ColumnPadding is the gap after every rendered column.
const ColumnPadding = 2

// SortOrder is the direction of the active sort.
type SortOrder int

const (
	Unsorted SortOrder = iota
	Ascending
	Descending
)

func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return "unsorted"
}

// Column is one column chosen by Layout.
type Column struct {
	Index  int
	Header string
	Width  int
}

// ExtendedTable is the column layout, column cursor and sort state of a
// table over rows of type T. Rows are not stored; callers pass them to
// SortContent and Render. The struct holds plain data only so states can be
// compared and copied.
type ExtendedTable[T Row] struct {
	headers       []string
	widths        []int
	fixedCount    int
	firstRendered int
	renderedCount int
	selected      int
	sortedBy      int
	sortOrder     SortOrder
	width         int
	rows          TableState
}

// NewExtendedTable builds a table. widths must match headers; missing entries
// default to the header width. fixedCount is clamped to the header count.
func NewExtendedTable[T Row](headers []string, widths []int, fixedCount int) ExtendedTable[T] {
	h := slices.Clone(headers)
	w := make([]int, len(h))
	for i := range h {
		if i < len(widths) && widths[i] > 0 {
			w[i] = widths[i]
		} else {
			w[i] = max(VisibleLen(h[i]), 1)
		}
	}
	fixedCount = min(max(fixedCount, 0), len(h))
	return ExtendedTable[T]{
		headers:       h,
		widths:        w,
		fixedCount:    fixedCount,
		firstRendered: fixedCount,
	}
}

// Headers returns the column titles.
func (t *ExtendedTable[T]) Headers() []string { return t.headers }

// Selected returns the selected column.
func (t *ExtendedTable[T]) Selected() int { return t.selected }

// FirstRendered returns the first scrollable column in view.
func (t *ExtendedTable[T]) FirstRendered() int { return t.firstRendered }

// RenderedCount returns how many scrollable columns fit the last width.
func (t *ExtendedTable[T]) RenderedCount() int { return t.renderedCount }

// FixedCount returns the number of always-visible left columns.
func (t *ExtendedTable[T]) FixedCount() int { return t.fixedCount }

// Sort returns the sorted column and order.
func (t *ExtendedTable[T]) Sort() (column int, order SortOrder) { return t.sortedBy, t.sortOrder }

// Rows returns the row cursor.
func (t *ExtendedTable[T]) Rows() *TableState { return &t.rows }

// Width returns the width the table was last laid out for.
func (t *ExtendedTable[T]) Width() int { return t.width }

// Layout picks the columns that fit in width: fixed columns first, then
// scrollable columns from FirstRendered while each column plus padding still
// fits.
func (t *ExtendedTable[T]) Layout(width int) []Column {
	var cols []Column
	used := 0
	add := func(i int) bool {
		w := t.widths[i] + ColumnPadding
		if used+w > width {
			return false
		}
		used += w
		cols = append(cols, Column{Index: i, Header: t.headers[i], Width: t.widths[i]})
		return true
	}
	for i := 0; i < t.fixedCount; i++ {
		if !add(i) {
			return cols
		}
	}
	for i := t.firstRendered; i < len(t.headers); i++ {
		if !add(i) {
			break
		}
	}
	return cols
}

// RenderableConstraints returns the widths of the columns Layout picks.
func (t *ExtendedTable[T]) RenderableConstraints(width int) []int {
	cols := t.Layout(width)
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = c.Width
	}
	return out
}

// SetWidth records the available width, recomputes how many scrollable
// columns fit and scrolls so the selected column stays visible. When the
// width grows, hidden columns on the left come back into view as long as
// every column up to the last one still fits.
func (t *ExtendedTable[T]) SetWidth(width int) {
	t.width = max(width, 0)
	for t.firstRendered > t.fixedCount && t.fitsFrom(t.firstRendered-1) {
		t.firstRendered--
	}
	t.renderedCount = t.countScrollable()
	t.ensureVisible()
}

// fitsFrom reports whether the fixed columns plus every scrollable column
// from first to the end fit the current width.
func (t *ExtendedTable[T]) fitsFrom(first int) bool {
	used := 0
	for i := 0; i < t.fixedCount; i++ {
		used += t.widths[i] + ColumnPadding
	}
	for i := first; i < len(t.headers); i++ {
		used += t.widths[i] + ColumnPadding
	}
	return used <= t.width
}

func (t *ExtendedTable[T]) countScrollable() int {
	n := 0
	for _, c := range t.Layout(t.width) {
		if c.Index >= t.fixedCount {
			n++
		}
	}
	return n
}

// Next selects the column to the right, scrolling by the minimum needed.
func (t *ExtendedTable[T]) Next() {
	if t.selected+1 < len(t.headers) {
		t.selected++
	}
	t.ensureVisible()
}

// Previous selects the column to the left, scrolling by the minimum needed.
func (t *ExtendedTable[T]) Previous() {
	if t.selected > 0 {
		t.selected--
	}
	t.ensureVisible()
}

// SelectColumn selects column i if it exists.
func (t *ExtendedTable[T]) SelectColumn(i int) {
	if i < 0 || i >= len(t.headers) {
		return
	}
	t.selected = i
	t.ensureVisible()
}

func (t *ExtendedTable[T]) ensureVisible() {
	if t.selected < t.fixedCount || t.width == 0 {
		return
	}
	if t.selected < t.firstRendered {
		t.firstRendered = t.selected
		t.renderedCount = t.countScrollable()
		return
	}
	for t.firstRendered < t.selected && t.selected >= t.firstRendered+t.renderedCount {
		t.firstRendered++
		t.renderedCount = t.countScrollable()
	}
}

// CycleSort advances the sort on the selected column: Unsorted, Ascending,
// Descending, Ascending, and so on. Selecting a different column restarts at
// Ascending.
func (t *ExtendedTable[T]) CycleSort() {
	if t.sortedBy != t.selected {
		t.sortedBy = t.selected
		t.sortOrder = Ascending
		return
	}
	switch t.sortOrder {
	case Unsorted, Descending:
		t.sortOrder = Ascending
	case Ascending:
		t.sortOrder = Descending
	}
}

// SetSort sets the sort directly, ignoring out-of-range columns.
func (t *ExtendedTable[T]) SetSort(column int, order SortOrder) {
	if column < 0 || column >= len(t.headers) {
		return
	}
	t.sortedBy, t.sortOrder = column, order
}

// SortContent stably sorts rows by the active sort column and reverses them
// for Descending. Unsorted leaves rows untouched.
func (t *ExtendedTable[T]) SortContent(rows []T, delta bool) {
	if t.sortOrder == Unsorted {
		return
	}
	col := t.sortedBy
	slices.SortStableFunc(rows, func(a, b T) int {
		return a.SortKey(col, delta).Compare(b.SortKey(col, delta))
	})
	if t.sortOrder == Descending {
		slices.Reverse(rows)
	}
}
