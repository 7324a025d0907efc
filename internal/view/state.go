package view

import (
	"strings"

	"finitefield.org/hanko-blog/internal/catalog"
)

// Mode is the active presentation of the catalog.
type Mode int

const (
	// Paged shows one page of cards with pagination controls.
	Paged Mode = iota
	// Archive shows every post as a list, optionally grouped by category.
	Archive
)

func (m Mode) String() string {
	if m == Archive {
		return "archive"
	}
	return "paged"
}

// ParseMode maps "archive" to Archive and anything else to Paged.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "archive") {
		return Archive
	}
	return Paged
}

// State is the per-visitor view state.
type State struct {
	Mode  Mode
	Page  int
	Query string
}

// InitialState is the state every mount starts from.
func InitialState() State {
	return State{Mode: Paged, Page: 1}
}

// Searching reports whether a search query is active.
func (s State) Searching() bool { return s.Query != "" }

// Options configures presentation.
type Options struct {
	PageSize      int
	GroupArchive  bool
	CategoryOrder []string
	Uncategorized string
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return catalog.DefaultPageSize
	}
	return o.PageSize
}

// Controller applies navigation transitions to a State over one snapshot.
type Controller struct {
	snap  *catalog.Snapshot
	opts  Options
	state State
}

// NewController wraps state, normalising it against the snapshot.
func NewController(snap *catalog.Snapshot, state State, opts Options) *Controller {
	c := &Controller{snap: snap, opts: opts, state: state}
	c.state.Query = strings.TrimSpace(c.state.Query)
	if c.state.Mode != Archive {
		c.state.Mode = Paged
	}
	if c.state.Mode == Archive {
		c.state.Query = ""
	}
	c.state.Page = catalog.ClampPage(c.state.Page, c.snap.Len(), c.opts.pageSize())
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Options returns the presentation options.
func (c *Controller) Options() Options { return c.opts }

// TotalPages is the number of pages in Paged mode.
func (c *Controller) TotalPages() int {
	return catalog.TotalPages(c.snap.Len(), c.opts.pageSize())
}

// ShowPage moves to page n, clamped. It is ignored outside Paged mode.
func (c *Controller) ShowPage(n int) bool {
	if c.state.Mode != Paged {
		return false
	}
	c.state.Query = ""
	c.state.Page = catalog.ClampPage(n, c.snap.Len(), c.opts.pageSize())
	return true
}

// PrevPage steps back one page; a no-op on the first page or outside Paged mode.
func (c *Controller) PrevPage() bool {
	if c.state.Mode != Paged || c.state.Page <= 1 {
		return false
	}
	return c.ShowPage(c.state.Page - 1)
}

// NextPage steps forward one page; a no-op on the last page or outside Paged mode.
func (c *Controller) NextPage() bool {
	if c.state.Mode != Paged || c.state.Page >= c.TotalPages() {
		return false
	}
	return c.ShowPage(c.state.Page + 1)
}

// ToggleArchive flips between Paged and Archive and returns the new mode.
func (c *Controller) ToggleArchive() Mode {
	if c.state.Mode == Archive {
		c.state.Mode = Paged
	} else {
		c.state.Mode = Archive
		c.state.Query = ""
	}
	return c.state.Mode
}

// ApplySearch filters the catalog by q. A blank query returns to Paged page 1.
func (c *Controller) ApplySearch(q string) {
	q = strings.TrimSpace(q)
	c.state.Mode = Paged
	c.state.Query = q
	if q == "" {
		c.state.Page = 1
	}
}

// View computes what the current state presents.
func (c *Controller) View() View {
	size := c.opts.pageSize()
	total := c.snap.Len()
	v := View{
		Mode:       c.state.Mode,
		Query:      c.state.Query,
		Page:       c.state.Page,
		PageSize:   size,
		Total:      total,
		TotalPages: c.TotalPages(),
	}
	switch {
	case c.state.Mode == Archive:
		records := c.snap.Records()
		if c.opts.GroupArchive {
			v.Groups = catalog.GroupByCategory(records, c.opts.CategoryOrder, c.opts.Uncategorized)
		} else {
			v.Posts = records
		}
		v.ListMode = true
	case c.state.Searching():
		v.Searching = true
		v.Posts = c.snap.Filter(c.state.Query)
	default:
		v.Posts = catalog.Page(c.snap.Records(), c.state.Page, size)
		v.ShowPagination = total > size
	}
	v.PrevDisabled = v.Page <= 1
	v.NextDisabled = v.Page >= v.TotalPages
	return v
}

// View is the presentation derived from a State.
type View struct {
	Mode           Mode
	Query          string
	Searching      bool
	Posts          []catalog.PostRecord
	Groups         []catalog.Group
	ListMode       bool
	Page           int
	PageSize       int
	Total          int
	TotalPages     int
	ShowPagination bool
	PrevDisabled   bool
	NextDisabled   bool
}

// Grouped reports whether the archive is rendered as category groups.
func (v View) Grouped() bool { return v.Mode == Archive && v.Groups != nil }
