package navigation

import (
	"net/http"

	mw "finitefield.org/hanko-blog/internal/middleware"
	"finitefield.org/hanko-blog/internal/view"
)

// StateStore keeps the per-visitor view state between requests.
type StateStore interface {
	Load(r *http.Request) view.State
	Save(r *http.Request, st view.State)
}

// SessionStates stores the view state in the signed session cookie. It requires the
// session middleware upstream.
type SessionStates struct{}

func (SessionStates) Load(r *http.Request) view.State {
	cs := mw.GetSession(r).Catalog
	st := view.State{Mode: view.ParseMode(cs.Mode), Page: cs.Page, Query: cs.Query}
	if st.Page < 1 {
		st.Page = 1
	}
	return st
}

func (SessionStates) Save(r *http.Request, st view.State) {
	mw.GetSession(r).SetCatalog(mw.CatalogState{Mode: st.Mode.String(), Page: st.Page, Query: st.Query})
}
