package reports

import (
	"encoding/json"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// saved is the part of a page's state that survives between requests. Rows
// are refetched on every view; report data is never cached.
type saved struct {
	Filters  Filters `json:"filters"`
	Loaded   bool    `json:"loaded"`
	Announce bool    `json:"announce,omitempty"`
}

func sessionKey(slug string) string {
	return "report:" + slug
}

func (d *Definition) load(sess *shared.Session) (saved, bool) {
	var s saved
	if sess == nil {
		return s, false
	}
	raw := sess.Get(sessionKey(d.Slug))
	if raw == "" {
		return s, false
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return saved{}, false
	}
	return s, true
}

func (d *Definition) store(sess *shared.Session, s saved) {
	if sess == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	sess.Set(sessionKey(d.Slug), string(raw))
}

func (d *Definition) forget(sess *shared.Session) {
	if sess == nil {
		return
	}
	sess.Delete(sessionKey(d.Slug))
}

// restore rebuilds the page state from the session.
func (d *Definition) restore(sess *shared.Session) (State, saved) {
	st := d.Initial()
	s, ok := d.load(sess)
	if !ok {
		return st, saved{Filters: st.Filters}
	}
	for _, f := range d.Filters {
		if v, present := s.Filters[f.Name]; present {
			st = d.Reduce(st, Action{Kind: ActionSetFilter, Field: f.Name, Value: v})
		}
	}
	s.Filters = st.Filters
	return st, s
}
