// Package catalog implements the browsing core: filter-to-criteria
// translation, record normalization, pagination math, and the session state
// owner that runs page loads.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/handsomefox/mflix-browser/internal/logger"
	"github.com/handsomefox/mflix-browser/internal/store"
)

// Gateway is the read surface of the movie collection the session depends on.
// *store.Store satisfies it.
type Gateway interface {
	DistinctGenres(ctx context.Context) ([]string, error)
	Count(ctx context.Context, c store.Criteria) (int, error)
	FetchPage(ctx context.Context, c store.Criteria, skip, limit int) ([]store.Document, error)
}

// State is the UI-observable session state. Every mutation goes through a
// single committed closure, so a snapshot never shows a partial combination
// (loading=false with stale movies, and so on).
type State struct {
	Filters  FilterState
	Page     int
	PageSize int
	Total    int
	Movies   []Movie
	Genres   []string
	Loading  bool
	Error    string
}

func (st State) TotalPages() int   { return TotalPages(st.Total, st.PageSize) }
func (st State) HasPrev() bool     { return HasPrev(st.Page) }
func (st State) HasNext() bool     { return HasNext(st.Page, st.PageSize, st.Total) }
func (st State) PageLabel() string { return PageLabel(st.Page, st.PageSize, st.Total) }

type commitMsg struct {
	// apply mutates the state; returning true starts a page load.
	apply func(*State) bool
	done  chan struct{}
}

// Session owns the browsing state for one user session. A single goroutine
// holds the State and serializes commits; page loads run as independent
// background units of work that report back through commits. Overlapping
// loads are neither cancelled nor de-duplicated: each runs to completion and
// the last commit wins.
type Session struct {
	gw        Gateway
	commits   chan commitMsg
	snapshots chan chan State
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(gw Gateway) *Session {
	s := &Session{
		gw:        gw,
		commits:   make(chan commitMsg),
		snapshots: make(chan chan State),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Close stops the state owner. In-flight loads finish on their own; their
// commits are dropped.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

func (s *Session) run() {
	st := State{
		Filters:  FilterState{Genre: AllGenres},
		PageSize: DefaultPageSize,
		Genres:   []string{AllGenres},
	}
	for {
		select {
		case msg := <-s.commits:
			if msg.apply(&st) {
				go s.LoadCurrentPage(context.Background())
			}
			close(msg.done)
		case reply := <-s.snapshots:
			reply <- cloneState(&st)
		case <-s.quit:
			close(s.done)
			return
		}
	}
}

// commit applies one atomic state mutation and waits until it lands.
func (s *Session) commit(apply func(*State) bool) {
	msg := commitMsg{apply: apply, done: make(chan struct{})}
	select {
	case s.commits <- msg:
		<-msg.done
	case <-s.done:
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	reply := make(chan State, 1)
	select {
	case s.snapshots <- reply:
		return <-reply
	case <-s.done:
		return State{}
	}
}

func cloneState(st *State) State {
	out := *st
	out.Movies = slices.Clone(st.Movies)
	out.Genres = slices.Clone(st.Genres)
	return out
}

// Filter field edits only record the value; nothing reloads until
// ApplyFilters.

func (s *Session) SetQuery(v string) {
	s.commit(func(st *State) bool { st.Filters.Query = v; return false })
}

func (s *Session) SetGenre(v string) {
	s.commit(func(st *State) bool { st.Filters.Genre = v; return false })
}

func (s *Session) SetMinYear(v string) {
	s.commit(func(st *State) bool { st.Filters.MinYear = v; return false })
}

func (s *Session) SetMaxYear(v string) {
	s.commit(func(st *State) bool { st.Filters.MaxYear = v; return false })
}

// ApplyFilters resets to the first page and starts a load.
func (s *Session) ApplyFilters() {
	s.commit(func(st *State) bool {
		st.Page = 0
		st.Movies = nil
		st.Error = ""
		return true
	})
}

// SetPageSize parses the value with a silent fallback to the default, resets
// to the first page, and starts a load.
func (s *Session) SetPageSize(v string) {
	size := ParsePageSize(v)
	s.commit(func(st *State) bool {
		st.PageSize = size
		st.Page = 0
		st.Movies = nil
		st.Error = ""
		return true
	})
}

// NextPage advances one page; no-op on the last page.
func (s *Session) NextPage() {
	s.commit(func(st *State) bool {
		if !HasNext(st.Page, st.PageSize, st.Total) {
			return false
		}
		st.Page++
		st.Movies = nil
		return true
	})
}

// PrevPage goes back one page; no-op on the first page.
func (s *Session) PrevPage() {
	s.commit(func(st *State) bool {
		if !HasPrev(st.Page) {
			return false
		}
		st.Page--
		st.Movies = nil
		return true
	})
}

// Reload starts a load of the current page without touching filters or
// paging, as on initial view mount.
func (s *Session) Reload() {
	s.commit(func(st *State) bool { return true })
}

// LoadCurrentPage runs one load of the current page to completion: populate
// the genre facet if needed, mark loading, count and fetch under the current
// criteria, normalize, and commit the result. Failures land in State.Error
// and leave the previous movies and total untouched.
func (s *Session) LoadCurrentPage(ctx context.Context) {
	snap := s.Snapshot()

	// Genre facet is loaded once per session, on the first load.
	if len(snap.Genres) <= 1 {
		genres, err := s.gw.DistinctGenres(ctx)
		if err != nil {
			s.fail(err)
			return
		}
		slices.Sort(genres)
		facet := append([]string{AllGenres}, genres...)
		s.commit(func(st *State) bool { st.Genres = facet; return false })
	}

	s.commit(func(st *State) bool {
		st.Loading = true
		st.Error = ""
		return false
	})

	criteria := snap.Filters.Criteria()

	total, err := s.gw.Count(ctx, criteria)
	if err != nil {
		s.fail(err)
		return
	}

	skip := snap.Page * snap.PageSize
	docs, err := s.gw.FetchPage(ctx, criteria, skip, snap.PageSize)
	if err != nil {
		s.fail(err)
		return
	}

	movies := make([]Movie, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, Normalize(doc))
	}
	if len(movies) > snap.PageSize {
		movies = movies[:snap.PageSize]
	}

	s.commit(func(st *State) bool {
		st.Total = total
		st.Movies = movies
		st.Loading = false
		return false
	})
}

func (s *Session) fail(err error) {
	slog.Warn("page load failed", logger.Error(err))
	msg := errorText(err)
	s.commit(func(st *State) bool {
		st.Loading = false
		st.Error = msg
		return false
	})
}

func errorText(err error) string {
	var serr *store.Error
	if errors.As(err, &serr) {
		return serr.Error()
	}
	return "error: " + err.Error()
}
