// Package controllers implements the HTTP handlers of the budget
// planner API. Each budget is edited through a session that owns the
// template; saves are coalesced so edit bursts hit the database once.
package controllers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/source"
	"github.com/budgetplanner/backend/internal/storage"
	"github.com/budgetplanner/backend/internal/types"
)

var (
	errBudgetNotFound   = errors.New("there is no budget with this name")
	errScenarioNotFound = errors.New("there is no scenario with this id")
	errInvalidMonth     = errors.New("the month must be specified as YYYY-MM")
)

// Controller holds the collaborators of all handlers.
type Controller struct {
	store     *storage.Store
	source    source.Source
	saveDelay time.Duration

	// Sessions are not safe for concurrent use, all access to them is
	// serialized here.
	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	session *budget.Session
	saver   *storage.Coalescer
}

// NewController creates a controller around a store and a data source.
// A saveDelay of 0 uses the default save coalescing delay.
func NewController(store *storage.Store, src source.Source, saveDelay time.Duration) *Controller {
	return &Controller{
		store:     store,
		source:    src,
		saveDelay: saveDelay,
		sessions:  make(map[string]*sessionState),
	}
}

// sessionFor returns the open session for a budget, loading it from the
// store on first access. Callers must hold co.mu.
func (co *Controller) sessionFor(name string) (*sessionState, error) {
	if state, ok := co.sessions[name]; ok {
		return state, nil
	}

	template, err := co.store.Load(name)
	if err != nil {
		return nil, err
	}

	state := co.openSession(budget.NewSession(template))
	co.sessions[name] = state
	return state, nil
}

func (co *Controller) openSession(session *budget.Session) *sessionState {
	saver := storage.NewCoalescer(func() error {
		co.mu.Lock()
		defer co.mu.Unlock()

		if !session.Dirty() {
			return nil
		}
		if err := co.store.Save(session.Template()); err != nil {
			return err
		}
		session.MarkClean()
		return nil
	}, co.saveDelay)

	return &sessionState{session: session, saver: saver}
}

// Shutdown flushes every open session so no coalesced save is lost.
func (co *Controller) Shutdown() {
	co.mu.Lock()
	states := make([]*sessionState, 0, len(co.sessions))
	for _, state := range co.sessions {
		states = append(states, state)
	}
	co.mu.Unlock()

	for _, state := range states {
		if err := state.saver.Flush(); err != nil {
			log.Error().Err(err).Msg("flush on shutdown failed")
		}
	}
}

// withSession runs fn on the budget's session under the lock and
// schedules a coalesced save when the session came out dirty.
func (co *Controller) withSession(c *gin.Context, fn func(*budget.Session) (int, error)) {
	name := c.Param("budgetName")

	co.mu.Lock()
	state, err := co.sessionFor(name)
	if err != nil {
		co.mu.Unlock()
		notFoundOrError(c, err)
		return
	}

	status, err := fn(state.session)
	dirty := state.session.Dirty()
	co.mu.Unlock()

	if err != nil {
		c.JSON(status, httperror.New(err))
		return
	}
	if dirty {
		state.saver.Notify()
	}
}

func notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, httperror.New(errBudgetNotFound))
		return
	}
	c.JSON(http.StatusInternalServerError, httperror.New(err))
}

// monthParam parses the :month URL parameter.
func monthParam(c *gin.Context) (types.Month, bool) {
	month, err := types.ParseMonth(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(errInvalidMonth))
		return types.Month{}, false
	}
	return month, true
}
