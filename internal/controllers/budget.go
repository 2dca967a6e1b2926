package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/httputil"
	"github.com/budgetplanner/backend/internal/source"
	"github.com/budgetplanner/backend/internal/storage"
	"github.com/budgetplanner/backend/internal/types"
)

var errBudgetExists = errors.New("a budget with this name already exists")

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func (co *Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetBudgets)
		r.POST("", co.CreateBudget)
	}

	// Budget by name
	{
		r.OPTIONS("/:budgetName", httputil.OptionsGetPatchDelete)
		r.GET("/:budgetName", co.GetBudget)
		r.PATCH("/:budgetName", co.UpdateBudget)
		r.DELETE("/:budgetName", co.DeleteBudget)
		r.OPTIONS("/:budgetName/save", httputil.OptionsPost)
		r.POST("/:budgetName/save", co.SaveBudget)

		r.OPTIONS("/:budgetName/entities", httputil.OptionsPost)
		r.POST("/:budgetName/entities", co.AddCustomEntity)
		r.OPTIONS("/:budgetName/entities/:name", httputil.OptionsPostDelete)
		r.DELETE("/:budgetName/entities/:name", co.RemoveCustomEntity)

		r.OPTIONS("/:budgetName/excluded/:categoryId", httputil.OptionsPost)
		r.POST("/:budgetName/excluded/:categoryId", co.ToggleExcludedCategory)
	}

	// Register the routes for dependent resources
	co.RegisterTemplateRoutes(r.Group("/:budgetName/template"))
	co.RegisterMonthRoutes(r.Group("/:budgetName/months"))
	co.RegisterScenarioRoutes(r.Group("/:budgetName/scenarios"))
}

// GetBudgets returns the names of all stored budgets.
func (co *Controller) GetBudgets(c *gin.Context) {
	names, err := co.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperror.New(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": names})
}

type BudgetCreate struct {
	Name       string `json:"name" binding:"required"`
	StartMonth string `json:"startMonth"`
	Demo       bool   `json:"demo"` // Seed with the demo household instead of an empty template
}

// CreateBudget creates a new budget, either empty or seeded with the
// demo household.
func (co *Controller) CreateBudget(c *gin.Context) {
	var data BudgetCreate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	if _, err := co.store.Load(data.Name); err == nil {
		c.JSON(http.StatusConflict, httperror.New(errBudgetExists))
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, httperror.New(err))
		return
	}

	var template = budget.NewEmptyTemplate(data.Name, types.MonthOf(time.Now()))
	if data.Demo {
		template = source.DemoTemplate()
		template.Name = data.Name
	}
	if data.StartMonth != "" {
		start, err := types.ParseMonth(data.StartMonth)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperror.New(errInvalidMonth))
			return
		}
		template.Settings.StartMonth = start.String()
	}

	if err := co.store.Save(template); err != nil {
		c.JSON(http.StatusInternalServerError, httperror.New(err))
		return
	}

	co.mu.Lock()
	co.sessions[data.Name] = co.openSession(budget.NewSession(template))
	co.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"data": template})
}

// GetBudget returns the full budget template.
func (co *Controller) GetBudget(c *gin.Context) {
	co.withSession(c, func(s *budget.Session) (int, error) {
		c.JSON(http.StatusOK, gin.H{"data": s.Template()})
		return http.StatusOK, nil
	})
}

type BudgetUpdate struct {
	Name     *string                `json:"name"`
	Settings *budget.SettingsUpdate `json:"settings"`
}

// UpdateBudget renames a budget and/or applies a partial settings
// update. A rename moves the stored document to the new name.
func (co *Controller) UpdateBudget(c *gin.Context) {
	var data BudgetUpdate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	oldName := c.Param("budgetName")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if data.Settings != nil {
			s.UpdateSettings(*data.Settings)
		}

		if data.Name != nil && *data.Name != oldName {
			s.SetName(*data.Name)

			// Persist under the new name right away and drop the old
			// row, then re-key the open session.
			if err := co.store.Save(s.Template()); err != nil {
				return http.StatusInternalServerError, err
			}
			if err := co.store.Delete(oldName); err != nil {
				return http.StatusInternalServerError, err
			}
			s.MarkClean()
			co.sessions[*data.Name] = co.sessions[oldName]
			delete(co.sessions, oldName)
		}

		c.JSON(http.StatusOK, gin.H{"data": s.Template()})
		return http.StatusOK, nil
	})
}

// DeleteBudget removes a budget and closes its session.
func (co *Controller) DeleteBudget(c *gin.Context) {
	name := c.Param("budgetName")

	co.mu.Lock()
	if state, ok := co.sessions[name]; ok {
		state.saver.Stop()
		delete(co.sessions, name)
	}
	co.mu.Unlock()

	if err := co.store.Delete(name); err != nil {
		notFoundOrError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type CustomEntityCreate struct {
	Name string `json:"name" binding:"required"`
}

// AddCustomEntity adds a user-defined entity name to the budget
// settings. Duplicates and blank names are ignored.
func (co *Controller) AddCustomEntity(c *gin.Context) {
	var data CustomEntityCreate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.AddCustomEntity(data.Name)
		c.JSON(http.StatusOK, gin.H{"data": s.Template().Settings.CustomEntities})
		return http.StatusOK, nil
	})
}

// RemoveCustomEntity removes a user-defined entity name.
func (co *Controller) RemoveCustomEntity(c *gin.Context) {
	name := c.Param("name")

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.RemoveCustomEntity(name)
		c.Status(http.StatusNoContent)
		return http.StatusOK, nil
	})
}

// ToggleExcludedCategory flips whether a category is excluded from
// planning.
func (co *Controller) ToggleExcludedCategory(c *gin.Context) {
	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.ToggleExcludedCategory(categoryID)
		c.JSON(http.StatusOK, gin.H{"data": s.Template().Settings.ExcludedCategories})
		return http.StatusOK, nil
	})
}

// SaveBudget flushes any pending coalesced save immediately.
func (co *Controller) SaveBudget(c *gin.Context) {
	name := c.Param("budgetName")

	co.mu.Lock()
	state, err := co.sessionFor(name)
	co.mu.Unlock()
	if err != nil {
		notFoundOrError(c, err)
		return
	}

	if err := state.saver.Flush(); err != nil {
		c.JSON(http.StatusInternalServerError, httperror.New(err))
		return
	}

	c.Status(http.StatusNoContent)
}
