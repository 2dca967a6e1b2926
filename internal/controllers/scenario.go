package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/httputil"
)

// RegisterScenarioRoutes registers the routes for scenarios with
// the RouterGroup that is passed.
func (co *Controller) RegisterScenarioRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetScenarios)
		r.POST("", co.CreateScenario)
	}

	// Scenario by id
	{
		r.OPTIONS("/:scenarioId", httputil.OptionsGetPatchDelete)
		r.GET("/:scenarioId", co.GetScenario)
		r.PATCH("/:scenarioId", co.UpdateScenario)
		r.DELETE("/:scenarioId", co.DeleteScenario)

		r.OPTIONS("/:scenarioId/duplicate", httputil.OptionsPost)
		r.POST("/:scenarioId/duplicate", co.DuplicateScenario)
		r.OPTIONS("/:scenarioId/apply", httputil.OptionsPost)
		r.POST("/:scenarioId/apply", co.ApplyScenario)
		r.OPTIONS("/:scenarioId/impact", httputil.OptionsGet)
		r.GET("/:scenarioId/impact", co.GetScenarioImpact)
	}

	// Overrides and virtual items
	{
		r.OPTIONS("/:scenarioId/overrides/:categoryId", httputil.OptionsPut)
		r.PUT("/:scenarioId/overrides/:categoryId", co.SetOverride)

		r.OPTIONS("/:scenarioId/virtual-items", httputil.OptionsPost)
		r.POST("/:scenarioId/virtual-items", co.CreateVirtualItem)
		r.OPTIONS("/:scenarioId/virtual-items/:itemId", httputil.OptionsGetPatchDelete)
		r.PATCH("/:scenarioId/virtual-items/:itemId", co.UpdateVirtualItem)
		r.DELETE("/:scenarioId/virtual-items/:itemId", co.DeleteVirtualItem)
	}
}

// GetScenarios lists all scenarios of a budget.
func (co *Controller) GetScenarios(c *gin.Context) {
	co.withSession(c, func(s *budget.Session) (int, error) {
		c.JSON(http.StatusOK, gin.H{"data": s.Template().Scenarios})
		return http.StatusOK, nil
	})
}

type ScenarioCreate struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateScenario creates a new empty scenario.
func (co *Controller) CreateScenario(c *gin.Context) {
	var data ScenarioCreate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	co.withSession(c, func(s *budget.Session) (int, error) {
		scenario := s.AddScenario(data.Name, data.Description)
		c.JSON(http.StatusCreated, gin.H{"data": scenario})
		return http.StatusOK, nil
	})
}

// GetScenario returns one scenario including its resolved template.
func (co *Controller) GetScenario(c *gin.Context) {
	scenarioID := c.Param("scenarioId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		scenario, ok := s.Scenario(scenarioID)
		if !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"scenario": scenario,
			"resolved": s.ResolvedTemplate(scenarioID),
		}})
		return http.StatusOK, nil
	})
}

type ScenarioUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

// UpdateScenario applies a partial metadata update to a scenario.
func (co *Controller) UpdateScenario(c *gin.Context) {
	var data ScenarioUpdate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	scenarioID := c.Param("scenarioId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if _, ok := s.Scenario(scenarioID); !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		s.UpdateScenario(scenarioID, budget.ScenarioUpdate{
			Name:        data.Name,
			Description: data.Description,
			Notes:       data.Notes,
		})

		scenario, _ := s.Scenario(scenarioID)
		c.JSON(http.StatusOK, gin.H{"data": scenario})
		return http.StatusOK, nil
	})
}

// DeleteScenario removes a scenario.
func (co *Controller) DeleteScenario(c *gin.Context) {
	scenarioID := c.Param("scenarioId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if !s.DeleteScenario(scenarioID) {
			return http.StatusNotFound, errScenarioNotFound
		}

		c.Status(http.StatusNoContent)
		return http.StatusOK, nil
	})
}

// DuplicateScenario deep-copies a scenario under a fresh id.
func (co *Controller) DuplicateScenario(c *gin.Context) {
	scenarioID := c.Param("scenarioId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		duplicate, ok := s.DuplicateScenario(scenarioID)
		if !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		c.JSON(http.StatusCreated, gin.H{"data": duplicate})
		return http.StatusOK, nil
	})
}

// ApplyScenario promotes a scenario's overrides into the baseline and
// deletes the scenario. This cannot be undone.
func (co *Controller) ApplyScenario(c *gin.Context) {
	scenarioID := c.Param("scenarioId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if !s.ApplyScenarioToBaseline(scenarioID) {
			return http.StatusNotFound, errScenarioNotFound
		}

		c.JSON(http.StatusOK, gin.H{"data": s.Template().Template})
		return http.StatusOK, nil
	})
}

// GetScenarioImpact compares the scenario against the baseline over
// the current category tree.
func (co *Controller) GetScenarioImpact(c *gin.Context) {
	scenarioID := c.Param("scenarioId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		cats, err := co.source.Categories(c.Request.Context())
		if err != nil {
			return http.StatusBadGateway, err
		}

		summary, ok := s.ImpactSummary(categories.Build(cats), scenarioID)
		if !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		c.JSON(http.StatusOK, gin.H{"data": summary})
		return http.StatusOK, nil
	})
}

type OverrideUpdate struct {
	Amount decimal.Decimal `json:"amount"`
}

// SetOverride sets the scenario's replacement amount for a category.
// An amount within 0.005 of the baseline removes the override instead.
func (co *Controller) SetOverride(c *gin.Context) {
	var data OverrideUpdate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	scenarioID := c.Param("scenarioId")
	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if _, ok := s.Scenario(scenarioID); !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		s.SetScenarioOverride(scenarioID, categoryID, data.Amount)

		scenario, _ := s.Scenario(scenarioID)
		c.JSON(http.StatusOK, gin.H{"data": scenario.Overrides})
		return http.StatusOK, nil
	})
}

type VirtualItemCreate struct {
	Name     string          `json:"name" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	IsIncome bool            `json:"isIncome"`
}

// CreateVirtualItem adds a synthetic amount to a scenario.
func (co *Controller) CreateVirtualItem(c *gin.Context) {
	var data VirtualItemCreate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	scenarioID := c.Param("scenarioId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		item, ok := s.AddVirtualItem(scenarioID, data.Name, data.Amount, data.IsIncome)
		if !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		c.JSON(http.StatusCreated, gin.H{"data": item})
		return http.StatusOK, nil
	})
}

type VirtualItemUpdate struct {
	Name     *string          `json:"name"`
	Amount   *decimal.Decimal `json:"amount"`
	IsIncome *bool            `json:"isIncome"`
}

// UpdateVirtualItem applies a partial update to one virtual item.
func (co *Controller) UpdateVirtualItem(c *gin.Context) {
	var data VirtualItemUpdate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	scenarioID := c.Param("scenarioId")
	itemID := c.Param("itemId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if _, ok := s.Scenario(scenarioID); !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		s.UpdateVirtualItem(scenarioID, itemID, budget.VirtualItemUpdate{
			Name:     data.Name,
			Amount:   data.Amount,
			IsIncome: data.IsIncome,
		})

		scenario, _ := s.Scenario(scenarioID)
		c.JSON(http.StatusOK, gin.H{"data": scenario.VirtualItems})
		return http.StatusOK, nil
	})
}

// DeleteVirtualItem removes a virtual item from a scenario.
func (co *Controller) DeleteVirtualItem(c *gin.Context) {
	scenarioID := c.Param("scenarioId")
	itemID := c.Param("itemId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if _, ok := s.Scenario(scenarioID); !ok {
			return http.StatusNotFound, errScenarioNotFound
		}

		s.RemoveVirtualItem(scenarioID, itemID)
		c.Status(http.StatusNoContent)
		return http.StatusOK, nil
	})
}
