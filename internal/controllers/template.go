package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/httputil"
)

var errLineItemNotFound = errors.New("there is no line item with this id")

// RegisterTemplateRoutes registers the routes for template entries with
// the RouterGroup that is passed.
func (co *Controller) RegisterTemplateRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:categoryId", httputil.OptionsGetPatchDelete)
	r.PATCH("/:categoryId", co.UpdateTemplateEntry)
	r.DELETE("/:categoryId", co.DeleteTemplateEntry)

	r.OPTIONS("/:categoryId/line-items", httputil.OptionsPost)
	r.POST("/:categoryId/line-items", co.CreateLineItem)
	r.OPTIONS("/:categoryId/line-items/:itemId", httputil.OptionsGetPatchDelete)
	r.PATCH("/:categoryId/line-items/:itemId", co.UpdateLineItem)
	r.DELETE("/:categoryId/line-items/:itemId", co.DeleteLineItem)
}

type TemplateEntryUpdate struct {
	Amount        *decimal.Decimal `json:"amount"`
	Note          *string          `json:"note"`
	SourceAccount *string          `json:"sourceAccount"`
	TargetAccount *string          `json:"targetAccount"`
}

// UpdateTemplateEntry applies a partial update to a category's template
// entry, creating it if needed.
func (co *Controller) UpdateTemplateEntry(c *gin.Context) {
	var data TemplateEntryUpdate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if data.Amount != nil {
			s.SetTemplateAmount(categoryID, *data.Amount)
		}
		if data.Note != nil {
			s.SetNote(categoryID, *data.Note)
		}
		if data.SourceAccount != nil {
			s.SetSourceAccount(categoryID, *data.SourceAccount)
		}
		if data.TargetAccount != nil {
			s.SetTargetAccount(categoryID, *data.TargetAccount)
		}

		c.JSON(http.StatusOK, gin.H{"data": s.Template().Template[categoryID]})
		return http.StatusOK, nil
	})
}

// DeleteTemplateEntry removes the template entry for a category.
func (co *Controller) DeleteTemplateEntry(c *gin.Context) {
	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.RemoveTemplateEntry(categoryID)
		c.Status(http.StatusNoContent)
		return http.StatusOK, nil
	})
}

// CreateLineItem adds a line item to a category's template entry and
// returns its id.
func (co *Controller) CreateLineItem(c *gin.Context) {
	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		id := s.AddLineItem(categoryID)
		c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id}})
		return http.StatusOK, nil
	})
}

type LineItemUpdate struct {
	Name        *string          `json:"name"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
}

// UpdateLineItem applies a partial update to one line item. The entry
// amount is recomputed to keep the sum invariant.
func (co *Controller) UpdateLineItem(c *gin.Context) {
	var data LineItemUpdate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	categoryID := c.Param("categoryId")
	itemID := c.Param("itemId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if !hasLineItem(s, categoryID, itemID) {
			return http.StatusNotFound, errLineItemNotFound
		}

		s.UpdateLineItem(categoryID, itemID, budget.LineItemUpdate{
			Name:        data.Name,
			Amount:      data.Amount,
			Description: data.Description,
		})

		c.JSON(http.StatusOK, gin.H{"data": s.Template().Template[categoryID]})
		return http.StatusOK, nil
	})
}

// DeleteLineItem removes a line item from a category's template entry.
func (co *Controller) DeleteLineItem(c *gin.Context) {
	categoryID := c.Param("categoryId")
	itemID := c.Param("itemId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		if !hasLineItem(s, categoryID, itemID) {
			return http.StatusNotFound, errLineItemNotFound
		}

		s.RemoveLineItem(categoryID, itemID)
		c.Status(http.StatusNoContent)
		return http.StatusOK, nil
	})
}

func hasLineItem(s *budget.Session, categoryID, itemID string) bool {
	for _, item := range s.Template().Template[categoryID].LineItems {
		if item.ID == itemID {
			return true
		}
	}
	return false
}
