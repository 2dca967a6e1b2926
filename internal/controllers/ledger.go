package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/httputil"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/types"
)

var errInvalidTransactionID = errors.New("the transaction id must be an integer")

// RegisterLedgerRoutes registers the unplanned and moved transaction
// routes with the month RouterGroup that is passed.
func (co *Controller) RegisterLedgerRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:month/unplanned/:categoryId", httputil.OptionsPost)
	r.POST("/:month/unplanned/:categoryId", co.MarkUnplanned)
	r.OPTIONS("/:month/unplanned/:categoryId/:txId", httputil.OptionsPostDelete)
	r.DELETE("/:month/unplanned/:categoryId/:txId", co.UnmarkUnplanned)

	r.OPTIONS("/:month/moves", httputil.OptionsPost)
	r.POST("/:month/moves", co.MoveTransactions)
	r.OPTIONS("/:month/moves/:txId", httputil.OptionsPostDelete)
	r.DELETE("/:month/moves/:txId", co.UnmoveTransaction)
}

type MarkUnplannedRequest struct {
	Transactions []models.UnplannedTransaction `json:"transactions" binding:"required"`
}

// MarkUnplanned flags transactions as unplanned for a category in a
// month. Already flagged transaction ids are ignored.
func (co *Controller) MarkUnplanned(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	var data MarkUnplannedRequest
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.MarkUnplanned(month, categoryID, data.Transactions)
		c.JSON(http.StatusOK, gin.H{"data": s.UnplannedForMonth(month)})
		return http.StatusOK, nil
	})
}

// UnmarkUnplanned removes one transaction from a category's unplanned
// set.
func (co *Controller) UnmarkUnplanned(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	txID, err := strconv.ParseInt(c.Param("txId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(errInvalidTransactionID))
		return
	}

	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.UnmarkUnplanned(month, categoryID, txID)
		c.Status(http.StatusNoContent)
		return http.StatusOK, nil
	})
}

type MoveRequest struct {
	TargetMonth  types.Month `json:"targetMonth" binding:"required"`
	Transactions []int64     `json:"transactions" binding:"required"`
}

// MoveTransactions attributes transactions booked in the URL month to
// the target month from the request body.
func (co *Controller) MoveTransactions(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	var data MoveRequest
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.MoveTransactions(month, data.TargetMonth, data.Transactions)
		c.JSON(http.StatusOK, gin.H{"data": s.MovedOutForMonth(month)})
		return http.StatusOK, nil
	})
}

// UnmoveTransaction reverts a move, returning the transaction to its
// booking month.
func (co *Controller) UnmoveTransaction(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	txID, err := strconv.ParseInt(c.Param("txId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(errInvalidTransactionID))
		return
	}

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.UnmoveTransaction(month, txID)
		c.Status(http.StatusNoContent)
		return http.StatusOK, nil
	})
}
