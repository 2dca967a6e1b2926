package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/httputil"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/types"
)

var errInvalidWindow = errors.New("the month query parameter must be specified as YYYY-MM")

// RegisterSourceRoutes registers read-only routes for the raw banking
// data with the RouterGroup that is passed.
func (co *Controller) RegisterSourceRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/accounts", httputil.OptionsGet)
	r.GET("/accounts", co.GetAccounts)
	r.OPTIONS("/categories", httputil.OptionsGet)
	r.GET("/categories", co.GetCategories)
	r.OPTIONS("/transactions", httputil.OptionsGet)
	r.GET("/transactions", co.GetTransactions)
}

// GetAccounts returns all accounts of the data source.
func (co *Controller) GetAccounts(c *gin.Context) {
	accounts, err := co.source.Accounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, httperror.New(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

// GetCategories returns the flat category list of the data source. The
// optional "name" query parameter filters by a case-insensitive glob
// pattern on the category name.
func (co *Controller) GetCategories(c *gin.Context) {
	cats, err := co.source.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, httperror.New(err))
		return
	}

	if pattern := c.Query("name"); pattern != "" {
		tree := categories.Build(cats)
		matched := make([]models.Category, 0)
		for _, idx := range tree.MatchNames(pattern) {
			matched = append(matched, tree.Category(idx))
		}
		cats = matched
	}

	c.JSON(http.StatusOK, gin.H{"data": cats})
}

// GetTransactions returns the transactions of one month. The "month"
// query parameter is required, "accounts" optionally restricts to a
// comma-separated account id list.
func (co *Controller) GetTransactions(c *gin.Context) {
	month, err := types.ParseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(errInvalidWindow))
		return
	}

	var accountIDs []string
	if raw := c.Query("accounts"); raw != "" {
		accountIDs = strings.Split(raw, ",")
	} else {
		accounts, err := co.source.Accounts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, httperror.New(err))
			return
		}
		for _, account := range accounts {
			accountIDs = append(accountIDs, account.ID)
		}
	}

	transactions, err := co.source.Transactions(c.Request.Context(), month.FirstDay(), month.LastDay(), accountIDs)
	if err != nil {
		c.JSON(http.StatusBadGateway, httperror.New(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transactions})
}
