package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/charts"
	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/httputil"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/narrative"
	"github.com/budgetplanner/backend/internal/source"
	"github.com/budgetplanner/backend/internal/types"
)

// RegisterMonthRoutes registers the routes for month views with
// the RouterGroup that is passed.
func (co *Controller) RegisterMonthRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:month", httputil.OptionsGet)
	r.GET("/:month", co.GetMonth)
	r.OPTIONS("/:month/charts", httputil.OptionsGet)
	r.GET("/:month/charts", co.GetMonthCharts)
	r.OPTIONS("/:month/narrative", httputil.OptionsGet)
	r.GET("/:month/narrative", co.GetMonthNarrative)

	r.OPTIONS("/:month/comments/:categoryId", httputil.OptionsPut)
	r.PUT("/:month/comments/:categoryId", co.SetComment)

	co.RegisterLedgerRoutes(r)
}

// MonthResponse is the full aggregation result for one month.
type MonthResponse struct {
	Month       types.Month                                `json:"month"`
	IncomeRows  []budget.Row                               `json:"incomeRows"`
	ExpenseRows []budget.Row                               `json:"expenseRows"`
	Summary     budget.MonthSummary                        `json:"summary"`
	Comments    map[string]string                          `json:"comments"`
	Unplanned   map[string][]models.UnplannedTransaction   `json:"unplanned"`
	MovedOut    []int64                                    `json:"movedOut"`
	MovedIn     []budget.MovedIn                           `json:"movedIn"`
}

type monthData struct {
	tree        *categories.Tree
	incomeRows  []budget.Row
	expenseRows []budget.Row
	summary     budget.MonthSummary
}

// computeMonth aggregates one month: it fetches the category list and
// the month's transactions, applies the moved-transaction bookkeeping
// (moved-out transactions leave the month, moved-in ones are pulled
// from their booking months) and rolls everything up. When a scenario
// id is given, its resolved template replaces the baseline amounts.
func (co *Controller) computeMonth(ctx context.Context, s *budget.Session, month types.Month, scenarioID string) (monthData, error) {
	template := s.Template()

	snapshot, err := source.Fetch(ctx, co.source, month.FirstDay(), month.LastDay(), template.Settings.Accounts)
	if err != nil {
		return monthData{}, err
	}

	transactions := snapshot.Transactions

	// Moved-out transactions are attributed to another month and leave
	// this one entirely.
	movedOut := make(map[int64]struct{})
	for _, id := range s.MovedOutForMonth(month) {
		movedOut[id] = struct{}{}
	}
	if len(movedOut) > 0 {
		kept := transactions[:0]
		for _, tx := range transactions {
			if _, ok := movedOut[tx.ID]; !ok {
				kept = append(kept, tx)
			}
		}
		transactions = kept
	}

	// Moved-in transactions are fetched from their booking months.
	movedIn := s.MovedInForMonth(month)
	fetched := make(map[types.Month][]models.Transaction)
	for _, record := range movedIn {
		window, ok := fetched[record.SourceMonth]
		if !ok {
			window, err = co.source.Transactions(ctx, record.SourceMonth.FirstDay(), record.SourceMonth.LastDay(), template.Settings.Accounts)
			if err != nil {
				return monthData{}, err
			}
			fetched[record.SourceMonth] = window
		}

		for _, tx := range window {
			if tx.ID == record.TransactionID {
				transactions = append(transactions, tx)
				break
			}
		}
	}

	tree := categories.Build(snapshot.Categories)

	resolved := template.Template
	if scenarioID != "" {
		resolved = s.ResolvedTemplate(scenarioID)
	}

	groups := budget.GroupTransactions(transactions)
	incomeRoots, expenseRoots := tree.SplitIncomeExpense(template.Settings.IncomeCategories)

	incomeRows := budget.ComputeRows(tree, incomeRoots, resolved, groups, template.Settings.ExcludedCategories, true)
	expenseRows := budget.ComputeRows(tree, expenseRoots, resolved, groups, template.Settings.ExcludedCategories, false)

	return monthData{
		tree:        tree,
		incomeRows:  incomeRows,
		expenseRows: expenseRows,
		summary:     budget.Summarize(incomeRows, expenseRows),
	}, nil
}

// GetMonth returns the aggregated month view. An optional "scenario"
// query parameter resolves that scenario's amounts instead of the
// baseline.
func (co *Controller) GetMonth(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	co.withSession(c, func(s *budget.Session) (int, error) {
		data, err := co.computeMonth(c.Request.Context(), s, month, c.Query("scenario"))
		if err != nil {
			return http.StatusBadGateway, err
		}

		c.JSON(http.StatusOK, gin.H{"data": MonthResponse{
			Month:       month,
			IncomeRows:  data.incomeRows,
			ExpenseRows: data.expenseRows,
			Summary:     data.summary,
			Comments:    s.CommentsForMonth(month),
			Unplanned:   s.UnplannedForMonth(month),
			MovedOut:    s.MovedOutForMonth(month),
			MovedIn:     s.MovedInForMonth(month),
		}})
		return http.StatusOK, nil
	})
}

// ChartsResponse bundles all chart-ready shapes of one month.
type ChartsResponse struct {
	Pie             []charts.PieSlice        `json:"pie"`
	Bar             []charts.BarItem         `json:"bar"`
	Alerts          []charts.OverBudgetAlert `json:"alerts"`
	UnplannedAlerts []charts.UnplannedAlert  `json:"unplannedAlerts"`
}

// GetMonthCharts returns the month's chart data. The "value" query
// parameter selects the pie mode, planned or actual (default).
func (co *Controller) GetMonthCharts(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	mode := charts.ValueActual
	if c.Query("value") == string(charts.ValuePlanned) {
		mode = charts.ValuePlanned
	}

	co.withSession(c, func(s *budget.Session) (int, error) {
		data, err := co.computeMonth(c.Request.Context(), s, month, c.Query("scenario"))
		if err != nil {
			return http.StatusBadGateway, err
		}

		c.JSON(http.StatusOK, gin.H{"data": ChartsResponse{
			Pie:             charts.RowsToPieData(data.expenseRows, mode),
			Bar:             charts.RowsToBarData(data.expenseRows),
			Alerts:          charts.CollectOverBudgetItems(data.incomeRows, data.expenseRows),
			UnplannedAlerts: charts.CollectUnplannedAlerts(s.UnplannedForMonth(month), data.tree),
		}})
		return http.StatusOK, nil
	})
}

// GetMonthNarrative returns the month as plain text for language-model
// consumption.
func (co *Controller) GetMonthNarrative(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	scenarioID := c.Query("scenario")

	co.withSession(c, func(s *budget.Session) (int, error) {
		data, err := co.computeMonth(c.Request.Context(), s, month, scenarioID)
		if err != nil {
			return http.StatusBadGateway, err
		}

		var scenarioName string
		if scenario, ok := s.Scenario(scenarioID); ok {
			scenarioName = scenario.Name
		}

		c.String(http.StatusOK, narrative.BuildBudgetContext(data.incomeRows, data.expenseRows, data.summary, month, scenarioName))
		return http.StatusOK, nil
	})
}

type CommentUpdate struct {
	Text string `json:"text"`
}

// SetComment sets or clears the comment of a category in a month. An
// empty text removes the comment.
func (co *Controller) SetComment(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}

	var data CommentUpdate
	if status, err := httputil.BindData(c, &data); err != nil {
		c.JSON(status, httperror.New(err))
		return
	}

	categoryID := c.Param("categoryId")

	co.withSession(c, func(s *budget.Session) (int, error) {
		s.SetComment(month, categoryID, data.Text)
		c.JSON(http.StatusOK, gin.H{"data": s.CommentsForMonth(month)})
		return http.StatusOK, nil
	})
}
