package storage_test

import (
	"testing"

	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/storage"
	"github.com/budgetplanner/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TestSuiteStandard struct {
	suite.Suite
	store *storage.Store
}

// Pseudo-Test run by go test that runs the test suite.
func TestSuite(t *testing.T) {
	suite.Run(t, new(TestSuiteStandard))
}

// SetupTest is called before each test in the suite.
func (suite *TestSuiteStandard) SetupTest() {
	store, err := storage.Connect(test.TmpFile(suite.T()))
	if err != nil {
		suite.Require().FailNowf("Database connection failed", "%#v", err)
	}
	suite.store = store
}

// TearDownTest is called after each test in the suite.
func (suite *TestSuiteStandard) TearDownTest() {
	suite.store.Close()
}

func (suite *TestSuiteStandard) testTemplate(name string) models.BudgetTemplate {
	template := models.BudgetTemplate{
		Name:    name,
		Version: "1.0.0",
		Settings: models.BudgetSettings{
			Currency:   "EUR",
			StartMonth: "2026-01",
		},
		Template: map[string]models.TemplateEntry{
			"rent": {Amount: decimal.RequireFromString("900")},
		},
	}
	template.Normalize()
	return template
}

func (suite *TestSuiteStandard) TestSaveAndLoad() {
	template := suite.testTemplate("Household")

	suite.Require().NoError(suite.store.Save(template))

	loaded, err := suite.store.Load("Household")
	suite.Require().NoError(err)
	suite.Assert().Equal("Household", loaded.Name)
	suite.Assert().True(loaded.Template["rent"].Amount.Equal(decimal.RequireFromString("900")))
}

func (suite *TestSuiteStandard) TestSaveUpserts() {
	template := suite.testTemplate("Household")
	suite.Require().NoError(suite.store.Save(template))

	template.Template["rent"] = models.TemplateEntry{Amount: decimal.RequireFromString("950")}
	suite.Require().NoError(suite.store.Save(template))

	loaded, err := suite.store.Load("Household")
	suite.Require().NoError(err)
	suite.Assert().True(loaded.Template["rent"].Amount.Equal(decimal.RequireFromString("950")))

	names, err := suite.store.List()
	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"Household"}, names)
}

func (suite *TestSuiteStandard) TestLoadNormalizesDocument() {
	// A minimal document without optional sections must come back with
	// all of them present.
	suite.Require().NoError(suite.store.Save(models.BudgetTemplate{Name: "sparse", Version: "1.0.0"}))

	loaded, err := suite.store.Load("sparse")
	suite.Require().NoError(err)
	suite.Assert().NotNil(loaded.Template)
	suite.Assert().NotNil(loaded.Comments)
	suite.Assert().NotNil(loaded.Unplanned)
	suite.Assert().NotNil(loaded.Moved)
}

func (suite *TestSuiteStandard) TestLoadNotFound() {
	_, err := suite.store.Load("missing")
	suite.Assert().ErrorIs(err, storage.ErrNotFound)
}

func (suite *TestSuiteStandard) TestList() {
	suite.Require().NoError(suite.store.Save(suite.testTemplate("b")))
	suite.Require().NoError(suite.store.Save(suite.testTemplate("a")))

	names, err := suite.store.List()
	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"a", "b"}, names)
}

func (suite *TestSuiteStandard) TestDelete() {
	suite.Require().NoError(suite.store.Save(suite.testTemplate("gone")))
	suite.Require().NoError(suite.store.Delete("gone"))

	_, err := suite.store.Load("gone")
	suite.Assert().ErrorIs(err, storage.ErrNotFound)

	suite.Assert().ErrorIs(suite.store.Delete("gone"), storage.ErrNotFound)
}
