package budget

import (
	"strings"

	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session owns one budget template and is the only place that mutates
// it. Every command marks the session dirty; the persistence
// collaborator watches that signal and decides when to flush.
//
// A session belongs to one logical user session and is not safe for
// concurrent use. Callers that share a session synchronize around it.
type Session struct {
	template models.BudgetTemplate
	dirty    bool
}

// NewSession wraps a loaded template. The template is normalized so
// documents from older versions get their optional sections
// backfilled.
func NewSession(template models.BudgetTemplate) *Session {
	template.Normalize()
	return &Session{template: template}
}

// NewEmptyTemplate returns a fresh template with defaults, matching
// what a first application start creates.
func NewEmptyTemplate(name string, start types.Month) models.BudgetTemplate {
	template := models.BudgetTemplate{
		Name:    name,
		Version: "1.0.0",
		Settings: models.BudgetSettings{
			Currency:   "EUR",
			StartMonth: start.String(),
		},
	}
	template.Normalize()
	return template
}

// Template returns the session's template. The returned value shares
// the session's maps and must be treated as read-only; all mutation
// goes through commands.
func (s *Session) Template() models.BudgetTemplate {
	return s.template
}

// Dirty reports whether the template changed since the last MarkClean.
func (s *Session) Dirty() bool {
	return s.dirty
}

// MarkClean resets the dirty signal, typically after a successful save.
func (s *Session) MarkClean() {
	s.dirty = false
}

func (s *Session) markDirty() {
	s.dirty = true
}

// SetName renames the budget.
func (s *Session) SetName(name string) {
	s.template.Name = name
	s.markDirty()
}

// SetTemplateAmount sets the planned amount for a category, creating
// the entry if needed.
func (s *Session) SetTemplateAmount(categoryID string, amount decimal.Decimal) {
	entry := s.template.Template[categoryID]
	entry.Amount = amount
	s.template.Template[categoryID] = entry
	s.markDirty()
}

// RemoveTemplateEntry drops the template entry for a category.
func (s *Session) RemoveTemplateEntry(categoryID string) {
	delete(s.template.Template, categoryID)
	s.markDirty()
}

// AddLineItem appends a new line item to a category's entry and
// returns its id. The first line item is seeded with the entry's
// current amount so the sum invariant holds from the start.
func (s *Session) AddLineItem(categoryID string) string {
	entry := s.template.Template[categoryID]
	id := uuid.NewString()

	if len(entry.LineItems) == 0 {
		entry.LineItems = []models.LineItem{{ID: id, Amount: entry.Amount}}
	} else {
		entry.LineItems = append(entry.LineItems, models.LineItem{ID: id})
	}

	recomputeLineItemSum(&entry)
	s.template.Template[categoryID] = entry
	s.markDirty()
	return id
}

// LineItemUpdate carries the fields of a line item to change. Nil
// fields are left untouched.
type LineItemUpdate struct {
	Name        *string
	Amount      *decimal.Decimal
	Description *string
}

// UpdateLineItem applies an update to one line item and restores the
// sum invariant on the entry. Unknown categories or item ids are a
// no-op.
func (s *Session) UpdateLineItem(categoryID, itemID string, update LineItemUpdate) {
	entry, ok := s.template.Template[categoryID]
	if !ok || len(entry.LineItems) == 0 {
		return
	}

	for i := range entry.LineItems {
		if entry.LineItems[i].ID != itemID {
			continue
		}

		if update.Name != nil {
			entry.LineItems[i].Name = *update.Name
		}
		if update.Amount != nil {
			entry.LineItems[i].Amount = *update.Amount
		}
		if update.Description != nil {
			entry.LineItems[i].Description = *update.Description
		}

		recomputeLineItemSum(&entry)
		s.template.Template[categoryID] = entry
		s.markDirty()
		return
	}
}

// RemoveLineItem deletes a line item. When the last one goes, the
// entry keeps its amount and simply has no breakdown anymore.
func (s *Session) RemoveLineItem(categoryID, itemID string) {
	entry, ok := s.template.Template[categoryID]
	if !ok || len(entry.LineItems) == 0 {
		return
	}

	items := entry.LineItems[:0]
	for _, item := range entry.LineItems {
		if item.ID != itemID {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		entry.LineItems = nil
	} else {
		entry.LineItems = items
	}

	recomputeLineItemSum(&entry)
	s.template.Template[categoryID] = entry
	s.markDirty()
}

// The entry amount always equals the sum of its line items whenever
// line items exist.
func recomputeLineItemSum(entry *models.TemplateEntry) {
	if len(entry.LineItems) == 0 {
		return
	}

	sum := decimal.Zero
	for _, item := range entry.LineItems {
		sum = sum.Add(item.Amount)
	}
	entry.Amount = sum
}

// SetNote sets or clears the note of a category's entry. Whitespace is
// trimmed; an empty note removes the field.
func (s *Session) SetNote(categoryID, note string) {
	note = strings.TrimSpace(note)
	entry, ok := s.template.Template[categoryID]

	if note == "" {
		if !ok {
			return
		}
		entry.Note = ""
	} else {
		entry.Note = note
	}

	s.template.Template[categoryID] = entry
	s.markDirty()
}

// SetSourceAccount sets the routing source account for a category's
// entry. An empty id clears it.
func (s *Session) SetSourceAccount(categoryID, accountID string) {
	entry := s.template.Template[categoryID]
	entry.SourceAccount = accountID
	s.template.Template[categoryID] = entry
	s.markDirty()
}

// SetTargetAccount sets the routing target account for a category's
// entry. An empty id clears it.
func (s *Session) SetTargetAccount(categoryID, accountID string) {
	entry := s.template.Template[categoryID]
	entry.TargetAccount = accountID
	s.template.Template[categoryID] = entry
	s.markDirty()
}

// AddCustomEntity adds a user-defined entity name, ignoring duplicates
// and blank names.
func (s *Session) AddCustomEntity(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	for _, existing := range s.template.Settings.CustomEntities {
		if existing == name {
			return
		}
	}

	s.template.Settings.CustomEntities = append(s.template.Settings.CustomEntities, name)
	s.markDirty()
}

// RemoveCustomEntity removes a user-defined entity name.
func (s *Session) RemoveCustomEntity(name string) {
	entities := s.template.Settings.CustomEntities[:0]
	for _, existing := range s.template.Settings.CustomEntities {
		if existing != name {
			entities = append(entities, existing)
		}
	}
	s.template.Settings.CustomEntities = entities
	s.markDirty()
}

// ToggleExcludedCategory flips whether a category is excluded from
// planning.
func (s *Session) ToggleExcludedCategory(categoryID string) {
	excluded := s.template.Settings.ExcludedCategories
	for i, id := range excluded {
		if id == categoryID {
			s.template.Settings.ExcludedCategories = append(excluded[:i], excluded[i+1:]...)
			s.markDirty()
			return
		}
	}

	s.template.Settings.ExcludedCategories = append(excluded, categoryID)
	s.markDirty()
}

// SetComment sets or clears the free-text comment for a category in a
// month. Empty month maps are pruned so the document does not
// accumulate empty containers.
func (s *Session) SetComment(month types.Month, categoryID, text string) {
	text = strings.TrimSpace(text)

	if text == "" {
		monthComments, ok := s.template.Comments[month]
		if !ok {
			return
		}
		delete(monthComments, categoryID)
		if len(monthComments) == 0 {
			delete(s.template.Comments, month)
		}
		s.markDirty()
		return
	}

	monthComments, ok := s.template.Comments[month]
	if !ok {
		monthComments = map[string]string{}
		s.template.Comments[month] = monthComments
	}
	monthComments[categoryID] = text
	s.markDirty()
}

// Comment returns the comment for a category in a month, or "".
func (s *Session) Comment(month types.Month, categoryID string) string {
	return s.template.Comments[month][categoryID]
}

// CommentsForMonth returns all comments of a month keyed by category id.
func (s *Session) CommentsForMonth(month types.Month) map[string]string {
	comments := make(map[string]string, len(s.template.Comments[month]))
	for categoryID, text := range s.template.Comments[month] {
		comments[categoryID] = text
	}
	return comments
}

// SettingsUpdate carries the settings fields to change. Nil fields are
// left untouched.
type SettingsUpdate struct {
	Currency           *string   `json:"currency"`
	Accounts           *[]string `json:"accounts"`
	IncomeCategories   *[]string `json:"incomeCategories"`
	ExcludedCategories *[]string `json:"excludedCategories"`
	StartMonth         *string   `json:"startDate"`
}

// UpdateSettings applies a partial settings update.
func (s *Session) UpdateSettings(update SettingsUpdate) {
	if update.Currency != nil {
		s.template.Settings.Currency = *update.Currency
	}
	if update.Accounts != nil {
		s.template.Settings.Accounts = *update.Accounts
	}
	if update.IncomeCategories != nil {
		s.template.Settings.IncomeCategories = *update.IncomeCategories
	}
	if update.ExcludedCategories != nil {
		s.template.Settings.ExcludedCategories = *update.ExcludedCategories
	}
	if update.StartMonth != nil {
		s.template.Settings.StartMonth = *update.StartMonth
	}
	s.markDirty()
}
