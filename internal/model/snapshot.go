package model

// Snapshot is a consistent view of all ledger entities loaded together.
type Snapshot struct {
	Categories   []Category
	Transactions []Transaction
	Budget       BudgetTarget
}

// Category looks up a category by id.
func (s Snapshot) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
