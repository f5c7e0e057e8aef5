package core

// DefaultCategories returns the first-run category set. Every call returns
// fresh slices so callers may mutate the result.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Food", Icon: "Utensils", Type: Expense, SubCategories: []string{"Groceries", "Restaurants", "Snacks"}},
		{ID: "2", Name: "Transport", Icon: "Car", Type: Expense, SubCategories: []string{"Fuel", "Public Transport", "Taxi"}},
		{ID: "3", Name: "Shopping", Icon: "ShoppingBag", Type: Expense, SubCategories: []string{"Clothes", "Electronics", "Home"}},
		{ID: "4", Name: "Entertainment", Icon: "Film", Type: Expense, SubCategories: []string{"Movies", "Games", "Events"}},
		{ID: "5", Name: "Bills", Icon: "Receipt", Type: Expense, SubCategories: []string{"Electricity", "Water", "Internet"}},
		{ID: "6", Name: "Health", Icon: "HeartPulse", Type: Expense, SubCategories: []string{"Doctor", "Medicine", "Fitness"}},
		{ID: "7", Name: "Salary", Icon: "Briefcase", Type: Income, SubCategories: []string{"Full-time", "Freelance"}},
		{ID: "8", Name: "Investment", Icon: "TrendingUp", Type: Income, SubCategories: []string{"Stocks", "Crypto", "Real Estate"}},
	}
}

// DefaultAccounts returns the first-run account set.
func DefaultAccounts() []Account {
	return []Account{
		{ID: "1", Name: "Cash", Type: CashAccount},
		{ID: "2", Name: "Bank Account", Type: BankAccount},
	}
}
