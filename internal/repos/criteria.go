package repos

import "github.com/shopspring/decimal"

// Search criteria are translated into WHERE clauses by each repo. Sort fields
// are allow-listed per aggregate; anything unrecognized falls back to
// created_at descending.

type ProductSearchCriteria struct {
	Search   string
	Category string
	Vendor   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  *bool
	Status   string
	Tags     []string
	SortBy   string
	SortDesc bool
}

type UserSearchCriteria struct {
	Search      string
	Role        string
	Status      string
	CreatedFrom string
	CreatedTo   string
	SortBy      string
	SortDesc    bool
}

type OrderSearchCriteria struct {
	Search        string
	Status        string
	PaymentStatus string
	UserID        string
	MinTotal      *decimal.Decimal
	MaxTotal      *decimal.Decimal
	CreatedFrom   string
	CreatedTo     string
	SortBy        string
	SortDesc      bool
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// orderClause resolves a user-supplied sort key against an allow-list.
func orderClause(sortBy string, desc bool, allowed map[string]string) string {
	if col, ok := allowed[sortBy]; ok {
		return col + " " + direction(desc)
	}
	return "created_at " + direction(desc)
}
