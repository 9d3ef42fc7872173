package report

import (
	"sort"
	"strings"

	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
)

// FilterAll disables the corresponding criterion.
const FilterAll = "all"

// Filter narrows a fetched group list for display. Status is an exact
// case-insensitive match against the group status; Period is a substring
// matched case-insensitively against the month label; Category is a substring
// matched case-insensitively against each member expense's category.
type Filter struct {
	Status   string
	Period   string
	Category string
}

func (f Filter) statusActive() bool {
	return f.Status != "" && !strings.EqualFold(f.Status, FilterAll)
}

func (f Filter) periodActive() bool {
	return f.Period != "" && !strings.EqualFold(f.Period, FilterAll)
}

func (f Filter) categoryActive() bool {
	return f.Category != "" && !strings.EqualFold(f.Category, FilterAll)
}

// Apply returns the groups surviving the status and period criteria, in input
// order, with each survivor's expense list narrowed by the category criterion.
//
// Group Total and Count are deliberately NOT recomputed after the category
// narrowing: they keep the server-reported values even when the displayed
// expense list is a subset. The source UI behaves this way and the admin view
// relies on the group header still describing the whole month.
// An empty result is a valid outcome, distinct from an error.
func Apply(groups []expense.Group, f Filter) []expense.Group {
	out := make([]expense.Group, 0, len(groups))

	for _, group := range groups {
		if f.statusActive() && !strings.EqualFold(group.Status, f.Status) {
			continue
		}
		if f.periodActive() && !containsFold(group.Month, f.Period) {
			continue
		}

		if f.categoryActive() {
			narrowed := make([]expense.Expense, 0, len(group.Expenses))
			for _, exp := range group.Expenses {
				if containsFold(exp.Category, f.Category) {
					narrowed = append(narrowed, exp)
				}
			}
			group.Expenses = narrowed
		}

		out = append(out, group)
	}

	return out
}

// SplitByStatus partitions filtered groups into the pending and approved
// sections the report views render.
func SplitByStatus(groups []expense.Group) (pending, approved []expense.Group) {
	for _, group := range groups {
		switch {
		case group.IsPending():
			pending = append(pending, group)
		case group.IsApproved():
			approved = append(approved, group)
		}
	}
	return pending, approved
}

// CategoryAggregate is a derived, transient per-category rollup for a single
// group's detail chart. Never persisted.
type CategoryAggregate struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// AggregateByCategory groups the expenses of one group by category name,
// accumulating amount and count. First occurrence establishes insertion
// order; the output is sorted by descending value, stable, so equal values
// keep first-seen order.
func AggregateByCategory(expenses []expense.Expense) []CategoryAggregate {
	index := make(map[string]int, len(expenses))
	aggregates := make([]CategoryAggregate, 0, len(expenses))

	for _, exp := range expenses {
		i, seen := index[exp.Category]
		if !seen {
			i = len(aggregates)
			index[exp.Category] = i
			aggregates = append(aggregates, CategoryAggregate{Name: exp.Category})
		}
		aggregates[i].Value += exp.TotalAmount
		aggregates[i].Count++
	}

	sort.SliceStable(aggregates, func(a, b int) bool {
		return aggregates[a].Value > aggregates[b].Value
	})

	return aggregates
}

// Percentage computes the aggregate's share of the group total at render
// time. A zero total yields 0, never NaN.
func Percentage(value, groupTotal float64) float64 {
	if groupTotal == 0 {
		return 0
	}
	return value / groupTotal * 100
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
