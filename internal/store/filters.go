package store

import (
	"net/url"
	"strconv"
	"time"
)

// All is the "no restriction" value for the wallet and category filters.
const All = "all"

const dateLayout = "2006-01-02"

// Filters is the transaction list query. Empty strings, zero numbers and
// All are left out of the request.
type Filters struct {
	Page       int
	Limit      int
	StartDate  string
	EndDate    string
	WalletID   string
	CategoryID string
	Search     string
	Type       string
}

// DefaultFilters matches the backend defaults.
func DefaultFilters() Filters {
	return Filters{
		Page:       1,
		Limit:      10,
		WalletID:   All,
		CategoryID: All,
	}
}

// FilterOption changes one filter field. Options apply in order.
type FilterOption func(*Filters)

func Page(n int) FilterOption  { return func(f *Filters) { f.Page = n } }
func Limit(n int) FilterOption { return func(f *Filters) { f.Limit = n } }

// DateRange sets start and end dates (inclusive, day precision).
func DateRange(start, end time.Time) FilterOption {
	return func(f *Filters) {
		f.StartDate = formatDate(start)
		f.EndDate = formatDate(end)
	}
}

// StartDate and EndDate take YYYY-MM-DD strings; "" clears.
func StartDate(s string) FilterOption { return func(f *Filters) { f.StartDate = s } }
func EndDate(s string) FilterOption   { return func(f *Filters) { f.EndDate = s } }

func Wallet(id int64) FilterOption {
	return func(f *Filters) { f.WalletID = strconv.FormatInt(id, 10) }
}

func AllWallets() FilterOption { return func(f *Filters) { f.WalletID = All } }

func Category(id int64) FilterOption {
	return func(f *Filters) { f.CategoryID = strconv.FormatInt(id, 10) }
}

func AllCategories() FilterOption { return func(f *Filters) { f.CategoryID = All } }

func Search(s string) FilterOption { return func(f *Filters) { f.Search = s } }

// Type restricts the list to one transaction type; "" or All clears it.
func Type(t string) FilterOption { return func(f *Filters) { f.Type = t } }

func (f Filters) with(opts []FilterOption) Filters {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// Query encodes the list request.
func (f Filters) Query() url.Values {
	q := url.Values{}
	setInt(q, "page", f.Page)
	setInt(q, "limit", f.Limit)
	set(q, "start_date", f.StartDate)
	set(q, "end_date", f.EndDate)
	set(q, "wallet_id", f.WalletID)
	set(q, "category_id", f.CategoryID)
	set(q, "search", f.Search)
	set(q, "type", f.Type)
	return q
}

// CalendarQuery encodes the calendar request, which ignores paging and type.
func (f Filters) CalendarQuery() url.Values {
	q := url.Values{}
	set(q, "start_date", f.StartDate)
	set(q, "end_date", f.EndDate)
	set(q, "wallet_id", f.WalletID)
	set(q, "category_id", f.CategoryID)
	set(q, "search", f.Search)
	return q
}

// HasDateRange reports whether both ends of the date range are set.
func (f Filters) HasDateRange() bool {
	return f.StartDate != "" && f.EndDate != ""
}

func set(q url.Values, key, value string) {
	if value == "" || value == All {
		return
	}
	q.Set(key, value)
}

func setInt(q url.Values, key string, value int) {
	if value <= 0 {
		return
	}
	q.Set(key, strconv.Itoa(value))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
