package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-carpet-shop/internal/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 100000
)

// Kind tells the filter layer how to parse a query-string value.
type Kind int

const (
	String Kind = iota
	Int
	Decimal
	Bool
	UUID
	Time
)

// Lookup is the suffix after "__" in a filter key. The empty lookup is an exact match.
type Lookup string

const (
	Exact     Lookup = ""
	IContains Lookup = "icontains"
	Gte       Lookup = "gte"
	Lte       Lookup = "lte"
	Gt        Lookup = "gt"
	Lt        Lookup = "lt"
	YearGt    Lookup = "year_gt"
	YearLt    Lookup = "year_lt"
)

var (
	Text    = []Lookup{Exact, IContains}
	Numeric = []Lookup{Exact, IContains, Gte, Lte, Gt, Lt}
	Range   = []Lookup{Exact, Gte, Lte, Gt, Lt}
	Dates   = []Lookup{Exact, Gte, Lte, Gt, Lt, YearGt, YearLt}
	Ref     = []Lookup{Exact}
)

// Field describes one filterable column.
type Field struct {
	Column  string
	Kind    Kind
	Lookups []Lookup
}

// Custom applies a filter that does not map to a single column.
type Custom func(db *gorm.DB, value string) (*gorm.DB, error)

// Spec is the set of filters an entity listing accepts.
type Spec struct {
	Fields map[string]Field
	Custom map[string]Custom
	Order  string
}

// Params is a parsed listing request.
type Params struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// Page is the envelope of every listing.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

type valuator interface {
	Valuate()
}

// ParseParams splits pagination from filters. page_size is capped at MaxPageSize
// and page above MaxPage is rejected.
func ParseParams(values map[string]string) (Params, error) {
	p := Params{Page: 1, PageSize: DefaultPageSize, Filters: map[string]string{}}
	for k, v := range values {
		switch k {
		case "page":
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return p, apperror.Invalid("page", "page must be a positive integer")
			}
			if n > MaxPage {
				return p, apperror.Invalid("page", fmt.Sprintf("page must be at most %d", MaxPage))
			}
			p.Page = n
		case "page_size":
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return p, apperror.Invalid("page_size", "page_size must be a positive integer")
			}
			if n > MaxPageSize {
				n = MaxPageSize
			}
			p.PageSize = n
		default:
			p.Filters[k] = v
		}
	}
	return p, nil
}

// Apply adds every filter in p to db. Unknown filters and malformed values are
// INVALID_INPUT naming the filter.
func (s Spec) Apply(db *gorm.DB, p Params) (*gorm.DB, error) {
	for key, raw := range p.Filters {
		if fn, ok := s.Custom[key]; ok {
			next, err := fn(db, raw)
			if err != nil {
				return nil, apperror.Invalid(key, err.Error())
			}
			db = next
			continue
		}

		name, lookup := splitKey(key)
		field, ok := s.Fields[name]
		if !ok || !field.allows(lookup) {
			return nil, apperror.Invalid(key, "unknown filter "+key)
		}
		next, err := field.apply(db, lookup, raw)
		if err != nil {
			return nil, apperror.Invalid(key, err.Error())
		}
		db = next
	}
	return db, nil
}

// List runs a filtered, paginated query. Rows implementing Valuate() get their
// derived fields filled before returning.
func List[T any](db *gorm.DB, spec Spec, p Params, preloads ...string) (*Page[T], error) {
	q, err := spec.Apply(db.Model(new(T)), p)
	if err != nil {
		return nil, err
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}

	order := spec.Order
	if order == "" {
		order = "created_at DESC, id ASC"
	}
	find := q.Order(order).Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)
	for _, pl := range preloads {
		find = find.Preload(pl)
	}
	items := make([]T, 0, p.PageSize)
	if err := find.Find(&items).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	for i := range items {
		if v, ok := any(&items[i]).(valuator); ok {
			v.Valuate()
		}
	}
	return &Page[T]{Data: items, Page: p.Page, PageSize: p.PageSize, Total: total}, nil
}

// likeEscaper makes % and _ match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func splitKey(key string) (string, Lookup) {
	if i := strings.Index(key, "__"); i >= 0 {
		return key[:i], Lookup(key[i+2:])
	}
	return key, Exact
}

func (f Field) allows(l Lookup) bool {
	for _, a := range f.Lookups {
		if a == l {
			return true
		}
	}
	return false
}

func (f Field) apply(db *gorm.DB, l Lookup, raw string) (*gorm.DB, error) {
	switch l {
	case IContains:
		col := f.Column
		if f.Kind != String {
			col = "CAST(" + col + " AS TEXT)"
		}
		return db.Where("LOWER("+col+") LIKE LOWER(?) ESCAPE '\\'", "%"+likeEscaper.Replace(raw)+"%"), nil
	case YearGt, YearLt:
		year, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a year", raw)
		}
		if l == YearGt {
			return db.Where(f.Column+" >= ?", time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)), nil
		}
		return db.Where(f.Column+" < ?", time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)), nil
	}

	v, err := f.parse(raw)
	if err != nil {
		return nil, err
	}
	op := map[Lookup]string{Exact: "=", Gte: ">=", Lte: "<=", Gt: ">", Lt: "<"}[l]
	return db.Where(fmt.Sprintf("%s %s ?", f.Column, op), v), nil
}

func (f Field) parse(raw string) (interface{}, error) {
	switch f.Kind {
	case Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case Decimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return d, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	case UUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid id", raw)
		}
		return id, nil
	case Time:
		return ParseTime(raw)
	}
	return raw, nil
}

// ParseTime accepts RFC 3339 timestamps and plain dates.
func ParseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date", raw)
	}
	return t, nil
}
