package valuation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Tag classifies an inventory item.
type Tag string

const (
	TagMaterial    Tag = "MAT"
	TagRawMaterial Tag = "RAW"
	TagCustomOrder Tag = "CUS"
)

// Status is the derived stock status of an inventory item.
type Status string

const (
	StatusAvailable  Status = "Available"
	StatusLowStock   Status = "Low stock"
	StatusOutOfStock Status = "Out of stock"
)

// Tags lists every known tag in display order.
var Tags = []Tag{TagMaterial, TagRawMaterial, TagCustomOrder}

func (t Tag) Valid() bool {
	_, ok := thresholds[t]
	return ok
}

func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusAvailable, StatusLowStock, StatusOutOfStock} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Threshold holds the upper stock bounds of the out-of-stock and low-stock bands.
// A nil Low means the tag has no low-stock band.
type Threshold struct {
	Out int
	Low *int
}

func intPtr(v int) *int { return &v }

var thresholds = map[Tag]Threshold{
	TagMaterial:    {Out: 0, Low: intPtr(10)},
	TagRawMaterial: {Out: 0, Low: intPtr(40)},
	TagCustomOrder: {Out: 0},
}

// ThresholdOf returns the bands configured for a tag.
func ThresholdOf(tag Tag) (Threshold, bool) {
	th, ok := thresholds[tag]
	return th, ok
}

// StatusOf derives the status of stock for a tag. The out-of-stock band is checked
// first, then the low-stock band if the tag has one.
func StatusOf(tag Tag, stock int) Status {
	th, ok := thresholds[tag]
	if !ok {
		th = Threshold{Out: 0}
	}
	if stock <= th.Out {
		return StatusOutOfStock
	}
	if th.Low != nil && stock <= *th.Low {
		return StatusLowStock
	}
	return StatusAvailable
}

// StatusCondition builds a SQL predicate over the given tag and stock columns that
// selects exactly the rows StatusOf would label with status.
func StatusCondition(status Status, tagCol, stockCol string) (string, []interface{}) {
	var (
		parts []string
		args  []interface{}
	)
	for _, tag := range sortedTags() {
		th := thresholds[tag]
		switch status {
		case StatusOutOfStock:
			parts = append(parts, fmt.Sprintf("(%s = ? AND %s <= ?)", tagCol, stockCol))
			args = append(args, string(tag), th.Out)
		case StatusLowStock:
			if th.Low == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("(%s = ? AND %s > ? AND %s <= ?)", tagCol, stockCol, stockCol))
			args = append(args, string(tag), th.Out, *th.Low)
		case StatusAvailable:
			upper := th.Out
			if th.Low != nil {
				upper = *th.Low
			}
			parts = append(parts, fmt.Sprintf("(%s = ? AND %s > ?)", tagCol, stockCol))
			args = append(args, string(tag), upper)
		}
	}
	if len(parts) == 0 {
		return "1 = 0", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func sortedTags() []Tag {
	tags := make([]Tag, 0, len(thresholds))
	for t := range thresholds {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// LinePrice is quantity times the unit price plus the price of every selected option.
func LinePrice(quantity int, unit decimal.Decimal, options ...decimal.Decimal) decimal.Decimal {
	total := unit.Mul(decimal.NewFromInt(int64(quantity)))
	for _, o := range options {
		total = total.Add(o)
	}
	return total
}

// Total sums line prices and adds a container-level surcharge.
func Total(lines []decimal.Decimal, surcharge decimal.Decimal) decimal.Decimal {
	total := surcharge
	for _, l := range lines {
		total = total.Add(l)
	}
	return total
}
