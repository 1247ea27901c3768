package analytics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Inventory fields a column can map to.
const (
	FieldItemName        = "item_name"
	FieldItemType        = "item_type"
	FieldCurrentStock    = "current_stock"
	FieldMinRequired     = "min_required"
	FieldMaxCapacity     = "max_capacity"
	FieldUnitCost        = "unit_cost"
	FieldAvgUsagePerDay  = "avg_usage_per_day"
	FieldRestockLeadTime = "restock_lead_time"
	FieldVendorName      = "vendor_name"
)

var requiredFields = []string{FieldItemName, FieldItemType, FieldCurrentStock}

// headerAliases lists the normalized header spellings recognized per field.
var headerAliases = map[string][]string{
	FieldItemName:        {"item name", "item", "name", "product", "product name", "description"},
	FieldItemType:        {"item type", "type", "category", "class"},
	FieldCurrentStock:    {"current stock", "stock", "quantity", "qty", "on hand", "in stock"},
	FieldMinRequired:     {"min required", "minimum", "min stock", "min", "par level", "reorder level"},
	FieldMaxCapacity:     {"max capacity", "maximum", "max stock", "max", "capacity"},
	FieldUnitCost:        {"unit cost", "cost", "price", "unit price"},
	FieldAvgUsagePerDay:  {"avg usage per day", "daily usage", "usage per day", "avg usage", "usage", "consumption"},
	FieldRestockLeadTime: {"restock lead time", "lead time", "lead days", "lead time days", "restock days"},
	FieldVendorName:      {"vendor name", "vendor", "supplier", "supplier name", "manufacturer"},
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// ParsedRow is a validated CSV row. Row is 1-based and counts the header line.
type ParsedRow struct {
	Row    int
	Fields domain.ItemFields
}

// ParseResult is the outcome of reading one uploaded sheet.
type ParseResult struct {
	Rows    []ParsedRow
	Errors  []domain.ImportRowError
	Mapping map[string]string
}

// ErrMissingColumns is returned when required columns cannot be matched.
var ErrMissingColumns = errors.New("required columns not found")

// ParseInventoryCSV reads an inventory sheet, matching headers heuristically.
// Rows that fail validation are reported and skipped; a bad header aborts.
func ParseInventoryCSV(r io.Reader) (*ParseResult, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidItem)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, mapping := MatchHeaders(header)
	var missing []string
	for _, f := range requiredFields {
		if _, ok := columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	result := &ParseResult{Mapping: mapping}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read row: %w", err)
			}
			result.Errors = append(result.Errors, domain.ImportRowError{Row: perr.StartLine, Error: perr.Err.Error()})
			continue
		}
		// blank lines are skipped by the reader, so take the physical line
		line, _ := reader.FieldPos(0)
		if blankRecord(rec) {
			continue
		}

		fields, err := rowToFields(rec, columns)
		if err != nil {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: line, Error: err.Error()})
			continue
		}
		result.Rows = append(result.Rows, ParsedRow{Row: line, Fields: fields})
	}

	return result, nil
}

// MatchHeaders maps each inventory field to a column index. The second return
// value reports the chosen header for every matched field.
func MatchHeaders(header []string) (map[string]int, map[string]string) {
	type candidate struct {
		field  string
		column int
		score  int
	}

	var candidates []candidate
	for col, h := range header {
		norm := normalizeHeader(h)
		if norm == "" {
			continue
		}
		for field, aliases := range headerAliases {
			if s := scoreHeader(norm, field, aliases); s > 0 {
				candidates = append(candidates, candidate{field: field, column: col, score: s})
			}
		}
	}

	// best score first, leftmost column on ties
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].column != candidates[j].column {
			return candidates[i].column < candidates[j].column
		}
		return candidates[i].field < candidates[j].field
	})

	columns := make(map[string]int)
	usedColumns := make(map[int]bool)
	mapping := make(map[string]string)
	for _, c := range candidates {
		if _, taken := columns[c.field]; taken || usedColumns[c.column] {
			continue
		}
		columns[c.field] = c.column
		usedColumns[c.column] = true
		mapping[c.field] = strings.TrimSpace(header[c.column])
	}
	return columns, mapping
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(h), " "))
}

// scoreHeader rates how well a normalized header names a field: exact alias
// matches beat whole-word containment, which beats partial overlap.
func scoreHeader(norm, field string, aliases []string) int {
	if norm == strings.ReplaceAll(field, "_", " ") {
		return 1000
	}
	best := 0
	padded := " " + norm + " "
	for _, alias := range aliases {
		switch {
		case norm == alias:
			return 900
		case strings.Contains(padded, " "+alias+" "):
			if s := 100 + len(alias); s > best {
				best = s
			}
		case len(norm) >= 4 && strings.Contains(alias, norm):
			if s := len(norm); s > best {
				best = s
			}
		}
	}
	return best
}

func rowToFields(rec []string, columns map[string]int) (domain.ItemFields, error) {
	get := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	f := domain.ItemFields{
		ItemName: get(FieldItemName),
		ItemType: get(FieldItemType),
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{FieldCurrentStock, &f.CurrentStock},
		{FieldMinRequired, &f.MinRequired},
		{FieldMaxCapacity, &f.MaxCapacity},
		{FieldAvgUsagePerDay, &f.AvgUsagePerDay},
		{FieldRestockLeadTime, &f.RestockLeadTime},
	}
	for _, n := range ints {
		v, err := parseCount(get(n.field))
		if err != nil {
			return f, fmt.Errorf("%s: %w", n.field, err)
		}
		*n.dst = v
	}

	cost, err := parseMoney(get(FieldUnitCost))
	if err != nil {
		return f, fmt.Errorf("%s: %w", FieldUnitCost, err)
	}
	f.UnitCost = cost

	if v := get(FieldVendorName); v != "" {
		f.VendorName = &v
	}

	if err := f.Normalize(); err != nil {
		return f, err
	}
	return f, nil
}

// maxCount is the largest value an integer column of the store accepts.
var maxCount = decimal.NewFromInt(math.MaxInt32)

func parseCount(raw string) (int, error) {
	clean := strings.ReplaceAll(raw, ",", "")
	if clean == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	if d.Abs().GreaterThan(maxCount) {
		return 0, fmt.Errorf("%q is out of range", raw)
	}
	return int(d.IntPart()), nil
}

func parseMoney(raw string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '₹', ',', ' ':
			return -1
		}
		return r
	}, raw)
	if clean == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not an amount", raw)
	}
	return d, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
