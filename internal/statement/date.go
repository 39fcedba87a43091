// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package statement

import (
	"fmt"
	"time"

	"github.com/pdiddy/csl-quickstatements/internal/csl"
	"github.com/pdiddy/csl-quickstatements/pkg/types"
)

// Wikibase time precisions.
const (
	PrecisionYear  = 9
	PrecisionMonth = 10
	PrecisionDay   = 11
)

// EncodeDate converts a CSL date into a QuickStatements time literal with
// its precision tag: "+2019-01-01T00:00:00Z/9" for a year,
// "+2019-09-01T00:00:00Z/10" for a month, "+2019-09-24T00:00:00Z/11" for a
// day. A date that does not normalize to one of those forms is passed
// through as "+" followed by its source text, without a precision.
func EncodeDate(d *types.Date) string {
	iso := csl.FormatDate(d)
	switch len(iso) {
	case 4:
		return timeLiteral(iso+"-01-01", PrecisionYear)
	case 7:
		return timeLiteral(iso+"-01", PrecisionMonth)
	case 10:
		return timeLiteral(iso, PrecisionDay)
	default:
		return "+" + d.String()
	}
}

// encodeDay renders t at day precision.
func encodeDay(t time.Time) string {
	return timeLiteral(t.UTC().Format("2006-01-02"), PrecisionDay)
}

func timeLiteral(day string, precision int) string {
	return fmt.Sprintf("+%sT00:00:00Z/%d", day, precision)
}
