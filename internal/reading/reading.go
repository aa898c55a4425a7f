// Package reading builds Japanese phonetic readings for counted quantities.
package reading

import (
	"strconv"
	"strings"

	"github.com/verte-zerg/kazoe/internal/model"
)

// Placeholder is replaced by the number reading in irregular default templates.
const Placeholder = "{n}"

const ten = "じゅう"

var digits = map[int]string{
	0:  "ぜろ",
	1:  "いち",
	2:  "に",
	3:  "さん",
	4:  "よん",
	5:  "ご",
	6:  "ろく",
	7:  "なな",
	8:  "はち",
	9:  "きゅう",
	10: ten,
}

// Reading returns the reading of a non-negative quantity. Values that cannot
// be composed from the table are returned as decimal digits.
func Reading(q int) string {
	if r, ok := digits[q]; ok {
		return r
	}
	if q < 0 {
		return strconv.Itoa(q)
	}
	tens, ones := q/10, q%10
	var b strings.Builder
	switch {
	case tens == 1:
		b.WriteString(ten)
	case tens >= 2 && tens <= 9:
		b.WriteString(digits[tens])
		b.WriteString(ten)
	default:
		return strconv.Itoa(q)
	}
	if ones > 0 {
		b.WriteString(digits[ones])
	}
	return b.String()
}

// CounterReading returns the reading of q followed by the counter. An exact
// irregular entry wins over the default template, which wins over the
// regular composition.
func CounterReading(c model.Counter, q int) string {
	if r, ok := c.Irregular.Exact[q]; ok {
		return r
	}
	if c.Irregular.HasDefault() {
		return strings.ReplaceAll(c.Irregular.Default, Placeholder, Reading(q))
	}
	return Reading(q) + c.Reading
}

// Furigana returns the written form ("3個") and its reading ("さんこ").
func Furigana(c model.Counter, q int) (written, spoken string) {
	return strconv.Itoa(q) + c.Key, CounterReading(c, q)
}
