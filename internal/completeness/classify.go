package completeness

import (
	"slices"

	"github.com/goliatone/go-formulare/internal/forms"
)

// Bucket is the severity of a translation's coverage gap.
type Bucket int

const (
	OK Bucket = iota
	NearComplete
	Incomplete
	NearMissing
	Missing
	ExtraPresent
)

func (b Bucket) String() string {
	switch b {
	case OK:
		return "OK"
	case NearComplete:
		return "NEAR_COMPLETE"
	case Incomplete:
		return "INCOMPLETE"
	case NearMissing:
		return "NEAR_MISSING"
	case Missing:
		return "MISSING"
	case ExtraPresent:
		return "EXTRA_PRESENT"
	default:
		return "UNKNOWN"
	}
}

// Record is the completeness of one table against one key set.
type Record struct {
	Translated   []string
	Untranslated []string
	Extra        []string
	// HasTable is false when no table exists for the pair.
	HasTable bool
	// External marks languages translated outside this project.
	External bool
	Bucket   Bucket
}

// Total is the size of the key set the record was computed against.
func (r Record) Total() int {
	return len(r.Translated) + len(r.Untranslated)
}

// Classify compares table against keys. A nil table with ok false means no
// table exists: every key is untranslated.
func Classify(keys forms.KeySet, table forms.Table, ok bool) Record {
	record := Record{HasTable: ok}
	for _, key := range keys.Values() {
		if _, found := table[key]; ok && found {
			record.Translated = append(record.Translated, key)
		} else {
			record.Untranslated = append(record.Untranslated, key)
		}
	}
	if ok {
		for key := range table {
			if !keys.Has(key) {
				record.Extra = append(record.Extra, key)
			}
		}
		slices.Sort(record.Extra)
	}
	record.Bucket = BucketFor(len(record.Translated), keys.Len(), len(record.Extra))
	return record
}

// BucketFor assigns the severity bucket. Rules are evaluated in order and the
// first match wins; stale extra keys outrank any coverage ratio. An empty key
// set has nothing to translate and is OK.
func BucketFor(translated, total, extra int) Bucket {
	switch {
	case extra > 0:
		return ExtraPresent
	case total == 0:
		return OK
	case translated == 0:
		return Missing
	case 5*translated < total:
		return NearMissing
	case 5*translated < 4*total:
		return Incomplete
	case translated < total:
		return NearComplete
	default:
		return OK
	}
}
