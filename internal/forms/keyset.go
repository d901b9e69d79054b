package forms

import (
	"slices"

	"github.com/samber/lo"
)

// KeySet is an immutable, sorted set of non-empty source strings.
type KeySet struct {
	values []string
}

// NewKeySet builds a key set, dropping empty strings and duplicates.
func NewKeySet(values ...string) KeySet {
	kept := lo.Uniq(lo.Filter(values, func(value string, _ int) bool {
		return value != ""
	}))
	slices.Sort(kept)
	return KeySet{values: kept}
}

// Len returns the number of keys.
func (k KeySet) Len() int {
	return len(k.values)
}

// Has reports whether key is in the set.
func (k KeySet) Has(key string) bool {
	_, found := slices.BinarySearch(k.values, key)
	return found
}

// Values returns a sorted copy of the keys.
func (k KeySet) Values() []string {
	return slices.Clone(k.values)
}
