//go:build property
// +build property

package completeness_test

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/goliatone/go-formulare/internal/completeness"
	"github.com/goliatone/go-formulare/internal/forms"
)

func TestClassificationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	keyGen := gen.SliceOf(gen.RegexMatch(`^[A-G]?$`))
	tableGen := gen.SliceOf(gen.RegexMatch(`^[ABCXY]$`))

	properties.Property("key sets never contain the empty string or duplicates", prop.ForAll(
		func(contents []string) bool {
			values := forms.NewKeySet(contents...).Values()
			if slices.Contains(values, "") {
				return false
			}
			return len(slices.Compact(slices.Clone(values))) == len(values)
		},
		keyGen,
	))

	properties.Property("translated and untranslated partition the key set", prop.ForAll(
		func(contents []string, tableKeys []string) bool {
			keys := forms.NewKeySet(contents...)
			record := completeness.Classify(keys, toTable(tableKeys), true)

			union := append(slices.Clone(record.Translated), record.Untranslated...)
			slices.Sort(union)
			if !slices.Equal(union, keys.Values()) {
				return false
			}
			for _, key := range record.Translated {
				if slices.Contains(record.Untranslated, key) {
					return false
				}
			}
			return true
		},
		keyGen, tableGen,
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(contents []string, tableKeys []string) bool {
			keys := forms.NewKeySet(contents...)
			table := toTable(tableKeys)
			first := completeness.Classify(keys, table, true)
			second := completeness.Classify(keys, table, true)
			return first.Bucket == second.Bucket &&
				first.Bucket == completeness.BucketFor(len(first.Translated), keys.Len(), len(first.Extra))
		},
		keyGen, tableGen,
	))

	properties.Property("extra keys always win", prop.ForAll(
		func(translated, total, extra int) bool {
			if translated > total {
				translated = total
			}
			return completeness.BucketFor(translated, total, extra) == completeness.ExtraPresent
		},
		gen.IntRange(0, 50), gen.IntRange(0, 50), gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

func toTable(keys []string) forms.Table {
	table := forms.Table{}
	for _, key := range keys {
		table[key] = key + "*"
	}
	return table
}
