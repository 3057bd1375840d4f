package report

import "github.com/kardolus/lms-reports/api"

// GroupBy folds records into buckets. keyFn returns false for records that
// belong to no bucket; aggregate receives the bucket's current value, the
// zero value on first use.
func GroupBy[K comparable, V any](records api.ResultSet, keyFn func(api.Record) (K, bool, error), aggregate func(V, api.Record) V) (map[K]V, error) {
	result := make(map[K]V)
	for _, record := range records {
		key, ok, err := keyFn(record)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result[key] = aggregate(result[key], record)
	}
	return result, nil
}

// Count is an aggregate for GroupBy that counts records per bucket.
func Count(n int, _ api.Record) int {
	return n + 1
}
