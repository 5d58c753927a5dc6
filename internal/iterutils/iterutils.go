// Iterator helpers
package iterutils

import "iter"

// Collects the values of a Seq2 into a slice, stopping at the first error.
//
// Values yielded before the error are returned along with it.
func Collect[V any](seq iter.Seq2[V, error]) ([]V, error) {
	values := []V{}
	for v, err := range seq {
		if err != nil {
			return values, err
		}

		values = append(values, v)
	}

	return values, nil
}
