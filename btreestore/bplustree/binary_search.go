package bplustree

// binarySearch returns the index of target in keys, or -1 if absent.
func binarySearch(keys [][]byte, target []byte, cmp func(a, b []byte) int) int {
	lo, hi := 0, len(keys)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		c := cmp(keys[mid], target)
		switch {
		case c == 0:
			return mid
		case c < 0:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// lowerBound returns the first index i such that keys[i] >= target.
func lowerBound(keys [][]byte, target []byte, cmp func(a, b []byte) int) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(keys[mid], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func insert[T any](slice []T, i int, elem T) []T {
	slice = append(slice, elem)
	copy(slice[i+1:], slice[i:])
	slice[i] = elem
	return slice
}

func remove[T any](slice []T, i int) []T {
	return append(slice[:i], slice[i+1:]...)
}
