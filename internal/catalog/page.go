package catalog

// DefaultPageSize is the number of cards shown per page.
const DefaultPageSize = 4

// TotalPages returns ceil(total/size), or 0 for an empty sequence.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage bounds n to [1, max(1, TotalPages(total, size))].
func ClampPage(n, total, size int) int {
	last := TotalPages(total, size)
	if last < 1 {
		last = 1
	}
	if n < 1 {
		return 1
	}
	if n > last {
		return last
	}
	return n
}

// Page returns records[(n-1)*size : n*size] with both bounds clamped to the slice.
// Pages are 1-indexed; out-of-range pages yield an empty slice.
func Page(records []PostRecord, n, size int) []PostRecord {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n < 1 {
		return []PostRecord{}
	}
	start := (n - 1) * size
	if start >= len(records) {
		return []PostRecord{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return copyRecords(records[start:end])
}
