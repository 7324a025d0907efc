package catalog

// DefaultCategoryOrder is the preferred display order of known categories.
var DefaultCategoryOrder = []string{"수업", "인사이트", "공부", "자동화", "블로그 만들기"}

// Group holds the records of one category in catalog order.
type Group struct {
	Name  string
	Posts []PostRecord
}

// GroupByCategory partitions records by category. Groups named in order come first
// (only when non-empty); remaining categories follow in first-seen order.
func GroupByCategory(records []PostRecord, order []string, uncategorized string) []Group {
	byName := make(map[string][]PostRecord)
	var seen []string
	for _, r := range records {
		name := r.CategoryOr(uncategorized)
		if _, ok := byName[name]; !ok {
			seen = append(seen, name)
		}
		byName[name] = append(byName[name], cloneRecord(r))
	}

	groups := make([]Group, 0, len(seen))
	placed := make(map[string]struct{}, len(seen))
	for _, name := range order {
		posts, ok := byName[name]
		if !ok {
			continue
		}
		if _, dup := placed[name]; dup {
			continue
		}
		placed[name] = struct{}{}
		groups = append(groups, Group{Name: name, Posts: posts})
	}
	for _, name := range seen {
		if _, ok := placed[name]; ok {
			continue
		}
		placed[name] = struct{}{}
		groups = append(groups, Group{Name: name, Posts: byName[name]})
	}
	return groups
}
