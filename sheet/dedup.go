package sheet

// URLSet is the cross-product uniqueness filter for one export call. A URL
// reused by two products appears only in whichever product is emitted first.
type URLSet struct {
	enabled bool
	seen    map[string]struct{}
}

// NewURLSet returns a filter; when enabled is false Filter passes everything
// through untouched (aside from a defensive copy).
func NewURLSet(enabled bool) *URLSet {
	return &URLSet{enabled: enabled, seen: make(map[string]struct{})}
}

// Enabled reports whether deduplication is active for this export.
func (s *URLSet) Enabled() bool { return s.enabled }

// Filter removes empty strings and already-seen URLs from urls, registering
// survivors. When categories accompanies the URL list (same length), entries
// are dropped at the exact same indices to preserve pairing; otherwise the
// categories slice is returned as-is.
func (s *URLSet) Filter(urls, categories []string) ([]string, []string) {
	if !s.enabled {
		return cloneStrings(urls), categories
	}

	paired := len(categories) == len(urls)
	outURLs := make([]string, 0, len(urls))
	var outCats []string
	if paired {
		outCats = make([]string, 0, len(categories))
	} else {
		outCats = categories
	}

	for i, url := range urls {
		if url == "" {
			continue
		}
		if _, dup := s.seen[url]; dup {
			continue
		}
		s.seen[url] = struct{}{}
		outURLs = append(outURLs, url)
		if paired {
			outCats = append(outCats, categories[i])
		}
	}
	return outURLs, outCats
}
