package storage

import "strings"

// Matches reports whether f satisfies every filter in opts. Both
// backends search by listing and filtering in memory, so the predicate
// lives here rather than in each variant.
func (opts SearchOptions) Matches(f File) bool {
	if opts.Query != "" {
		q := strings.ToLower(opts.Query)
		if !strings.Contains(strings.ToLower(f.UID), q) &&
			!strings.Contains(strings.ToLower(f.Name), q) {
			return false
		}
	}
	if opts.FileType != "" {
		if !strings.HasSuffix(strings.ToLower(f.Name), strings.ToLower(opts.FileType)) {
			return false
		}
	}
	if opts.Owner != "" && f.Metadata[MetaOwner] != opts.Owner {
		return false
	}
	if opts.CreatedAfter != nil && f.CreatedAt < opts.CreatedAfter.Unix() {
		return false
	}
	if opts.CreatedBefore != nil && f.CreatedAt > opts.CreatedBefore.Unix() {
		return false
	}
	return true
}
