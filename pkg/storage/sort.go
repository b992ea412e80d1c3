package storage

import (
	"fmt"
	"sort"
	"strings"
)

// SortBy selects the primary sort key for List and Search.
type SortBy string

const (
	SortByCreatedAt SortBy = "created_at"
	SortBySize      SortBy = "size"
	SortByName      SortBy = "name"
)

// SortOrder selects the direction of the primary sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortBy validates a sort key, defaulting empty to created_at.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.ToLower(s)) {
	case "":
		return SortByCreatedAt, nil
	case SortByCreatedAt:
		return SortByCreatedAt, nil
	case SortBySize:
		return SortBySize, nil
	case SortByName:
		return SortByName, nil
	}
	return "", fmt.Errorf("invalid sort_by %q (want created_at, size, or name)", s)
}

// ParseSortOrder validates a sort direction, defaulting empty to desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case "":
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort_order %q (want asc or desc)", s)
}

// SortFiles orders files in place by the given key and direction.
//
// Ties on the primary key break by uid ascending regardless of the
// direction, which keeps pagination stable: descending order reverses
// the primary key only.
func SortFiles(files []File, by SortBy, order SortOrder) {
	desc := order == SortDesc

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]

		var less, equal bool
		switch by {
		case SortBySize:
			less, equal = a.Size < b.Size, a.Size == b.Size
		case SortByName:
			less, equal = a.Name < b.Name, a.Name == b.Name
		default:
			less, equal = a.CreatedAt < b.CreatedAt, a.CreatedAt == b.CreatedAt
		}

		if equal {
			return a.UID < b.UID
		}
		if desc {
			return !less
		}
		return less
	})
}

// Window slices files to the offset..offset+limit page. Limit <= 0 means
// everything from offset onward.
func Window(files []File, offset, limit int) []File {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(files) {
		return []File{}
	}
	files = files[offset:]
	if limit > 0 && limit < len(files) {
		files = files[:limit]
	}
	return files
}
