package service

import "wikiadmin/internal/repository"

// normalizePage applies the list defaults: page starts at 1 and pageSize is
// clamped to 1..MaxPageSize, defaulting to DefaultPageSize.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = repository.DefaultPageSize
	case pageSize > repository.MaxPageSize:
		pageSize = repository.MaxPageSize
	}
	return page, pageSize
}
