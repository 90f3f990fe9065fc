package st8

import "sort"

// InterceptorEntry holds an interceptor with its priority for auto-ordering.
type InterceptorEntry[S any] struct {
	Make     Interceptor[S]
	Name     string
	Priority int
}

// Priority constants define the order of config-built stock middleware.
// Lower priority = outermost middleware (executed first).
const (
	priorityThunk    = 0 // outermost: functions never reach later middleware
	priorityThrottle = 1
	priorityDedupe   = 2
	priorityJournal  = 3 // innermost: records only what reaches the reducer
)

// SortInterceptors sorts entries by priority (lowest first = outermost).
// Stable sort to preserve order of entries with same priority.
func SortInterceptors[S any](entries []InterceptorEntry[S]) []Interceptor[S] {
	if len(entries) == 0 {
		return nil
	}

	// Copy to avoid mutating the caller's slice.
	sorted := make([]InterceptorEntry[S], 0, len(entries))
	sorted = append(sorted, entries...)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	out := make([]Interceptor[S], 0, len(sorted))
	for _, e := range sorted {
		out = append(out, e.Make)
	}

	return out
}
