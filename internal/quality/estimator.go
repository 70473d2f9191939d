package quality

import "randomkiwi/internal/domain"

// EstimateFetchSize returns how many raw candidates to request so that roughly
// target of them survive filtering. Zero means no fetch should be attempted.
func EstimateFetchSize(target int, level domain.DetailLevel) int {
	if target <= 0 {
		return 0
	}
	switch level {
	case domain.DetailAny:
		return target * 2
	case domain.DetailMedium:
		return target * 10
	case domain.DetailDetailed:
		return target * 30
	default:
		return 0
	}
}
