package approvals

// Score computes the wallet trust score for a scan result: 100 minus
// penalty per high-risk item, floored. A wallet with zero high-risk
// approvals always scores exactly 100, regardless of floor.
func Score(items []Item, penalty, floor int) int {
	high := HighRiskCount(items)
	if high == 0 {
		return 100
	}
	score := 100 - high*penalty
	if score < floor {
		return floor
	}
	return score
}
