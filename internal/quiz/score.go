package quiz

// Percent returns round-half-up(100 * correct / total) using integer math,
// so 12.5 becomes 13 and 62.5 becomes 63. total <= 0 yields 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}
	return (200*correct + total) / (2 * total)
}
