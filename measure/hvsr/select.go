package hvsr

// SelectBest returns the index of the highest-scoring peak, or -1 when
// peaks is empty. Ties go to the earliest peak, which for peaks in axis
// order is the lowest frequency.
func SelectBest(peaks []Peak) int {
	best := -1
	for i, p := range peaks {
		if best < 0 || p.Score > peaks[best].Score {
			best = i
		}
	}

	return best
}
