package pipeline

// MergeTurns coalesces adjacent turns from the same speaker into one
// stable conversation turn. Non-adjacent same-speaker turns separated
// by a different speaker are genuine back-and-forth and stay apart.
// Input order is authoritative and preserved; the fold is idempotent.
func MergeTurns(turns []Turn) []Turn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]Turn, 0, len(turns))
	cur := turns[0]
	confSum := cur.Confidence
	confN := 1
	for _, t := range turns[1:] {
		if t.Speaker == cur.Speaker {
			if t.Text != "" {
				if cur.Text != "" {
					cur.Text += " "
				}
				cur.Text += t.Text
			}
			cur.EndTime = t.EndTime
			confSum += t.Confidence
			confN++
			continue
		}
		cur.Confidence = confSum / float64(confN)
		out = append(out, cur)
		cur = t
		confSum = t.Confidence
		confN = 1
	}
	cur.Confidence = confSum / float64(confN)
	out = append(out, cur)
	return out
}
