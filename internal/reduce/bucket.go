package reduce

// Bucket aggregates damage, hit, and crit counts for one skill or target.
type Bucket struct {
	Damage int64 `json:"damage"`
	Hits   int64 `json:"hits"`
	Crits  int64 `json:"crits"`
}

func (b *Bucket) credit(value int64, crit bool) {
	b.Damage += value
	b.Hits++
	if crit {
		b.Crits++
	}
}
