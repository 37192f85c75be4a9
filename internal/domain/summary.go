package domain

// SummaryLine is a cart entry together with its line subtotal.
type SummaryLine struct {
	CartEntry
	Subtotal float64 `json:"subtotal"`
}

// Summary is a read-only view derived from a cart snapshot.
type Summary struct {
	Lines     []SummaryLine `json:"lines"`
	ItemCount int           `json:"item_count"`
	Total     float64       `json:"total"`
}

func (c Cart) Summary() Summary {
	s := Summary{Lines: make([]SummaryLine, 0, len(c))}
	for _, entry := range c {
		subtotal := entry.Price * float64(entry.Amount)
		s.Lines = append(s.Lines, SummaryLine{CartEntry: entry, Subtotal: subtotal})
		s.ItemCount += entry.Amount
		s.Total += subtotal
	}
	return s
}
