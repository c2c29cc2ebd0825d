package entity

import "math"

// OutcomeCounts кумулятивные счётчики воронки:
// Total ⊇ Viewed ⊇ Responded ⊇ Interviewed ⊇ Awarded.
// Rejected и NoResponse считаются отдельно.
type OutcomeCounts struct {
	Total       int     `db:"total"`
	Viewed      int     `db:"viewed"`
	Responded   int     `db:"responded"`
	Interviewed int     `db:"interviewed"`
	Awarded     int     `db:"awarded"`
	Rejected    int     `db:"rejected"`
	NoResponse  int     `db:"no_response"`
	AvgLength   float64 `db:"avg_length"`
}

// SuccessRate процент выигранных, 0 при пустой выборке.
func (c OutcomeCounts) SuccessRate() int {
	return Percent(c.Awarded, c.Total)
}

// ResponseRate процент предложений, на которые ответил клиент.
func (c OutcomeCounts) ResponseRate() int {
	return Percent(c.Responded, c.Total)
}

func (c OutcomeCounts) ViewRate() int {
	return Percent(c.Viewed, c.Total)
}

// AnalyticsGroup счётчики в разрезе шаблона, платформы или длины.
type AnalyticsGroup struct {
	Key   string `db:"group_key"`
	Label string `db:"group_label"`
	OutcomeCounts
}

// Percent round(part/total*100) в пределах [0,100].
func Percent(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part >= total {
		return 100
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
