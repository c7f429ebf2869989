package pricing

// BreakdownLine строка детализации: один час (или его часть)
type BreakdownLine struct {
	Hour         int     // номер часа, с 1
	Cents        int64   // стоимость строки в центах
	Price        string  // стоимость строки в основных единицах, "15.00"
	IsFractional bool    // неполный час
	Fraction     float64 // доля часа, только для неполного часа
}

// Result результат расчета стоимости
type Result struct {
	TotalCents      int64
	Total           string // "21.00"
	ExactHours      float64
	WholeHours      int
	FractionalHours float64
	BilledHours     float64 // оплаченные часы: точные для proportional, округленные вверх для legacy
	Breakdown       []BreakdownLine
	Method          string
}
