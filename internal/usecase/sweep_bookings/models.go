package sweep_bookings

import "time"

// Config параметры прохода
type Config struct {
	BatchSize int // сколько бронирований обрабатывается за один проход
	Workers   int // сколько бронирований обрабатывается параллельно
}

// Result итог прохода
type Result struct {
	Now       time.Time
	Scanned   int
	Activated int
	Completed int
	Failed    int
	Deferred  int // пропущены до истечения паузы после ошибки
}

// Changed количество примененных переходов
func (r *Result) Changed() int {
	return r.Activated + r.Completed
}
