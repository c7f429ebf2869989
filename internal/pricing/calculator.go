package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Mode режим расчета, определяется конфигурацией один раз на запрос
type Mode string

const (
	ModeProportional Mode = "proportional"
	ModeLegacy       Mode = "legacy"
)

// ParseMode разбирает режим из конфигурации
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeProportional, "":
		return ModeProportional, nil
	case ModeLegacy:
		return ModeLegacy, nil
	default:
		return "", fmt.Errorf("pricing: unknown mode %q", s)
	}
}

// Методы расчета, записываются в результат и в снимок бронирования
const (
	MethodLegacy       = "legacy"
	MethodProportional = "proportional"
)

const (
	DefaultMinBillable = time.Hour
	DefaultHourlyRate  = 10.0
)

// Config параметры калькулятора
type Config struct {
	MinBillable       time.Duration // минимальная оплачиваемая длительность
	DefaultHourlyRate float64       // тариф, если в таблице нет валидного hour1
}

// Calculator калькулятор стоимости парковки. Чистый, без побочных эффектов.
type Calculator struct {
	minBillable time.Duration
	defaultRate float64
}

// NewCalculator создает калькулятор; нулевые значения конфигурации заменяются значениями по умолчанию
func NewCalculator(cfg Config) *Calculator {
	if cfg.MinBillable <= 0 {
		cfg.MinBillable = DefaultMinBillable
	}
	if cfg.DefaultHourlyRate <= 0 || math.IsNaN(cfg.DefaultHourlyRate) || math.IsInf(cfg.DefaultHourlyRate, 0) {
		cfg.DefaultHourlyRate = DefaultHourlyRate
	}
	return &Calculator{
		minBillable: cfg.MinBillable,
		defaultRate: cfg.DefaultHourlyRate,
	}
}

// Calculate рассчитывает стоимость парковки длительностью duration.
//
// Длительность короче минимальной (в том числе нулевая и отрицательная) считается
// как ровно минимальная. В режиме legacy или без валидной таблицы часы округляются вверх
// и умножаются на legacyRate. Иначе целые часы берутся по тарифам hour{i},
// а остаток часа по тарифу hour{целые+1} пропорционально доле. Каждая строка
// округляется до цента до суммирования.
func (c *Calculator) Calculate(duration time.Duration, table Table, legacyRate float64, mode Mode) *Result {
	exactHours := duration.Hours()
	if exactHours < c.minBillable.Hours() {
		return c.Calculate(c.minBillable, table, legacyRate, mode)
	}

	wholeHours := int(math.Floor(exactHours))
	fractional := exactHours - float64(wholeHours)

	if mode == ModeLegacy || !table.IsUsable() {
		return c.legacy(exactHours, wholeHours, fractional, legacyRate)
	}

	breakdown := make([]BreakdownLine, 0, wholeHours+1)
	for hour := 1; hour <= wholeHours; hour++ {
		cents := toCents(c.rateFor(table, hour))
		breakdown = append(breakdown, BreakdownLine{
			Hour:  hour,
			Cents: cents,
			Price: FormatCents(cents),
		})
	}

	if fractional > 0 {
		hour := wholeHours + 1
		cents := toCents(c.rateFor(table, hour) * fractional)
		breakdown = append(breakdown, BreakdownLine{
			Hour:         hour,
			Cents:        cents,
			Price:        FormatCents(cents),
			IsFractional: true,
			Fraction:     fractional,
		})
	}

	return newResult(MethodProportional, exactHours, wholeHours, fractional, exactHours, breakdown)
}

// legacy почасовой расчет с округлением часов вверх
func (c *Calculator) legacy(exactHours float64, wholeHours int, fractional float64, rate float64) *Result {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = c.defaultRate
	}

	billedHours := int(math.Ceil(exactHours))
	perHour := toCents(rate)

	breakdown := make([]BreakdownLine, 0, billedHours)
	for hour := 1; hour <= billedHours; hour++ {
		breakdown = append(breakdown, BreakdownLine{
			Hour:  hour,
			Cents: perHour,
			Price: FormatCents(perHour),
		})
	}

	return newResult(MethodLegacy, exactHours, wholeHours, fractional, float64(billedHours), breakdown)
}

// rateFor тариф часа: hour{i} -> hour1 -> тариф по умолчанию
func (c *Calculator) rateFor(table Table, hour int) float64 {
	if rate, ok := table.Rate(hour); ok {
		return rate
	}
	if rate, ok := table.Rate(1); ok {
		return rate
	}
	return c.defaultRate
}

func newResult(method string, exact float64, whole int, fractional, billed float64, breakdown []BreakdownLine) *Result {
	var total int64
	for _, line := range breakdown {
		total += line.Cents
	}

	return &Result{
		TotalCents:      total,
		Total:           FormatCents(total),
		ExactHours:      exact,
		WholeHours:      whole,
		FractionalHours: fractional,
		BilledHours:     billed,
		Breakdown:       breakdown,
		Method:          method,
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FormatCents форматирует сумму в центах как "21.00"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
