package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const hourKeyPrefix = "hour"

// Table таблица почасовых тарифов: "hour1" -> цена первого часа, "hour2" -> второго и т.д.
// Цены в основных единицах валюты. Значения приходят из JSON слушателя как есть,
// поэтому допускаются числа и числовые строки.
type Table map[string]interface{}

// HourKey возвращает ключ таблицы для часа i (нумерация с 1)
func HourKey(i int) string {
	return hourKeyPrefix + strconv.Itoa(i)
}

// Rate возвращает валидный тариф для часа i
func (t Table) Rate(hour int) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t[HourKey(hour)]
	if !ok {
		return 0, false
	}
	return parseRate(v)
}

// IsUsable проверяет, что таблица пригодна для пропорционального расчета (есть валидный hour1)
func (t Table) IsUsable() bool {
	_, ok := t.Rate(1)
	return ok
}

// ValidateTable проверяет таблицу тарифов.
// Возвращает ErrInvalidPricingData со списком проблемных ключей.
func ValidateTable(t Table) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: table is empty", ErrInvalidPricingData)
	}

	problems := make([]string, 0)
	if _, ok := t.Rate(1); !ok {
		problems = append(problems, "hour1 is missing or invalid")
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !strings.HasPrefix(k, hourKeyPrefix) {
			problems = append(problems, fmt.Sprintf("%s is not an hour key", k))
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(k, hourKeyPrefix)); err != nil || n < 1 {
			problems = append(problems, fmt.Sprintf("%s is not an hour key", k))
			continue
		}
		if k == HourKey(1) {
			continue
		}
		if _, ok := parseRate(t[k]); !ok {
			problems = append(problems, fmt.Sprintf("%s has invalid rate %v", k, t[k]))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPricingData, strings.Join(problems, "; "))
	}
	return nil
}

func parseRate(v interface{}) (float64, bool) {
	var rate float64
	switch val := v.(type) {
	case float64:
		rate = val
	case float32:
		rate = float64(val)
	case int:
		rate = float64(val)
	case int64:
		rate = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		rate = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		rate = f
	default:
		return 0, false
	}

	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0, false
	}
	return rate, true
}
