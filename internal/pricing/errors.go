package pricing

import "errors"

var (
	// ErrInvalidPricingData возвращается, когда таблица тарифов не проходит валидацию.
	// Ошибка носит рекомендательный характер: расчет цены всегда имеет цепочку fallback.
	ErrInvalidPricingData = errors.New("pricing: invalid pricing data")
)
