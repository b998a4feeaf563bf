package services

import (
	"fmt"

	"bookings-system/internal/apperror"
	"bookings-system/internal/models"
)

// PricingLine — строка корзины вместе с записью каталога, под которую она
// была выбрана. Записи передаются снаружи одним снапшотом: движок сам не
// ходит ни в базу, ни в кеш.
type PricingLine struct {
	Entry *models.ServiceCatalogEntry
	Line  models.CartLine
}

// ComposeOrder собирает из строк корзины единый рассчитанный заказ.
// Детерминированная чистая функция: одинаковый вход всегда дает равный по
// значению PricedOrder, что позволяет сверять серверный пересчет с итогом
// клиента байт в байт.
//
// Правила отказа: неserviceable адрес отсекается до каких-либо расчетов,
// пустая корзина отклоняется, ошибка любой строки роняет весь расчет —
// режима "пропустить плохую строку" нет, молча выкинуть оплаченную услугу
// хуже, чем отклонить заказ.
func ComposeOrder(lines []PricingLine, serviceable bool) (*models.PricedOrder, error) {
	if !serviceable {
		return nil, apperror.NotServiceable("we currently do not serve this area", nil)
	}
	if len(lines) == 0 {
		return nil, apperror.EmptyOrder("order must contain at least one item", nil)
	}

	order := &models.PricedOrder{
		Lines: make([]models.PricedLine, 0, len(lines)),
	}

	for i, pl := range lines {
		priced, err := PriceLine(pl.Entry, &pl.Line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		order.Lines = append(order.Lines, priced)
		order.OrderTotal += priced.LineTotal
	}

	return order, nil
}
