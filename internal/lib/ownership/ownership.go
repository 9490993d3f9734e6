// Package ownership решает, может ли пользователь читать или изменять запись.
//
// Запись принадлежит ровно одному пользователю: напрямую (portfolios.user_id,
// financial_goals.user_id, transactions.user_id, subscription_payments.user_id)
// или через родителя (assets -> portfolios.user_id). Проверка всегда точное
// равенство владельца и действующего пользователя, без ролей и исключений.
//
// Чужая и несуществующая запись дают одну и ту же ошибку ErrNotFound,
// чтобы не подтверждать существование чужих данных.
package ownership

import (
	"errors"

	"github.com/magabrotheeeer/wealth-management/internal/storage/repository"
)

// ErrNotFound единый сигнал для отсутствующей и чужой записи.
var ErrNotFound = errors.New("resource not found")

// Owned запись, у которой можно узнать владельца.
type Owned interface {
	OwnerID() int64
}

// Authorize возвращает true тогда и только тогда, когда ownerID == actingID.
func Authorize(ownerID, actingID int64) bool {
	return ownerID == actingID
}

// Check возвращает ErrNotFound, если actingID не владелец.
func Check(ownerID, actingID int64) error {
	if !Authorize(ownerID, actingID) {
		return ErrNotFound
	}
	return nil
}

// Guard принимает результат выборки из хранилища и пропускает его дальше,
// только если запись найдена и принадлежит actingID.
// repository.ErrNotFound и несовпадение владельца сводятся к ErrNotFound,
// остальные ошибки хранилища возвращаются как есть.
func Guard[T Owned](res T, err error, actingID int64) (T, error) {
	var zero T
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	if err := Check(res.OwnerID(), actingID); err != nil {
		return zero, err
	}
	return res, nil
}

// Affected переводит число затронутых строк в ошибку: ноль строк означает,
// что запись исчезла или сменила владельца между проверкой и изменением.
func Affected(n int, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
