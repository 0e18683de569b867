package gateway

import (
	"fmt"

	"github.com/rpregul/aiflowers/pkg/models"
)

// AllCandidatesFailedError возвращается, когда исчерпаны все кандидаты
// операции. Держит последнюю ошибку для диагностики; вызывающий сам
// решает, как показать сбой пользователю.
type AllCandidatesFailedError struct {
	Op   models.Operation
	Last error
}

func (e *AllCandidatesFailedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("все кандидаты операции %q недоступны", e.Op)
	}
	return fmt.Sprintf("все кандидаты операции %q недоступны, последняя ошибка: %v", e.Op, e.Last)
}

func (e *AllCandidatesFailedError) Unwrap() error {
	return e.Last
}
