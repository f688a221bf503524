package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound — сервер ответил 404: записи с таким id там больше нет.
// Движок синхронизации трактует это как сигнал к повторному create.
var ErrNotFound = errors.New("запись не найдена на сервере")

// TransportError — таймаут, недоступность или некорректный ответ сервера.
// Ловится по-записно и не роняет проход синхронизации.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("транспортная ошибка %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport сообщает, была ли ошибка транспортной (т.е. подлежит ретраю).
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
