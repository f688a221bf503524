package repository

import "errors"

var (
	// ErrNotFound — запись отсутствует в локальном хранилище.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — нарушение уникальности при вставке.
	ErrConflict = errors.New("конфликт записи")
)
