package dates_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"achieveTracker/internal/models/dates"
)

// TestDate_Arithmetic тестирует сдвиг и сравнение дат
func TestDate_Arithmetic(t *testing.T) {
	d := dates.New(2024, time.February, 28)

	assert.Equal(t, dates.New(2024, time.February, 29), d.AddDays(1)) // високосный год
	assert.Equal(t, dates.New(2024, time.March, 1), d.AddDays(2))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 2, dates.DaysBetween(d, dates.New(2024, time.March, 1)))
}

// TestDate_JSON тестирует проводной формат даты
func TestDate_JSON(t *testing.T) {
	d := dates.New(2025, time.March, 9)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-09"`, string(raw))

	var parsed dates.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-09"`), &parsed))
	assert.Equal(t, d, parsed)

	// нулевая дата ходит как null
	raw, err = json.Marshal(dates.Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	var empty dates.Date
	require.NoError(t, json.Unmarshal([]byte("null"), &empty))
	assert.True(t, empty.IsZero())
}

// TestDate_Parse тестирует разбор строк
func TestDate_Parse(t *testing.T) {
	d, err := dates.Parse("2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, dates.New(2024, time.December, 31), d)

	_, err = dates.Parse("31.12.2024")
	assert.Error(t, err)
}
