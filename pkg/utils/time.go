package utils

import (
	"time"
)

// time.go - утилиты для работы со временем
//
// Назначение:
// Вспомогательные функции для временных операций, используемые
// при построении истории портфеля (bucketing снапшотов по интервалам)
// и агрегации по периодам.
//
// Функции:
// - BucketStart: начало bucket'а для timestamp'а при заданном интервале
// - GetDayStart / GetDayStartFrom: начало дня (00:00:00 UTC)
// - GetWeekStart / GetWeekStartFrom: начало недели (понедельник 00:00:00 UTC)
// - GetMonthStart / GetMonthStartFrom: начало месяца (1-е число 00:00:00 UTC)

// BucketStart возвращает начало bucket'а, в который попадает t
//
// Для интервалов, кратных суткам и меньше, bucket выравнивается
// по границе интервала от полуночи UTC (Truncate). Два снапшота
// с одинаковым BucketStart принадлежат одному bucket'у истории.
func BucketStart(t time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return t.UTC().Truncate(interval)
}

// ============================================================
// Границы календарных периодов
// ============================================================

// GetDayStart возвращает начало текущего дня (00:00:00) в UTC
func GetDayStart() time.Time {
	return GetDayStartFrom(time.Now().UTC())
}

// GetDayStartFrom возвращает начало дня для указанного времени в UTC
func GetDayStartFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetWeekStart возвращает начало текущей недели (понедельник 00:00:00) в UTC
func GetWeekStart() time.Time {
	return GetWeekStartFrom(time.Now().UTC())
}

// GetWeekStartFrom возвращает начало недели для указанного времени в UTC
// Неделя начинается с понедельника
func GetWeekStartFrom(t time.Time) time.Time {
	t = GetDayStartFrom(t)

	// time.Weekday: Sunday = 0, Monday = 1, ...
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// GetMonthStart возвращает начало текущего месяца (1-е число 00:00:00) в UTC
func GetMonthStart() time.Time {
	return GetMonthStartFrom(time.Now().UTC())
}

// GetMonthStartFrom возвращает начало месяца для указанного времени в UTC
func GetMonthStartFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
