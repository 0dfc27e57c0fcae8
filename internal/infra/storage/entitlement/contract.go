package entitlement

import (
	"github.com/m04kA/GYM-ClassService/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
type TxExecutor = dbmetrics.TxExecutor

// ConsumeOutcome результат атомарного списания единицы
type ConsumeOutcome int

const (
	// ConsumeOK единица успешно списана
	ConsumeOK ConsumeOutcome = iota
	// ConsumeInsufficient списывать нечего: лимит исчерпан, срок истёк
	// или статус больше не active
	ConsumeInsufficient
)

// ConsumeResult результат списания с итоговым статусом записи
type ConsumeResult struct {
	Outcome ConsumeOutcome
	// Status статус entitlement после списания
	// Позволяет вызывающему коду заметить переход в depleted
	Status string
}
