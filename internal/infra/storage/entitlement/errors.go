package entitlement

import "errors"

var (
	// ErrEntitlementNotFound возвращается, когда у участника нет
	// ни одной подходящей записи entitlement
	ErrEntitlementNotFound = errors.New("entitlement.repository: entitlement not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("entitlement.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("entitlement.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("entitlement.repository: failed to scan row")
)
