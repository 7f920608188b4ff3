package services

import "fmt"

// InsufficientStockError is returned whenever a deduction would take a
// supply's quantity on hand negative. It carries the exact shortfall so the
// operator can correct the requested quantity.
type InsufficientStockError struct {
	SupplyName string
	Available  float64
	Required   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %.2f, required %.2f",
		e.SupplyName, e.Available, e.Required)
}

// NotFoundError is raised when a referenced record does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with ID: %d", e.Entity, e.ID)
}

// StaleConfirmationError is raised when a confirmation no longer passes the
// permission or validity checks that its proposal passed. The caller must
// restart the propose flow.
type StaleConfirmationError struct {
	Reason string
}

func (e *StaleConfirmationError) Error() string {
	return "state change is no longer valid: " + e.Reason
}

// PermissionError is a hard authorization failure on an operation that is not
// part of the propose/confirm flow (those return rejected proposals instead).
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}
