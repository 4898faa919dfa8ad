package view

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always confirms every prompt.
var Always Confirmer = ConfirmFunc(func(string) bool { return true })

// Never declines every prompt.
var Never Confirmer = ConfirmFunc(func(string) bool { return false })
