package apperror

// FieldErrors accumulates field-level validation messages.
//
//	var fe apperror.FieldErrors
//	if c.Nome == "" {
//		fe.Add("nome", "nome é obrigatório")
//	}
//	return fe.Err()
type FieldErrors map[string]string

// Add records a message for field. The first message for a field wins.
func (f *FieldErrors) Add(field, message string) {
	if *f == nil {
		*f = make(FieldErrors)
	}
	if _, exists := (*f)[field]; exists {
		return
	}
	(*f)[field] = message
}

// Merge copies entries from a validation error into f. Other errors are returned unchanged.
func (f *FieldErrors) Merge(err error) error {
	if err == nil {
		return nil
	}
	appErr, ok := AsAppError(err)
	if !ok || appErr.Kind != KindValidation {
		return err
	}
	fields := appErr.Fields()
	if len(fields) == 0 {
		f.Add("_", appErr.Message)
		return nil
	}
	for k, v := range fields {
		f.Add(k, v)
	}
	return nil
}

// Empty reports whether no field error was recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Err returns nil when empty or a validation AppError with all recorded fields.
func (f FieldErrors) Err() error {
	if f.Empty() {
		return nil
	}
	return NewValidationFields(map[string]string(f))
}
