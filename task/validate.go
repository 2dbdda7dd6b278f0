package task

import (
	"sort"
	"strings"
	"unicode/utf8"
)

type (
	// FieldErrors collects validation messages keyed by field name.
	// Validation runs before any store interaction, a task that fails
	// it is never persisted, not even partially.
	FieldErrors map[string][]string
)

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	var sb strings.Builder
	sb.WriteString("invalid task:")
	for _, k := range fields {
		for _, msg := range f[k] {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(msg)
			sb.WriteString(";")
		}
	}
	return sb.String()
}

func (f FieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func validate(in Input, today Date) error {
	errs := FieldErrors{}
	switch n := utf8.RuneCountInString(in.Title); {
	case n == 0:
		errs.add("title", "title is required")
	case n < 3:
		errs.add("title", "title must have at least 3 characters")
	case n > 100:
		errs.add("title", "title must not exceed 100 characters")
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		errs.add("description", "description must not exceed 500 characters")
	}
	switch {
	case in.DueDate.IsZero():
		errs.add("dueDate", "due date is required")
	case in.DueDate.Before(today):
		errs.add("dueDate", "due date must be today or a future date")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
