package domain

import (
	"sort"
	"strings"
)

// FieldErrors — ошибки валидации по полям; возвращаются вызывающему
// для инлайн-отображения, сессию не роняют.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Any() bool { return len(e) > 0 }

// AsFieldErrors — достаёт FieldErrors из err, если это она.
func AsFieldErrors(err error) (FieldErrors, bool) {
	fe, ok := err.(FieldErrors)
	return fe, ok
}
