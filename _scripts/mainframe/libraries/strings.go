import (
	"strings"

	"mainframe"
)

func Load(s *mainframe.Scope) any {
	s.Set("strings.upper", func(v string) string { return strings.ToUpper(v) })
	s.Set("strings.lower", func(v string) string { return strings.ToLower(v) })
	s.Set("strings.fields", func(v string) []string { return strings.Fields(v) })
	return nil
}
