import (
	"fmt"
	"os"

	"mainframe"
)

func Load(s *mainframe.Scope) any {
	s.Set("log.print", func(args ...any) {
		fmt.Fprintln(os.Stdout, args...)
	})
	return nil
}
