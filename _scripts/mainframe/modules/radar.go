import (
	"fmt"

	"mainframe"
)

func Load(s *mainframe.Scope) any {
	if mainframe.StepOf(s) == mainframe.StepDeclare {
		return mainframe.Manifest{Dependencies: []string{"base"}}
	}

	v, _ := s.Get("hook")
	hooks := v.(*mainframe.Hooks)
	hooks.Add("postmoduleload", "announce", func(args ...any) error {
		fmt.Println("radar online")
		return nil
	})

	v, _ = s.Get("channel")
	channels := v.(*mainframe.Channels)
	channels.Listen("radar", "contact", func(args ...any) error {
		fmt.Println("contact:", args)
		return nil
	})
	return nil
}
