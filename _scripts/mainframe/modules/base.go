import "mainframe"

func Load(s *mainframe.Scope) any {
	if mainframe.StepOf(s) == mainframe.StepDeclare {
		return mainframe.Manifest{}
	}

	s.Set("base.ready", true)
	return nil
}
