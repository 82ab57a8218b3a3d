package airqd

// A LevelShaper renders PM2.5 concentrations as LED commands.
type LevelShaper struct {
	levels []Level
}

func NewLevelShaper(cfg Config) *LevelShaper {
	s := &LevelShaper{
		levels: make([]Level, 0, len(cfg.Levels)),
	}
	for _, level := range cfg.Levels {
		s.levels = append(s.levels, *level)
	}

	return s
}

func (s LevelShaper) Eval(m Measurement) LEDCommand {
	for _, level := range s.levels {
		if level.Below == nil || m.PM25 < *level.Below {
			return level.Command
		}
	}

	if len(s.levels) == 0 {
		return Off()
	}

	// Above all thresholds without a catch-all level.
	return s.levels[len(s.levels)-1].Command
}
