package core

// ElevatedPriority is given to processors that run on already processed events
// and did not choose a priority, so they are scheduled after ordinary ones.
const ElevatedPriority = 1500

// Settings are the standard options of every processor.
// Field types declare how raw configuration values are coerced.
type Settings struct {
	Type      string `mapstructure:"type"`
	Addressed bool   `mapstructure:"addressed"`
	Processed bool   `mapstructure:"processed"`
	Priority  int    `mapstructure:"priority"`
	// capability checked for authorised handlers;
	// processor name is used if empty
	Permission string `mapstructure:"permission"`
	LogLevel   string `mapstructure:"log_level"`
}

func DefaultSettings() Settings {
	return Settings{
		Type:      EventMessage,
		Addressed: true,
		Processed: false,
		Priority:  0,
	}
}

func elevate(s Settings) Settings {
	if s.Processed && s.Priority == 0 {
		s.Priority = ElevatedPriority
	}
	return s
}
