package model

// AutomationMode controls whether prompts are shown and how they are answered.
type AutomationMode string

const (
	ModeAuto        AutomationMode = "auto"
	ModeYes         AutomationMode = "yes"
	ModeNo          AutomationMode = "no"
	ModeInteractive AutomationMode = "interactive"
)
