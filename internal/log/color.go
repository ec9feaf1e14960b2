package log

import "github.com/fatih/color"

var levelColors = map[LogLevel]*color.Color{
	Debug: color.New(color.FgBlue),
	Info:  color.New(color.FgGreen),
	Warn:  color.New(color.FgYellow),
	Error: color.New(color.FgRed),
}

// Colorize wraps s in the terminal color of level l.
func Colorize(l LogLevel, s string) string {
	c, ok := levelColors[l]
	if !ok {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}
