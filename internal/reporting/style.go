package reporting

import "github.com/fatih/color"

// Styler decorates console report lines. Implementations must return the
// text unchanged apart from decoration.
type Styler interface {
	Header(s string) string
	Test(s string) string
	Pass(s string) string
	Fail(s string) string
	Summary(s string) string
	Warn(s string) string
}

// PlainStyler leaves text undecorated, for pipes and files.
type PlainStyler struct{}

func (PlainStyler) Header(s string) string  { return s }
func (PlainStyler) Test(s string) string    { return s }
func (PlainStyler) Pass(s string) string    { return s }
func (PlainStyler) Fail(s string) string    { return s }
func (PlainStyler) Summary(s string) string { return s }
func (PlainStyler) Warn(s string) string    { return s }

// ColorStyler colors text with ANSI escapes.
type ColorStyler struct {
	header  *color.Color
	test    *color.Color
	pass    *color.Color
	fail    *color.Color
	summary *color.Color
	warn    *color.Color
}

// NewColorStyler returns a ColorStyler that always emits escapes; callers
// decide whether the destination is a terminal.
func NewColorStyler() *ColorStyler {
	s := &ColorStyler{
		header:  color.New(color.FgHiMagenta),
		test:    color.New(color.FgHiBlue),
		pass:    color.New(color.FgHiGreen),
		fail:    color.New(color.FgHiRed),
		summary: color.New(color.FgHiCyan),
		warn:    color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{s.header, s.test, s.pass, s.fail, s.summary, s.warn} {
		c.EnableColor()
	}
	return s
}

func (s *ColorStyler) Header(text string) string  { return s.header.Sprint(text) }
func (s *ColorStyler) Test(text string) string    { return s.test.Sprint(text) }
func (s *ColorStyler) Pass(text string) string    { return s.pass.Sprint(text) }
func (s *ColorStyler) Fail(text string) string    { return s.fail.Sprint(text) }
func (s *ColorStyler) Summary(text string) string { return s.summary.Sprint(text) }
func (s *ColorStyler) Warn(text string) string    { return s.warn.Sprint(text) }
