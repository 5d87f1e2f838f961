package command

import "slices"

// SetOption sets name to the given argument values, replacing any previous
// value. Several values render as repeated occurrences of the option.
// Calling it without values is the same as SetFlag.
func (c *Command) SetOption(name string, values ...string) *Command {
	if len(values) == 0 {
		return c.SetFlag(name)
	}
	vals := make([]Value, len(values))
	for i, v := range values {
		vals[i] = Text(v)
	}
	return c.SetOptionValues(name, vals...)
}

// SetFlag sets name as an option without an argument.
func (c *Command) SetFlag(name string) *Command {
	return c.SetOptionValues(name, Flag)
}

// SetOptionValues sets name to values, which may mix Flag and Text values.
// A replaced option keeps its original position.
func (c *Command) SetOptionValues(name string, values ...Value) *Command {
	if len(values) == 0 {
		values = []Value{Flag}
	}
	values = slices.Clone(values)
	if i := c.optionIndex(name); i >= 0 {
		c.options[i].values = values
		return c
	}
	c.options = append(c.options, option{name: name, values: values})
	return c
}

// UnsetOption removes name. Removing an unknown option is a no-op.
func (c *Command) UnsetOption(name string) *Command {
	if i := c.optionIndex(name); i >= 0 {
		c.options = slices.Delete(c.options, i, i+1)
	}
	return c
}

// Option returns the values set for name.
func (c *Command) Option(name string) ([]Value, bool) {
	i := c.optionIndex(name)
	if i < 0 {
		return nil, false
	}
	return slices.Clone(c.options[i].values), true
}

// HasOption reports whether name is set.
func (c *Command) HasOption(name string) bool {
	return c.optionIndex(name) >= 0
}

// OptionNames returns option names in insertion order.
func (c *Command) OptionNames() []string {
	names := make([]string, len(c.options))
	for i, opt := range c.options {
		names[i] = opt.name
	}
	return names
}

func (c *Command) optionIndex(name string) int {
	return slices.IndexFunc(c.options, func(o option) bool { return o.name == name })
}

// RenderOptions renders the options as command line tokens.
//
// One-character names render as "-x", longer names as "--name". A Text value
// follows its option as a separate token; Flag values add nothing.
func (c *Command) RenderOptions() []string {
	var tokens []string
	for _, opt := range c.options {
		flag := "--" + opt.name
		if len([]rune(opt.name)) == 1 {
			flag = "-" + opt.name
		}
		for _, v := range opt.values {
			tokens = append(tokens, flag)
			if !v.isFlag {
				tokens = append(tokens, v.text)
			}
		}
	}
	return tokens
}

// CommandLine returns the tokens passed to git after the binary path.
//
// In raw mode it is the verb alone, untouched. Otherwise it is the verb,
// the subcommand, the rendered options and the arguments, with empty option
// values and empty arguments dropped. The verb is always one token.
func (c *Command) CommandLine() []string {
	if c.Raw {
		return []string{c.Verb}
	}

	tokens := []string{c.Verb}
	if c.Subcommand != "" {
		tokens = append(tokens, c.Subcommand)
	}
	for _, tok := range c.RenderOptions() {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	for _, arg := range c.Args {
		if arg != "" {
			tokens = append(tokens, arg)
		}
	}
	return tokens
}
