package cli

// StringFlag is the definition of a flag parsed as a string.
//
// - implements cli.Flag
type StringFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string
}

// Flag implements cli.Flag.
func (flag StringFlag) Flag() {}

// BoolFlag is the definition of a flag parsed as a boolean. It is false unless
// the flag is present.
//
// - implements cli.Flag
type BoolFlag struct {
	Name  string
	Usage string
}

// Flag implements cli.Flag.
func (flag BoolFlag) Flag() {}
