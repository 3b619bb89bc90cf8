package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// FlagEnum is a pflag.Value restricted to a fixed set of strings.
type FlagEnum struct {
	Allowed []string
	Value   string
}

func NewEnum(allowed []string, d string) *FlagEnum {
	return &FlagEnum{
		Allowed: allowed,
		Value:   d,
	}
}

func (a FlagEnum) String() string {
	return a.Value
}

func (a *FlagEnum) Set(p string) error {
	if !slices.Contains(a.Allowed, p) {
		return fmt.Errorf("invalid value %q, must be one of %v", p, a.Allowed)
	}
	a.Value = p
	return nil
}

func (a *FlagEnum) Type() string {
	return "string"
}

// Complete offers the allowed values for shell completion.
func (a *FlagEnum) Complete(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return a.Allowed, cobra.ShellCompDirectiveNoFileComp
}
