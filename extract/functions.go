// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Absent marks an argument a function does not take.
const Absent = -1

// ErrInvalidFunction is returned for unusable function specs.
var ErrInvalidFunction = errors.New("invalid translation function")

// FunctionSpec describes a translation function or method and where its
// arguments are. Argument indexes start at zero; Absent means not taken.
type FunctionSpec struct {
	// Package is the import path declaring the function. Empty matches any.
	Package string `yaml:"package,omitempty"`
	// Receiver is the name of the receiver's named type for methods.
	Receiver string `yaml:"receiver,omitempty"`
	Name     string `yaml:"name"`

	Key     int `yaml:"key"`
	Number  int `yaml:"number"`
	Replace int `yaml:"replace"`
	Locale  int `yaml:"locale"`
}

// DefaultFunctions models a Laravel-style API: Trans and TransChoice
// functions, and Get and Choice methods on a Translator type.
func DefaultFunctions() []FunctionSpec {
	return []FunctionSpec{
		{Name: "Trans", Key: 0, Number: Absent, Replace: 1, Locale: 2},
		{Name: "TransChoice", Key: 0, Number: 1, Replace: 2, Locale: 3},
		{Receiver: "Translator", Name: "Get", Key: 0, Number: Absent, Replace: 1, Locale: 2},
		{Receiver: "Translator", Name: "Choice", Key: 0, Number: 1, Replace: 2, Locale: 3},
	}
}

// UnmarshalYAML decodes a spec; argument indexes left out are Absent.
func (f *FunctionSpec) UnmarshalYAML(data []byte) error {
	type plain FunctionSpec

	p := plain{Number: Absent, Replace: Absent, Locale: Absent}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return err
	}

	*f = FunctionSpec(p)

	return nil
}

// Validate checks that the spec names a function and takes a key.
func (f FunctionSpec) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFunction)
	}

	if f.Key < 0 {
		return fmt.Errorf("%w: %s: key argument index must not be negative", ErrInvalidFunction, f.String())
	}

	for _, idx := range []int{f.Number, f.Replace, f.Locale} {
		if idx < Absent {
			return fmt.Errorf("%w: %s: argument index %d", ErrInvalidFunction, f.String(), idx)
		}
	}

	return nil
}

// String returns the name used in diagnostics, such as "Translator.Get".
func (f FunctionSpec) String() string {
	if f.Receiver != "" {
		return f.Receiver + "." + f.Name
	}

	return f.Name
}

// IsChoice reports whether the function takes a count.
func (f FunctionSpec) IsChoice() bool {
	return f.Number != Absent
}
