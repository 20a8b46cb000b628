// Package core contains the data model shared by the analysis passes;
// build labels, crate metadata, dependency info and invocation plans.
package core

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("core")

// A BuildLabel is the identifier of a node in the workspace graph,
// eg. //third_party/rust:serde corresponds to
// BuildLabel{PackageName: "third_party/rust", Name: "serde"}.
// Labels are always absolute; //spam/eggs is shorthand for //spam/eggs:eggs.
type BuildLabel struct {
	PackageName string
	Name        string
}

const packagePart = `[A-Za-z0-9\._\+-]+`
const packageName = `(` + packagePart + `(?:/` + packagePart + `)*)`
const targetName = `([A-Za-z0-9\._\+-]+)`

// Fully specified labels, e.g. //src/core:core
var absoluteTarget = regexp.MustCompile(fmt.Sprintf("^//(?:%s)?:%s$", packageName, targetName))

// Labels with an implicit target name, e.g. //src/core (expands to //src/core:core)
var implicitTarget = regexp.MustCompile(fmt.Sprintf("^//(?:%s/)?(%s)$", packageName, packagePart))

func (label BuildLabel) String() string {
	return "//" + label.PackageName + ":" + label.Name
}

// PackageDir returns the directory of this label's package, which is where
// its derived artifacts are placed.
func (label BuildLabel) PackageDir() string {
	if label.PackageName == "" {
		return "."
	}
	return label.PackageName
}

// Less provides the canonical ordering of labels, which is by their string form.
func (label BuildLabel) Less(other BuildLabel) bool {
	if label.PackageName == other.PackageName {
		return label.Name < other.Name
	}
	return label.PackageName < other.PackageName
}

// ArtifactName derives a filename under the label's package dir, used for
// outputs named after the node (e.g. clippy markers).
func (label BuildLabel) ArtifactName(suffix string) string {
	return path.Join(label.PackageDir(), label.Name+suffix)
}

// TryParseBuildLabel attempts to parse a build label from its string form.
func TryParseBuildLabel(s string) (BuildLabel, error) {
	if matches := absoluteTarget.FindStringSubmatch(s); matches != nil {
		return BuildLabel{PackageName: matches[1], Name: matches[2]}, nil
	}
	if matches := implicitTarget.FindStringSubmatch(s); matches != nil {
		pkg := matches[1]
		name := matches[2]
		if pkg == "" {
			pkg = name
		} else {
			pkg = pkg + "/" + name
		}
		return BuildLabel{PackageName: pkg, Name: name}, nil
	}
	return BuildLabel{}, fmt.Errorf("invalid build label: %s", s)
}

// ParseBuildLabel parses a build label from its string form. Panics on failure.
func ParseBuildLabel(s string) BuildLabel {
	label, err := TryParseBuildLabel(s)
	if err != nil {
		panic(err)
	}
	return label
}

// UnmarshalFlag implements the flags.Unmarshaler interface so labels can be
// used directly as command-line arguments.
func (label *BuildLabel) UnmarshalFlag(value string) error {
	l, err := TryParseBuildLabel(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*label = l
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for labels in workspace manifests.
func (label *BuildLabel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return label.UnmarshalFlag(s)
}
