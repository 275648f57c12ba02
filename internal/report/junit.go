package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jstemmer/go-junit-report/v2/junit"
)

// wiringCase names the test case collecting findings that belong to no layer.
const wiringCase = "(project)"

// WriteJUnit writes r as JUnit XML. Every layer becomes a test case that
// fails when an error-level violation is attributed to it. Findings that
// name no layer share one extra case. Warnings are attached as system-out.
func WriteJUnit(w io.Writer, r *Report) error {
	byCase := make(map[string][]Violation)
	for _, v := range r.Violations {
		name := r.LayerOf(v.Location)
		if name == "" {
			name = wiringCase
		}
		byCase[name] = append(byCase[name], v)
	}

	suite := junit.Testsuite{Name: "HEA Architecture", Time: "0"}
	suite.AddProperty("score", fmt.Sprint(r.Score))
	suite.AddProperty("grade", r.Grade)
	if r.RunID != "" {
		suite.AddProperty("run_id", r.RunID)
	}

	names := append([]string{}, r.Layers...)
	if _, ok := byCase[wiringCase]; ok {
		names = append(names, wiringCase)
	}
	for _, name := range names {
		suite.AddTestcase(testcase(name, r.Manifests[name], byCase[name]))
	}

	var suites junit.Testsuites
	suites.AddSuite(suite)
	if err := suites.WriteXML(w); err != nil {
		return fmt.Errorf("failed to encode JUnit report: %w", err)
	}
	return nil
}

func testcase(name, file string, vs []Violation) junit.Testcase {
	tc := junit.Testcase{Name: name, Classname: "HEA.Layers", Time: "0"}
	if file != "" {
		tc.Classname = "HEA.Layers." + strings.ReplaceAll(file, "/", ".")
	}

	var errs, warns []string
	var first *Violation
	for i, v := range vs {
		line := fmt.Sprintf("[%s] %s: %s (%s)", v.Severity, v.Kind, v.Message, v.Location)
		if v.IsError() {
			if first == nil {
				first = &vs[i]
			}
			errs = append(errs, line)
		} else {
			warns = append(warns, line)
		}
	}
	if first != nil {
		tc.Failure = &junit.Result{
			Message: first.Message,
			Type:    string(first.Kind),
			Data:    strings.Join(errs, "\n"),
		}
	}
	if len(warns) > 0 {
		tc.SystemOut = &junit.Output{Data: strings.Join(warns, "\n")}
	}
	return tc
}
